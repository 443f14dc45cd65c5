// File: internal/middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"learnease_backend/internal/common"
	"learnease_backend/internal/shared"
)

const (
	// AuthorizationHeader is the header name for the bearer token.
	AuthorizationHeader = "Authorization"
	// AuthorizationTypeBearer is the prefix for Bearer tokens.
	AuthorizationTypeBearer = "Bearer"
	// AccountIDKey is the context key for the authenticated account's ID.
	AccountIDKey = "accountID"
	// AccountEmailKey is the context key for the authenticated account's email.
	AccountEmailKey = "accountEmail"
	// AccountRoleKey is the context key for the authenticated account's role.
	AccountRoleKey = "accountRole"
	// AccountClaimsKey stores the whole claims object.
	AccountClaimsKey = "accountClaims"
)

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(tokenService shared.TokenService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			logger.Debug("Authorization header missing")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header is required."))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], AuthorizationTypeBearer) {
			logger.Debug("Authorization header format invalid", zap.String("header", authHeader))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header format must be 'Bearer <token>'."))
			return
		}

		claims, err := tokenService.ValidateToken(parts[1])
		if err != nil {
			logger.Warn("Token validation failed", zap.Error(err))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails(err.Error()))
			return
		}

		c.Set(AccountIDKey, claims.AccountID)
		c.Set(AccountEmailKey, claims.Email)
		c.Set(AccountRoleKey, claims.Role)
		c.Set(AccountClaimsKey, claims)

		logger.Debug("Account authenticated",
			zap.String("accountID", claims.AccountID.String()),
			zap.String("role", claims.Role),
		)

		c.Next()
	}
}

// GetAccountIDFromContext retrieves the account ID from the Gin context.
// Returns uuid.Nil if not found or not a UUID.
func GetAccountIDFromContext(c *gin.Context) uuid.UUID {
	val, exists := c.Get(AccountIDKey)
	if !exists {
		return uuid.Nil
	}
	accountID, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return accountID
}

// GetAccountRoleFromContext retrieves the account role from the Gin context.
func GetAccountRoleFromContext(c *gin.Context) string {
	val, exists := c.Get(AccountRoleKey)
	if !exists {
		return ""
	}
	role, ok := val.(string)
	if !ok {
		return ""
	}
	return role
}

// GetAccountClaimsFromContext retrieves the full claims object from the Gin context.
func GetAccountClaimsFromContext(c *gin.Context) *shared.Claims {
	val, exists := c.Get(AccountClaimsKey)
	if !exists {
		return nil
	}
	claims, ok := val.(*shared.Claims)
	if !ok {
		return nil
	}
	return claims
}

// RoleAuthMiddleware restricts a route group to accounts holding one of the
// allowed roles. Must run after AuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetAccountRoleFromContext(c)
		if role == "" {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("Account role not found in context."))
			return
		}

		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}
		common.RespondWithError(c, common.ErrForbidden.WithDetails("You do not have sufficient permissions for this resource."))
	}
}
