package shared

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenResponse represents the response containing JWT tokens.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"`
}

// AccountDataForToken abstracts the account data needed for token generation.
// Both student and teacher records satisfy it.
type AccountDataForToken interface {
	GetID() uuid.UUID
	GetEmail() string
	GetRole() string
}

// TokenService defines the interface for JWT operations.
type TokenService interface {
	GenerateAccessToken(account AccountDataForToken) (string, time.Time, error)
	GenerateRefreshToken(account AccountDataForToken) (string, time.Time, error)
	ValidateToken(tokenString string) (*Claims, error)
	ParseRefreshToken(refreshTokenString string) (*Claims, error)
}

// Claims represents the JWT claims structure.
type Claims struct {
	AccountID uuid.UUID `json:"account_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	jwt.RegisteredClaims
}

// Route names handed back to the client after login or signup. The client
// treats these as screen identifiers, not URLs.
const (
	RouteLogin              = "login"
	RouteVerifyEmail        = "verify-email"
	RouteStudentDashboard   = "student-dashboard"
	RouteTeacherDashboard   = "teacher-dashboard"
	RouteDiagnosticQuiz     = "diagnostic-quiz"
	RouteProfileStepSubject = "complete-profile-expertise"
	RouteProfileStepCV      = "complete-profile-cv"
	RouteProfileStepReview  = "complete-profile-review"
)

// Route is the post-login navigation decision. ReplaceHistory tells the
// client to replace the history entry so back-navigation cannot skip the
// target screen (used for the mandatory placement quiz).
type Route struct {
	Name           string            `json:"name"`
	ReplaceHistory bool              `json:"replace_history,omitempty"`
	State          map[string]string `json:"state,omitempty"`
}
