// File: internal/auth/handler.go
package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"learnease_backend/internal/account"
	"learnease_backend/internal/common"
	"learnease_backend/internal/middleware"
	"learnease_backend/internal/student"
	"learnease_backend/internal/teacher"
)

// SignupRequest is the body of the role-specific register endpoints.
// Validation happens in the orchestrator, which owns the field rules.
type SignupRequest struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	AgreedToTerms   bool   `json:"agreed_to_terms"`
}

// Handler exposes the authentication endpoints.
type Handler struct {
	signup   *SignupService
	login    *LoginService
	reset    *PasswordResetService
	dir      *account.Directory
	teachers teacher.Repository
	logger   *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(
	signup *SignupService,
	login *LoginService,
	reset *PasswordResetService,
	dir *account.Directory,
	teachers teacher.Repository,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		signup:   signup,
		login:    login,
		reset:    reset,
		dir:      dir,
		teachers: teachers,
		logger:   logger,
	}
}

// RegisterRoutes sets up the auth routes.
// It takes the auth middleware function as a parameter.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	studentAuth := router.Group("/students/auth")
	{
		studentAuth.GET("/check-email/:email", h.checkEmail)
		studentAuth.POST("/register", h.registerStudent)
		studentAuth.POST("/login", h.loginStudent)

		verified := studentAuth.Group("")
		verified.Use(authMW, middleware.RoleAuthMiddleware(common.RoleStudent))
		{
			verified.POST("/confirm-verification", h.confirmVerification)
		}
	}

	teacherAuth := router.Group("/teachers/auth")
	{
		teacherAuth.POST("/register", h.registerTeacher)
		teacherAuth.POST("/login", h.loginTeacher)
		teacherAuth.POST("/forgot-password", h.forgotPassword)
		teacherAuth.POST("/reset-password", h.resetPassword)
	}

	unified := router.Group("/auth")
	{
		unified.POST("/login", h.unifiedLogin)
	}

	teacherMe := router.Group("/teachers")
	teacherMe.Use(authMW, middleware.RoleAuthMiddleware(common.RoleTeacher))
	{
		teacherMe.PATCH("/me", h.patchTeacher)
	}
}

func (h *Handler) checkEmail(c *gin.Context) {
	emailParam := c.Param("email")
	if !account.IsEmailShaped(emailParam) {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid email address."))
		return
	}
	presence, err := h.dir.LookupEmail(c.Request.Context(), emailParam)
	if err != nil {
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("Could not check the email right now."))
		return
	}
	common.RespondOK(c, "Email availability checked.", CheckEmailResponse{
		Exists:    presence.Exists(),
		InStudent: presence.InStudent,
		InTeacher: presence.InTeacher,
	})
}

func (h *Handler) registerStudent(c *gin.Context) {
	h.register(c, common.RoleStudent)
}

func (h *Handler) registerTeacher(c *gin.Context) {
	h.register(c, common.RoleTeacher)
}

func (h *Handler) register(c *gin.Context, role string) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Registration: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	profile := account.SignupProfile{
		Role:            role,
		FullName:        req.FullName,
		Email:           req.Email,
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		AgreedToTerms:   req.AgreedToTerms,
	}
	result, err := h.signup.Signup(c.Request.Context(), profile)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Account registered successfully.", resultPayload(result))
}

func (h *Handler) loginStudent(c *gin.Context) {
	req, ok := bindLoginRequest(c, h.logger)
	if !ok {
		return
	}
	result, err := h.login.LoginStudent(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Login successful.", resultPayload(result))
}

func (h *Handler) loginTeacher(c *gin.Context) {
	req, ok := bindLoginRequest(c, h.logger)
	if !ok {
		return
	}
	result, err := h.login.LoginTeacher(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Login successful.", resultPayload(result))
}

func (h *Handler) unifiedLogin(c *gin.Context) {
	var req UnifiedLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Unified login: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	result, err := h.login.Login(c.Request.Context(), account.Credentials{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Login successful.", resultPayload(result))
}

func (h *Handler) confirmVerification(c *gin.Context) {
	accountID := middleware.GetAccountIDFromContext(c)
	if accountID == uuid.Nil {
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("Account identifier missing."))
		return
	}
	promoted, err := h.signup.ConfirmVerification(c.Request.Context(), accountID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Email verified; session promoted.", gin.H{"session": promoted})
}

func (h *Handler) patchTeacher(c *gin.Context) {
	var req PatchTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	accountID := middleware.GetAccountIDFromContext(c)
	if accountID == uuid.Nil {
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("Account identifier missing."))
		return
	}
	if err := h.teachers.PatchFirebaseUID(c.Request.Context(), accountID, req.FirebaseUID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	rec, err := h.teachers.FindByID(c.Request.Context(), accountID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Teacher profile updated.", teacher.ToResponse(rec))
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	if err := h.reset.RequestReset(c.Request.Context(), req.Email); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "If the email is registered, a reset code has been sent.", nil)
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	if err := h.reset.Reset(c.Request.Context(), req); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Password has been reset. Please log in with the new password.", nil)
}

func bindLoginRequest(c *gin.Context, logger *zap.Logger) (LoginRequest, bool) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Login: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return req, false
	}
	return req, true
}

// resultPayload flattens a Result into the response envelope's data field,
// serializing whichever account record is present.
func resultPayload(result *Result) gin.H {
	payload := gin.H{
		"role":  result.Role,
		"token": result.Token,
		"route": result.Route,
	}
	if result.Student != nil {
		payload["student"] = student.ToResponse(result.Student)
	}
	if result.Teacher != nil {
		payload["teacher"] = teacher.ToResponse(result.Teacher)
	}
	return payload
}
