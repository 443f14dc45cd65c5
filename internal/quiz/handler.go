// File: internal/quiz/handler.go
package quiz

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"learnease_backend/internal/common"
	"learnease_backend/internal/middleware"
)

// Handler exposes the diagnostic-quiz endpoints.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new quiz handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the quiz routes. Both are student-only.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	group := router.Group("/diagnostic-quiz")
	group.Use(authMW, middleware.RoleAuthMiddleware(common.RoleStudent))
	{
		group.GET("/status", h.status)
		group.POST("/submit", h.submit)
	}
}

func (h *Handler) status(c *gin.Context) {
	studentID := middleware.GetAccountIDFromContext(c)
	if studentID == uuid.Nil {
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("Account identifier missing."))
		return
	}
	status, err := h.service.Status(c.Request.Context(), studentID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Quiz status retrieved.", status)
}

func (h *Handler) submit(c *gin.Context) {
	studentID := middleware.GetAccountIDFromContext(c)
	if studentID == uuid.Nil {
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("Account identifier missing."))
		return
	}
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Quiz submit: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	status, err := h.service.Submit(c.Request.Context(), studentID, req.Score)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Quiz submission recorded.", status)
}
