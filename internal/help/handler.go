// File: internal/help/handler.go
package help

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"learnease_backend/internal/common"
	"learnease_backend/internal/middleware"
)

// Handler exposes the help-center endpoints. Reads are public; authoring is
// restricted to teachers.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new help-center handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the help-center routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	group := router.Group("/help")
	{
		group.GET("/articles", h.list)
		group.GET("/articles/search", h.search)
		group.GET("/articles/:slug", h.bySlug)

		authoring := group.Group("")
		authoring.Use(authMW, middleware.RoleAuthMiddleware(common.RoleTeacher))
		{
			authoring.POST("/articles", h.create)
		}
	}
}

func (h *Handler) list(c *gin.Context) {
	audience := c.Query("audience")
	articles, err := h.service.List(c.Request.Context(), audience)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Articles retrieved.", toResponses(articles))
}

func (h *Handler) search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Query parameter 'q' is required."))
		return
	}
	articles, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Search results retrieved.", toResponses(articles))
}

func (h *Handler) bySlug(c *gin.Context) {
	article, err := h.service.BySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Article retrieved.", ToResponse(article))
}

func (h *Handler) create(c *gin.Context) {
	var req CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Article create: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	article, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Article created.", ToResponse(article))
}
