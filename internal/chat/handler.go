// File: internal/chat/handler.go
package chat

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"learnease_backend/internal/common"
	"learnease_backend/internal/config"
)

// Handler proxies AI-assistant completion requests to the configured
// upstream. The request and response bodies are treated as opaque: the
// upstream's streaming chunks are flushed through to the client as they
// arrive, and the API key never reaches the browser.
type Handler struct {
	upstreamURL string
	apiKey      string
	client      *http.Client
	logger      *zap.Logger
}

// NewHandler creates a new chat proxy handler.
func NewHandler(cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		upstreamURL: cfg.ChatUpstreamURL,
		apiKey:      cfg.ChatUpstreamAPIKey,
		// No overall timeout: completions stream for a while. The dial is
		// still bounded by the transport defaults.
		client: &http.Client{Timeout: 0},
		logger: logger,
	}
}

// RegisterRoutes sets up the chat routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	group := router.Group("/chat")
	group.Use(authMW)
	{
		group.POST("/completions", h.completions)
	}
}

func (h *Handler) completions(c *gin.Context) {
	if h.upstreamURL == "" {
		common.RespondWithError(c, common.ErrServiceUnavailable.WithDetails("The assistant is not configured."))
		return
	}

	upstreamReq, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, h.upstreamURL, c.Request.Body)
	if err != nil {
		h.logger.Error("Failed to build upstream chat request", zap.Error(err))
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("Could not reach the assistant."))
		return
	}
	upstreamReq.Header.Set("Content-Type", "application/json")
	upstreamReq.Header.Set("Authorization", "Bearer "+h.apiKey)
	if accept := c.GetHeader("Accept"); accept != "" {
		upstreamReq.Header.Set("Accept", accept)
	}

	start := time.Now()
	resp, err := h.client.Do(upstreamReq)
	if err != nil {
		h.logger.Warn("Chat upstream unreachable", zap.Error(err))
		common.RespondWithError(c, common.ErrServiceUnavailable.WithDetails("The assistant is unavailable right now."))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		h.logger.Warn("Chat upstream returned server error", zap.Int("status", resp.StatusCode))
		common.RespondWithError(c, common.ErrServiceUnavailable.WithDetails("The assistant is unavailable right now."))
		return
	}

	c.Status(resp.StatusCode)
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		c.Header("Content-Type", ct)
	}

	// Stream chunk by chunk; a buffered response would defeat the
	// token-at-a-time rendering on the client.
	buf := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := c.Writer.Write(buf[:n]); writeErr != nil {
				h.logger.Debug("Client disconnected mid-stream", zap.Error(writeErr))
				return
			}
			c.Writer.Flush()
		}
		if readErr != nil {
			if readErr != io.EOF {
				h.logger.Warn("Chat upstream stream ended with error", zap.Error(readErr))
			}
			break
		}
	}

	h.logger.Info("Chat completion proxied",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))
}
