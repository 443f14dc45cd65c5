// File: internal/email/service.go
package email

import (
	"learnease_backend/internal/config"

	"go.uber.org/zap"
)

// Message is a single outbound email.
type Message struct {
	ToName      string
	ToAddress   string
	Subject     string
	TextContent string
	HTMLContent string
}

// Service sends messages asynchronously. Sends are best-effort: failures
// are logged by the implementation and never propagate to callers, since
// verification and reset emails must not block the primary auth flow.
type Service interface {
	SendMessages(messages ...*Message)
}

// NewService picks the configured email backend.
func NewService(cfg *config.Config, logger *zap.Logger) Service {
	if cfg.EmailBackend == "sendgrid" {
		return NewSendgridService(cfg, logger.Named("sendgrid"))
	}
	return NewConsoleService(cfg, logger.Named("email_console"))
}
