// File: internal/email/console.go
package email

import (
	"sync"

	"go.uber.org/zap"

	"learnease_backend/internal/config"
)

// ConsoleService logs messages instead of sending them. Used in development
// and tests; Sent retains every message for assertions.
type ConsoleService struct {
	from   string
	logger *zap.Logger

	mu   sync.Mutex
	Sent []Message
}

var _ Service = (*ConsoleService)(nil)

func NewConsoleService(cfg *config.Config, logger *zap.Logger) *ConsoleService {
	return &ConsoleService{
		from:   cfg.DefaultFromEmail,
		logger: logger,
	}
}

func (svc *ConsoleService) SendMessages(messages ...*Message) {
	for _, msg := range messages {
		if msg.ToAddress == "" || (msg.TextContent == "" && msg.HTMLContent == "") {
			continue
		}
		svc.logger.Info("Email (console backend)",
			zap.String("from", svc.from),
			zap.String("to", msg.ToAddress),
			zap.String("subject", msg.Subject),
			zap.String("body", msg.TextContent),
		)
		svc.mu.Lock()
		svc.Sent = append(svc.Sent, *msg)
		svc.mu.Unlock()
	}
}

// SentMessages returns a copy of everything sent so far.
func (svc *ConsoleService) SentMessages() []Message {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]Message, len(svc.Sent))
	copy(out, svc.Sent)
	return out
}
