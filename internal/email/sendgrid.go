// File: internal/email/sendgrid.go
package email

import (
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"learnease_backend/internal/config"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type sendgridService struct {
	key    string
	from   *sgmail.Email
	logger *zap.Logger
}

var _ Service = (*sendgridService)(nil)

// NewSendgridService creates an email service backed by the SendGrid v3 API.
func NewSendgridService(cfg *config.Config, logger *zap.Logger) Service {
	return &sendgridService{
		key:    cfg.SendgridAPIKey,
		from:   sgmail.NewEmail(cfg.DefaultFromName, cfg.DefaultFromEmail),
		logger: logger,
	}
}

func (svc *sendgridService) SendMessages(messages ...*Message) {
	for _, msg := range messages {
		msg := msg
		go func() {
			if msg.ToAddress == "" || (msg.TextContent == "" && msg.HTMLContent == "") {
				return
			}
			svc.send(msg)
		}()
	}
}

func (svc *sendgridService) prepare(msg *Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToAddress))

	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)
	m.AddPersonalizations(p)

	if msg.TextContent != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	}
	if msg.HTMLContent != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}
	return m
}

func (svc *sendgridService) send(msg *Message) {
	req := sendgrid.GetRequest(svc.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(svc.prepare(msg))

	res, err := sendgrid.API(req)
	if err != nil {
		svc.logger.Error("Failed to send email", zap.Error(err), zap.String("to", msg.ToAddress))
	} else if res.StatusCode >= http.StatusBadRequest {
		svc.logger.Error("SendGrid rejected email",
			zap.Int("status", res.StatusCode),
			zap.String("body", res.Body),
			zap.String("to", msg.ToAddress),
		)
	}
}
