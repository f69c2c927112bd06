package email

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pricepilot/dynamic-pricing/internal/config"
	"github.com/pricepilot/dynamic-pricing/internal/logger"
)

const (
	ProviderPostmark = "postmark"
	ProviderSendGrid = "sendgrid"
	ProviderLog      = "log"
)

// Message is a templated email to one recipient
type Message struct {
	To     string
	ToName string
	// Template is the provider template alias or id
	Template string
	Model    map[string]any
	// Tag groups messages in provider dashboards
	Tag string
}

// Mailer sends templated emails
//
//go:generate mockgen -source=mailer.go -destination=../mocks/mailer.go -package=mocks -mock_names=Mailer=MockMailer
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New builds the mailer configured by cfg. Without credentials the log
// mailer is returned so local environments never send real email.
func New(cfg config.EmailConfig) (Mailer, error) {
	switch cfg.Provider {
	case ProviderPostmark, "":
		if cfg.PostmarkServerToken == "" {
			logger.Warn("Postmark server token not configured, emails will only be logged")
			return NewLogMailer(), nil
		}
		return NewPostmarkMailer(cfg), nil
	case ProviderSendGrid:
		if cfg.SendGridAPIKey == "" {
			logger.Warn("SendGrid API key not configured, emails will only be logged")
			return NewLogMailer(), nil
		}
		return NewSendGridMailer(cfg), nil
	case ProviderLog:
		return NewLogMailer(), nil
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", cfg.Provider)
	}
}

type logMailer struct{}

// NewLogMailer returns a Mailer that only logs
func NewLogMailer() Mailer {
	return logMailer{}
}

func (logMailer) Send(ctx context.Context, msg Message) error {
	logger.InfoCtx(ctx, "Email not sent, log mailer in use",
		zap.String("to", msg.To),
		zap.String("template", msg.Template),
		zap.String("tag", msg.Tag),
	)
	return nil
}
