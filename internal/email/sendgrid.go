package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/pricepilot/dynamic-pricing/internal/config"
)

type sendgridSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type sendgridMailer struct {
	client   sendgridSender
	fromName string
	from     string
	sandbox  bool
}

// NewSendGridMailer creates a Mailer backed by SendGrid dynamic templates
func NewSendGridMailer(cfg config.EmailConfig) Mailer {
	return newSendGridMailer(sendgrid.NewSendClient(cfg.SendGridAPIKey), cfg)
}

func newSendGridMailer(client sendgridSender, cfg config.EmailConfig) *sendgridMailer {
	return &sendgridMailer{
		client:   client,
		fromName: cfg.FromName,
		from:     cfg.FromAddress,
		sandbox:  cfg.Sandbox,
	}
}

func (m *sendgridMailer) Send(ctx context.Context, msg Message) error {
	email := mail.NewV3Mail()
	email.SetFrom(mail.NewEmail(m.fromName, m.from))
	email.SetTemplateID(msg.Template)
	if msg.Tag != "" {
		email.AddCategories(msg.Tag)
	}

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(msg.ToName, msg.To))
	for k, v := range msg.Model {
		p.SetDynamicTemplateData(k, v)
	}
	email.AddPersonalizations(p)

	if m.sandbox {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		email.SetMailSettings(ms)
	}

	resp, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to send sendgrid email: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid rejected email: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
