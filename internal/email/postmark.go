package email

import (
	"context"
	"fmt"

	"github.com/mrz1836/postmark"

	"github.com/pricepilot/dynamic-pricing/internal/config"
)

type postmarkSender interface {
	SendTemplatedEmail(ctx context.Context, email postmark.TemplatedEmail) (postmark.EmailResponse, error)
}

type postmarkMailer struct {
	client postmarkSender
	from   string
	stream string
}

// NewPostmarkMailer creates a Mailer backed by Postmark templates
func NewPostmarkMailer(cfg config.EmailConfig) Mailer {
	return newPostmarkMailer(postmark.NewClient(cfg.PostmarkServerToken, ""), cfg)
}

func newPostmarkMailer(client postmarkSender, cfg config.EmailConfig) *postmarkMailer {
	return &postmarkMailer{
		client: client,
		from:   formatAddress(cfg.FromName, cfg.FromAddress),
		stream: cfg.PostmarkStream,
	}
}

func (m *postmarkMailer) Send(ctx context.Context, msg Message) error {
	email := postmark.TemplatedEmail{
		TemplateAlias: msg.Template,
		TemplateModel: msg.Model,
		From:          m.from,
		To:            formatAddress(msg.ToName, msg.To),
		Tag:           msg.Tag,
		MessageStream: m.stream,
	}

	res, err := m.client.SendTemplatedEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to send postmark email: %w", err)
	}
	if res.ErrorCode != 0 {
		return fmt.Errorf("postmark rejected email: %d %s", res.ErrorCode, res.Message)
	}
	return nil
}

func formatAddress(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%q <%s>", name, address)
}
