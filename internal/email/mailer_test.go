package email

import (
	"context"
	"errors"
	"testing"

	"github.com/mrz1836/postmark"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricepilot/dynamic-pricing/internal/config"
)

type fakePostmark struct {
	sent []postmark.TemplatedEmail
	res  postmark.EmailResponse
	err  error
}

func (f *fakePostmark) SendTemplatedEmail(_ context.Context, email postmark.TemplatedEmail) (postmark.EmailResponse, error) {
	f.sent = append(f.sent, email)
	return f.res, f.err
}

type fakeSendGrid struct {
	sent   []*mail.SGMailV3
	status int
	err    error
}

func (f *fakeSendGrid) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	if f.err != nil {
		return nil, f.err
	}
	return &rest.Response{StatusCode: f.status}, nil
}

var testEmailConfig = config.EmailConfig{
	FromAddress:    "noreply@example.com",
	FromName:       "Price Pilot",
	PostmarkStream: "outbound",
	Sandbox:        true,
}

func TestNew(t *testing.T) {
	m, err := New(config.EmailConfig{Provider: ProviderPostmark})
	require.NoError(t, err)
	assert.IsType(t, logMailer{}, m)

	m, err = New(config.EmailConfig{Provider: ProviderPostmark, PostmarkServerToken: "token"})
	require.NoError(t, err)
	assert.IsType(t, &postmarkMailer{}, m)

	m, err = New(config.EmailConfig{Provider: ProviderSendGrid, SendGridAPIKey: "SG.key"})
	require.NoError(t, err)
	assert.IsType(t, &sendgridMailer{}, m)

	_, err = New(config.EmailConfig{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestPostmarkMailer(t *testing.T) {
	fake := &fakePostmark{}
	m := newPostmarkMailer(fake, testEmailConfig)

	err := m.Send(context.Background(), Message{
		To:       "owner@example.com",
		ToName:   "Ada",
		Template: "coverage-alert",
		Model:    map[string]any{"missing_days": 3},
		Tag:      "coverage",
	})
	require.NoError(t, err)
	require.Len(t, fake.sent, 1)
	assert.Equal(t, "coverage-alert", fake.sent[0].TemplateAlias)
	assert.Equal(t, `"Price Pilot" <noreply@example.com>`, fake.sent[0].From)
	assert.Equal(t, `"Ada" <owner@example.com>`, fake.sent[0].To)
	assert.Equal(t, "outbound", fake.sent[0].MessageStream)
	assert.Equal(t, 3, fake.sent[0].TemplateModel["missing_days"])

	fake.res = postmark.EmailResponse{ErrorCode: 406, Message: "inactive recipient"}
	assert.Error(t, m.Send(context.Background(), Message{To: "x@example.com", Template: "welcome"}))

	fake.res = postmark.EmailResponse{}
	fake.err = errors.New("boom")
	assert.Error(t, m.Send(context.Background(), Message{To: "x@example.com", Template: "welcome"}))
}

func TestSendGridMailer(t *testing.T) {
	fake := &fakeSendGrid{status: 202}
	m := newSendGridMailer(fake, testEmailConfig)

	err := m.Send(context.Background(), Message{
		To:       "owner@example.com",
		Template: "d-123",
		Model:    map[string]any{"first_name": "Ada"},
		Tag:      "welcome",
	})
	require.NoError(t, err)
	require.Len(t, fake.sent, 1)
	sent := fake.sent[0]
	assert.Equal(t, "d-123", sent.TemplateID)
	require.Len(t, sent.Personalizations, 1)
	assert.Equal(t, "Ada", sent.Personalizations[0].DynamicTemplateData["first_name"])
	require.NotNil(t, sent.MailSettings)
	assert.True(t, *sent.MailSettings.SandboxMode.Enable)

	fake.status = 400
	assert.Error(t, m.Send(context.Background(), Message{To: "x@example.com", Template: "d-1"}))
}
