package billing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/pricepilot/dynamic-pricing/internal/config"
	"github.com/pricepilot/dynamic-pricing/internal/domain"
)

// CheckoutSession is a created Stripe Checkout session
type CheckoutSession struct {
	ID  string
	URL string
}

// CompletedCheckout is the payload of a checkout.session.completed event
type CompletedCheckout struct {
	SessionID         string
	ClientReferenceID string
	CustomerID        string
	CustomerEmail     string
	AmountTotal       int64
	Currency          string
	Paid              bool
}

// Event is a verified webhook event. Checkout is set for checkout.session.completed only.
type Event struct {
	ID       string
	Type     string
	Checkout *CompletedCheckout
}

// Service wraps the Stripe operations the API needs
type Service interface {
	CreateCheckoutSession(ctx context.Context, profileID uuid.UUID, email string, customerID *string) (*CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

type checkoutCreator interface {
	Create(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error)
}

type stripeService struct {
	sessions checkoutCreator
	cfg      config.StripeConfig
}

// NewService builds a Stripe service with its own client; the package level
// stripe.Key is never touched
func NewService(cfg config.StripeConfig) Service {
	var sessions checkoutCreator
	if cfg.SecretKey != "" {
		sessions = stripe.NewClient(cfg.SecretKey).V1CheckoutSessions
	}
	return &stripeService{sessions: sessions, cfg: cfg}
}

// CreateCheckoutSession starts a subscription checkout for a profile
func (s *stripeService) CreateCheckoutSession(ctx context.Context, profileID uuid.UUID, email string, customerID *string) (*CheckoutSession, error) {
	if s.sessions == nil || s.cfg.PriceID == "" {
		return nil, fmt.Errorf("%w: stripe checkout", domain.ErrNotConfigured)
	}

	params := &stripe.CheckoutSessionCreateParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				Price:    stripe.String(s.cfg.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(s.cfg.SuccessURL),
		CancelURL:         stripe.String(s.cfg.CancelURL),
		ClientReferenceID: stripe.String(profileID.String()),
	}
	if customerID != nil && *customerID != "" {
		params.Customer = customerID
	} else if email != "" {
		params.CustomerEmail = stripe.String(email)
	}

	session, err := s.sessions.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: stripe: %v", domain.ErrUpstreamUnavailable, err)
	}

	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes the event
func (s *stripeService) ParseWebhook(payload []byte, signature string) (*Event, error) {
	if s.cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("%w: stripe webhook secret", domain.ErrNotConfigured)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}

	result := &Event{ID: event.ID, Type: string(event.Type)}
	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return result, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}

	checkout := &CompletedCheckout{
		SessionID:         session.ID,
		ClientReferenceID: session.ClientReferenceID,
		AmountTotal:       session.AmountTotal,
		Currency:          string(session.Currency),
		Paid:              session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}
	if session.Customer != nil {
		checkout.CustomerID = session.Customer.ID
	}
	if session.CustomerDetails != nil {
		checkout.CustomerEmail = session.CustomerDetails.Email
	}
	result.Checkout = checkout

	return result, nil
}
