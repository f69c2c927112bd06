package executor

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pricepilot/dynamic-pricing/internal/api/shared/dto"
	"github.com/pricepilot/dynamic-pricing/internal/billing"
	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/email"
	"github.com/pricepilot/dynamic-pricing/internal/logger"
	"github.com/pricepilot/dynamic-pricing/internal/notification"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

// BillingExecutor handles Stripe checkout and its webhook
type BillingExecutor interface {
	CreateCheckoutSession(ctx context.Context, profileID uuid.UUID) (*dto.CheckoutSessionResponse, error)
	// HandleStripeWebhook verifies and processes a Stripe event. Events other
	// than checkout.session.completed are acknowledged without effect.
	HandleStripeWebhook(ctx context.Context, payload []byte, signature string) (*dto.WebhookResponse, error)
}

func (e *executor) CreateCheckoutSession(ctx context.Context, profileID uuid.UUID) (*dto.CheckoutSessionResponse, error) {
	profile, err := e.store.GetProfileByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrProfileNotFound
	}

	session, err := e.billing.CreateCheckoutSession(ctx, profile.ID, profile.Email, profile.StripeCustomerID)
	if err != nil {
		return nil, err
	}
	logger.InfoCtx(ctx, "Checkout session created",
		zap.String("profileID", profile.ID.String()),
		zap.String("sessionID", session.ID))

	return &dto.CheckoutSessionResponse{URL: session.URL, SessionID: session.ID}, nil
}

func (e *executor) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) (*dto.WebhookResponse, error) {
	event, err := e.billing.ParseWebhook(payload, signature)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithFields(ctx, zap.String("stripeEventID", event.ID), zap.String("stripeEventType", event.Type))
	if event.Checkout == nil {
		logger.InfoCtx(ctx, "Stripe event ignored")
		return &dto.WebhookResponse{Received: true}, nil
	}

	if err := e.completeCheckout(ctx, event.Checkout); err != nil {
		return nil, err
	}
	return &dto.WebhookResponse{Received: true}, nil
}

func (e *executor) completeCheckout(ctx context.Context, checkout *billing.CompletedCheckout) error {
	profileID, err := uuid.Parse(checkout.ClientReferenceID)
	if err != nil {
		logger.WarnCtx(ctx, "Checkout session without a profile reference",
			zap.String("sessionID", checkout.SessionID),
			zap.String("clientReferenceID", checkout.ClientReferenceID))
		return nil
	}

	profile, err := e.store.GetProfileByID(ctx, profileID)
	if err != nil {
		return err
	}
	if profile == nil {
		logger.WarnCtx(ctx, "Checkout session for an unknown profile",
			zap.String("sessionID", checkout.SessionID),
			zap.String("profileID", profileID.String()))
		return nil
	}

	status := domain.PaymentStatusUnpaid
	if checkout.Paid {
		status = domain.PaymentStatusPaid
	}
	// the payment and the profile's customer id commit together so a
	// redelivered event never finds one without the other
	created, err := e.store.RecordCheckout(ctx, &schema.Payment{
		ProfileID:        profile.ID,
		StripeSessionID:  checkout.SessionID,
		StripeCustomerID: checkout.CustomerID,
		AmountTotal:      checkout.AmountTotal,
		Currency:         strings.ToUpper(checkout.Currency),
		Status:           status,
	})
	if err != nil {
		return err
	}
	if !created {
		logger.InfoCtx(ctx, "Checkout session already recorded", zap.String("sessionID", checkout.SessionID))
		return nil
	}

	logger.InfoCtx(ctx, "Payment recorded",
		zap.String("profileID", profile.ID.String()),
		zap.String("sessionID", checkout.SessionID),
		zap.Int64("amountTotal", checkout.AmountTotal),
		zap.String("status", string(status)))

	if !checkout.Paid {
		return nil
	}

	if e.cfg.Templates.PaymentReceipt != "" {
		err := e.mailer.Send(ctx, email.Message{
			To:       profile.Email,
			ToName:   strings.TrimSpace(profile.FirstName + " " + profile.LastName),
			Template: e.cfg.Templates.PaymentReceipt,
			Model: map[string]any{
				"first_name": profile.FirstName,
				"amount":     notification.FormatAmount(checkout.AmountTotal, checkout.Currency),
				"session_id": checkout.SessionID,
			},
			Tag: "payment_receipt",
		})
		if err != nil {
			logger.WarnCtx(ctx, "Failed to send payment receipt", zap.Error(err), zap.String("profileID", profile.ID.String()))
		}
	}

	if err := e.notifications.NotifyPayment(ctx, profile.ID, checkout.AmountTotal, checkout.Currency); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("profileID", profile.ID.String()))
	}
	return nil
}
