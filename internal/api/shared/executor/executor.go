package executor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pricepilot/dynamic-pricing/internal/adapter"
	"github.com/pricepilot/dynamic-pricing/internal/auth"
	"github.com/pricepilot/dynamic-pricing/internal/billing"
	"github.com/pricepilot/dynamic-pricing/internal/config"
	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/email"
	"github.com/pricepilot/dynamic-pricing/internal/notification"
	"github.com/pricepilot/dynamic-pricing/internal/pricing"
	"github.com/pricepilot/dynamic-pricing/internal/providers/competitor"
	"github.com/pricepilot/dynamic-pricing/internal/store"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

// Executor is the interface for the API executor
type Executor interface {
	AuthExecutor
	PropertyExecutor
	CompetitorExecutor
	SettingsExecutor
	PriceExecutor
	NotificationExecutor
	BillingExecutor
}

// Config holds the executor settings that come from the API configuration
type Config struct {
	RefreshTokenTTL    time.Duration
	Templates          config.EmailTemplates
	PricingHorizonDays int
}

type executor struct {
	store         store.Store
	tokens        *auth.TokenManager
	mailer        email.Mailer
	competitors   competitor.Client
	billing       billing.Service
	engine        *pricing.Engine
	notifications *notification.Service
	clock         adapter.Clock
	cfg           Config
}

// NewExecutor creates the API executor
func NewExecutor(
	st store.Store,
	tokens *auth.TokenManager,
	mailer email.Mailer,
	competitors competitor.Client,
	billingService billing.Service,
	engine *pricing.Engine,
	notifications *notification.Service,
	clock adapter.Clock,
	cfg Config,
) Executor {
	if cfg.RefreshTokenTTL <= 0 {
		cfg.RefreshTokenTTL = 30 * 24 * time.Hour
	}
	if cfg.PricingHorizonDays <= 0 {
		cfg.PricingHorizonDays = 365
	}
	return &executor{
		store:         st,
		tokens:        tokens,
		mailer:        mailer,
		competitors:   competitors,
		billing:       billingService,
		engine:        engine,
		notifications: notifications,
		clock:         clock,
		cfg:           cfg,
	}
}

// ownedProperty loads an active property the profile manages. Properties of
// other profiles are reported as not found.
func (e *executor) ownedProperty(ctx context.Context, profileID, propertyID uuid.UUID) (*schema.Property, error) {
	property, err := e.store.GetPropertyForProfile(ctx, profileID, propertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, domain.ErrPropertyNotFound
	}
	return property, nil
}

// propertyToday is the current date in the property's time zone
func (e *executor) propertyToday(property *schema.Property) domain.Date {
	return domain.Today(e.clock.Now(), property.Location())
}
