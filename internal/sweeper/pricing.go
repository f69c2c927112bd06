package sweeper

import (
	"context"
	"fmt"

	"github.com/pricepilot/dynamic-pricing/internal/adapter"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

const (
	PRICING_SWEEPER_NAME         = "pricing"
	DEFAULT_PRICING_HORIZON_DAYS = 365
)

// NewPricingSweeper recalculates prices for active properties whose pricing
// is switched on
func NewPricingSweeper(config Config, source Source, engine Recalculator, clock adapter.Clock) Sweeper {
	if config.HorizonDays <= 0 {
		config.HorizonDays = DEFAULT_PRICING_HORIZON_DAYS
	}
	s := newScheduledSweeper(PRICING_SWEEPER_NAME, config, source, clock, func(ctx context.Context, property *schema.Property) error {
		if _, err := engine.Recalculate(ctx, property, config.HorizonDays); err != nil {
			return fmt.Errorf("failed to recalculate prices: %w", err)
		}
		return nil
	})

	s.include = func(ctx context.Context, property *schema.Property) (bool, error) {
		settings, err := source.GetGeneralSettings(ctx, property.ID)
		if err != nil {
			return false, err
		}
		return settings != nil && settings.IsPricingOnline, nil
	}
	return s
}
