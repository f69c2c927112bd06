package maintenance

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pricepilot/dynamic-pricing/internal/logger"
	"github.com/pricepilot/dynamic-pricing/internal/notification"
	"github.com/pricepilot/dynamic-pricing/internal/pricing"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

// Recalculator recomputes recommended prices
type Recalculator interface {
	Recalculate(ctx context.Context, property *schema.Property, days int) (*pricing.Result, error)
}

// CoverageChecker raises coverage notifications
type CoverageChecker interface {
	CheckCoverage(ctx context.Context, property *schema.Property, days int) (*notification.Report, error)
}

// RunReport summarises a command run over properties
type RunReport struct {
	Properties int `json:"properties"`
	Failed     int `json:"failed"`
	// Changed is the number of dates whose price changed, or notifications created
	Changed int `json:"changed"`
}

// RecalculatePrices recalculates one property, or every active property when propertyID is nil.
// A failing property is logged and counted; the run continues.
func RecalculatePrices(ctx context.Context, st PropertyLister, engine Recalculator, propertyID *uuid.UUID, days int) (*RunReport, error) {
	return forEachProperty(ctx, st, propertyID, func(ctx context.Context, property *schema.Property) (int, error) {
		result, err := engine.Recalculate(ctx, property, days)
		if err != nil {
			return 0, err
		}
		logger.InfoCtx(ctx, "Recalculated prices",
			zap.Int("priced", result.Priced),
			zap.Int("changed", result.Changed),
		)
		return result.Changed, nil
	})
}

// CheckCoverage raises coverage notifications for every active property
func CheckCoverage(ctx context.Context, st PropertyLister, checker CoverageChecker, days int) (*RunReport, error) {
	return forEachProperty(ctx, st, nil, func(ctx context.Context, property *schema.Property) (int, error) {
		report, err := checker.CheckCoverage(ctx, property, days)
		if err != nil {
			return 0, err
		}
		logger.InfoCtx(ctx, "Checked coverage",
			zap.Int("gaps", len(report.Gaps)),
			zap.Int("created", report.Created),
		)
		return report.Created, nil
	})
}

func forEachProperty(ctx context.Context, st PropertyLister, propertyID *uuid.UUID, fn func(ctx context.Context, property *schema.Property) (int, error)) (*RunReport, error) {
	properties, err := resolveProperties(ctx, st, propertyID)
	if err != nil {
		return nil, err
	}

	report := &RunReport{}
	for i := range properties {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		property := &properties[i]
		propertyCtx := logger.WithFields(ctx, zap.String("propertyID", property.ID.String()))
		changed, err := fn(propertyCtx, property)
		if err != nil {
			report.Failed++
			logger.ErrorCtx(propertyCtx, err)
			continue
		}
		report.Properties++
		report.Changed += changed
	}
	return report, nil
}
