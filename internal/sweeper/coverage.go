package sweeper

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pricepilot/dynamic-pricing/internal/adapter"
	"github.com/pricepilot/dynamic-pricing/internal/logger"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

const COVERAGE_SWEEPER_NAME = "coverage"

// NewCoverageSweeper purges expired notifications and raises coverage
// notifications for every active property
func NewCoverageSweeper(config Config, source Source, checker CoverageChecker, clock adapter.Clock) Sweeper {
	s := newScheduledSweeper(COVERAGE_SWEEPER_NAME, config, source, clock, func(ctx context.Context, property *schema.Property) error {
		report, err := checker.CheckCoverage(ctx, property, config.HorizonDays)
		if err != nil {
			return fmt.Errorf("failed to check coverage: %w", err)
		}
		if report.Created > 0 {
			logger.InfoCtx(ctx, "Coverage notifications created",
				zap.Int("gaps", len(report.Gaps)),
				zap.Int("created", report.Created),
			)
		}
		return nil
	})

	s.prepare = func(ctx context.Context, summary *RunSummary) error {
		purged, err := checker.PurgeExpired(ctx)
		if err != nil {
			return fmt.Errorf("failed to purge expired notifications: %w", err)
		}
		summary.Purged = purged
		return nil
	}
	return s
}
