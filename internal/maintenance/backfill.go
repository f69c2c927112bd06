package maintenance

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pricepilot/dynamic-pricing/internal/logger"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

const DEFAULT_BACKFILL_BATCH_SIZE = 500

// OverwriteBackfiller is the store surface used to copy legacy overwrites
type OverwriteBackfiller interface {
	ListLegacyOverwrites(ctx context.Context, afterID int64, limit int) ([]schema.LegacyPriceOverwrite, error)
	BackfillOverwrites(ctx context.Context, rows []schema.OverwritePriceHistory) (int64, error)
}

// BackfillOptions controls a backfill run
type BackfillOptions struct {
	BatchSize int
	// Limit caps the number of legacy rows read; 0 reads everything
	Limit  int
	DryRun bool
}

// BackfillReport summarises a backfill run
type BackfillReport struct {
	Read     int   `json:"read"`
	Inserted int64 `json:"inserted"`
	Batches  int   `json:"batches"`
	LastID   int64 `json:"last_id"`
}

// BackfillOverwrites copies legacy overwrites into overwrite_price_history
// one batch per transaction. Rows already copied are skipped on conflict so
// the command can be re-run after a failure.
func BackfillOverwrites(ctx context.Context, src OverwriteBackfiller, opts BackfillOptions) (*BackfillReport, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DEFAULT_BACKFILL_BATCH_SIZE
	}

	report := &BackfillReport{}
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		size := opts.BatchSize
		if opts.Limit > 0 {
			remaining := opts.Limit - report.Read
			if remaining <= 0 {
				break
			}
			size = min(size, remaining)
		}

		legacy, err := src.ListLegacyOverwrites(ctx, report.LastID, size)
		if err != nil {
			return report, err
		}
		if len(legacy) == 0 {
			break
		}

		rows := make([]schema.OverwritePriceHistory, 0, len(legacy))
		for _, l := range legacy {
			rows = append(rows, schema.OverwritePriceHistory{
				PropertyID:     l.PropertyID,
				CheckinDate:    l.CheckinDate,
				AsOf:           l.CreatedAt,
				OverwritePrice: decimal.NewNullDecimal(l.Price),
			})
		}

		if !opts.DryRun {
			inserted, err := src.BackfillOverwrites(ctx, rows)
			if err != nil {
				return report, fmt.Errorf("failed to backfill batch after id %d: %w", report.LastID, err)
			}
			report.Inserted += inserted
		}

		report.Read += len(legacy)
		report.Batches++
		report.LastID = legacy[len(legacy)-1].ID

		logger.InfoCtx(ctx, "Backfilled overwrite batch",
			zap.Int("batch", report.Batches),
			zap.Int("read", report.Read),
			zap.Int64("inserted", report.Inserted),
			zap.Int64("last_id", report.LastID),
			zap.Bool("dry_run", opts.DryRun),
		)

		if len(legacy) < size {
			break
		}
	}

	return report, nil
}
