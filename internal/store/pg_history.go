package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

// ListDailyOccupancy returns the latest occupancy snapshot per stay date
func (s *pgStore) ListDailyOccupancy(ctx context.Context, propertyID uuid.UUID, window domain.DateRange) ([]schema.DailyOccupancy, error) {
	var rows []schema.DailyOccupancy
	err := s.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (stay_date) *
FROM pms_daily_occupancy
WHERE property_id = ? AND stay_date BETWEEN ? AND ?
ORDER BY stay_date ASC, as_of DESC, id DESC`, propertyID, window.From, window.Until).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list daily occupancy: %w", err)
	}
	return rows, nil
}

// InsertDailyOccupancy writes occupancy snapshots
func (s *pgStore) InsertDailyOccupancy(ctx context.Context, rows []schema.DailyOccupancy) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(&rows, calculateSafeBatchSize(len(rows), 6)).Error; err != nil {
		return fmt.Errorf("failed to insert daily occupancy: %w", err)
	}
	return nil
}

// GetLatestPriceChanges returns the latest recommended price row per date
func (s *pgStore) GetLatestPriceChanges(ctx context.Context, propertyID uuid.UUID, window domain.DateRange) ([]schema.PriceChangeHistory, error) {
	var rows []schema.PriceChangeHistory
	err := s.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (checkin_date) *
FROM dp_price_change_history
WHERE property_id = ? AND checkin_date BETWEEN ? AND ?
ORDER BY checkin_date ASC, as_of DESC, id DESC`, propertyID, window.From, window.Until).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get latest price changes: %w", err)
	}
	return rows, nil
}

// GetLatestOverwrites returns the latest overwrite row per date, including clearing rows
func (s *pgStore) GetLatestOverwrites(ctx context.Context, propertyID uuid.UUID, window domain.DateRange) ([]schema.OverwritePriceHistory, error) {
	var rows []schema.OverwritePriceHistory
	err := s.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (checkin_date) *
FROM overwrite_price_history
WHERE property_id = ? AND checkin_date BETWEEN ? AND ?
ORDER BY checkin_date ASC, as_of DESC, id DESC`, propertyID, window.From, window.Until).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get latest overwrites: %w", err)
	}
	return rows, nil
}

// CreatePriceChanges appends recommended price snapshots
func (s *pgStore) CreatePriceChanges(ctx context.Context, rows []schema.PriceChangeHistory) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(&rows, calculateSafeBatchSize(len(rows), 11)).Error; err != nil {
		return fmt.Errorf("failed to create price changes: %w", err)
	}
	return nil
}

// CreateOverwrite appends an overwrite snapshot
func (s *pgStore) CreateOverwrite(ctx context.Context, row *schema.OverwritePriceHistory) error {
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to create overwrite: %w", err)
	}
	return nil
}

// ListPriceChangesForDate lists recommended price snapshots for a date, newest first
func (s *pgStore) ListPriceChangesForDate(ctx context.Context, propertyID uuid.UUID, date domain.Date, limit int) ([]schema.PriceChangeHistory, error) {
	var rows []schema.PriceChangeHistory
	err := s.db.WithContext(ctx).
		Where("property_id = ? AND checkin_date = ?", propertyID, date).
		Order("as_of DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list price changes: %w", err)
	}
	return rows, nil
}

// ListOverwritesForDate lists overwrite snapshots for a date, newest first
func (s *pgStore) ListOverwritesForDate(ctx context.Context, propertyID uuid.UUID, date domain.Date, limit int) ([]schema.OverwritePriceHistory, error) {
	var rows []schema.OverwritePriceHistory
	err := s.db.WithContext(ctx).
		Where("property_id = ? AND checkin_date = ?", propertyID, date).
		Order("as_of DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list overwrites: %w", err)
	}
	return rows, nil
}

// ListLegacyOverwrites pages through the legacy overwrite table by id
func (s *pgStore) ListLegacyOverwrites(ctx context.Context, afterID int64, limit int) ([]schema.LegacyPriceOverwrite, error) {
	var rows []schema.LegacyPriceOverwrite
	err := s.db.WithContext(ctx).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list legacy overwrites: %w", err)
	}
	return rows, nil
}

// BackfillOverwrites inserts overwrite rows in one transaction, skipping existing snapshots
func (s *pgStore) BackfillOverwrites(ctx context.Context, rows []schema.OverwritePriceHistory) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	var inserted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "property_id"},
				{Name: "checkin_date"},
				{Name: "as_of"},
			},
			DoNothing: true,
		}).CreateInBatches(&rows, calculateSafeBatchSize(len(rows), 5))
		if result.Error != nil {
			return result.Error
		}
		inserted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to backfill overwrites: %w", err)
	}
	return inserted, nil
}
