package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

// =============================================================================
// Generic helpers for property-scoped rule tables
// =============================================================================

func listDateRangedRules[T any](ctx context.Context, db *gorm.DB, propertyID uuid.UUID, window *domain.DateRange) ([]T, error) {
	var rows []T
	query := db.WithContext(ctx).Where("property_id = ?", propertyID)
	if window != nil {
		// overlap, not containment
		query = query.Where("valid_from <= ? AND valid_until >= ?", window.Until, window.From)
	}
	if err := query.Order("valid_from ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func getRule[T any](ctx context.Context, db *gorm.DB, propertyID uuid.UUID, id int64) (*T, error) {
	var row T
	err := db.WithContext(ctx).Where("property_id = ? AND id = ?", propertyID, id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func deleteRule[T any](ctx context.Context, db *gorm.DB, propertyID uuid.UUID, id int64) (bool, error) {
	result := db.WithContext(ctx).Where("property_id = ? AND id = ?", propertyID, id).Delete(new(T))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// =============================================================================
// General settings and increments
// =============================================================================

// GetGeneralSettings retrieves the settings of a property
func (s *pgStore) GetGeneralSettings(ctx context.Context, propertyID uuid.UUID) (*schema.GeneralSettings, error) {
	var settings schema.GeneralSettings
	err := s.db.WithContext(ctx).Where("property_id = ?", propertyID).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get general settings: %w", err)
	}
	return &settings, nil
}

// SaveGeneralSettings creates or replaces the settings of a property
func (s *pgStore) SaveGeneralSettings(ctx context.Context, settings *schema.GeneralSettings) error {
	settings.UpdatedAt = time.Now()
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "property_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"pricing_mode",
			"min_competitors",
			"max_competitors",
			"base_price",
			"max_price",
			"holiday_increment",
			"is_pricing_online",
			"is_competitor_tracking_online",
			"updated_at",
		}),
	}).Create(settings).Error
	if err != nil {
		return fmt.Errorf("failed to save general settings: %w", err)
	}
	return nil
}

// ListDynamicIncrements lists the increment grid of a property
func (s *pgStore) ListDynamicIncrements(ctx context.Context, propertyID uuid.UUID) ([]schema.DynamicIncrement, error) {
	var cells []schema.DynamicIncrement
	err := s.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("occupancy_category ASC, lead_time_category ASC").
		Find(&cells).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list dynamic increments: %w", err)
	}
	return cells, nil
}

// UpsertDynamicIncrements inserts or updates grid cells
func (s *pgStore) UpsertDynamicIncrements(ctx context.Context, propertyID uuid.UUID, cells []schema.DynamicIncrement) error {
	if len(cells) == 0 {
		return nil
	}
	now := time.Now()
	for i := range cells {
		cells[i].ID = 0
		cells[i].PropertyID = propertyID
		cells[i].UpdatedAt = now
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "property_id"},
			{Name: "occupancy_category"},
			{Name: "lead_time_category"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"increment_value", "updated_at"}),
	}).Create(&cells).Error
	if err != nil {
		return fmt.Errorf("failed to upsert dynamic increments: %w", err)
	}
	return nil
}

// SeedDefaultIncrements inserts the default grid cells a property is missing
func (s *pgStore) SeedDefaultIncrements(ctx context.Context, propertyID uuid.UUID, deleteExisting bool) (int64, error) {
	var written int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		written, err = seedDefaultIncrements(tx, propertyID, deleteExisting)
		return err
	})
	return written, err
}

func seedDefaultIncrements(tx *gorm.DB, propertyID uuid.UUID, deleteExisting bool) (int64, error) {
	if deleteExisting {
		if err := tx.Where("property_id = ?", propertyID).Delete(&schema.DynamicIncrement{}).Error; err != nil {
			return 0, fmt.Errorf("failed to delete dynamic increments: %w", err)
		}
	}

	defaults := domain.DefaultIncrements()
	cells := make([]schema.DynamicIncrement, 0, len(defaults))
	for _, d := range defaults {
		cells = append(cells, schema.DynamicIncrement{
			PropertyID:        propertyID,
			OccupancyCategory: d.Occupancy,
			LeadTimeCategory:  d.LeadTime,
			IncrementValue:    d.Value,
		})
	}

	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&cells)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to seed dynamic increments: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// =============================================================================
// Minimum selling prices
// =============================================================================

func (s *pgStore) ListMinimumSellingPrices(ctx context.Context, propertyID uuid.UUID, window *domain.DateRange) ([]schema.MinimumSellingPrice, error) {
	rows, err := listDateRangedRules[schema.MinimumSellingPrice](ctx, s.db, propertyID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to list minimum selling prices: %w", err)
	}
	return rows, nil
}

func (s *pgStore) GetMinimumSellingPrice(ctx context.Context, propertyID uuid.UUID, id int64) (*schema.MinimumSellingPrice, error) {
	row, err := getRule[schema.MinimumSellingPrice](ctx, s.db, propertyID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get minimum selling price: %w", err)
	}
	return row, nil
}

func (s *pgStore) SaveMinimumSellingPrice(ctx context.Context, rule *schema.MinimumSellingPrice) error {
	rule.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(rule).Error; err != nil {
		return fmt.Errorf("failed to save minimum selling price: %w", err)
	}
	return nil
}

func (s *pgStore) DeleteMinimumSellingPrice(ctx context.Context, propertyID uuid.UUID, id int64) (bool, error) {
	deleted, err := deleteRule[schema.MinimumSellingPrice](ctx, s.db, propertyID, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete minimum selling price: %w", err)
	}
	return deleted, nil
}

// =============================================================================
// Offer increments
// =============================================================================

func (s *pgStore) ListOfferIncrements(ctx context.Context, propertyID uuid.UUID, window *domain.DateRange) ([]schema.OfferIncrement, error) {
	rows, err := listDateRangedRules[schema.OfferIncrement](ctx, s.db, propertyID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to list offer increments: %w", err)
	}
	return rows, nil
}

func (s *pgStore) GetOfferIncrement(ctx context.Context, propertyID uuid.UUID, id int64) (*schema.OfferIncrement, error) {
	row, err := getRule[schema.OfferIncrement](ctx, s.db, propertyID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get offer increment: %w", err)
	}
	return row, nil
}

func (s *pgStore) SaveOfferIncrement(ctx context.Context, rule *schema.OfferIncrement) error {
	rule.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(rule).Error; err != nil {
		return fmt.Errorf("failed to save offer increment: %w", err)
	}
	return nil
}

func (s *pgStore) DeleteOfferIncrement(ctx context.Context, propertyID uuid.UUID, id int64) (bool, error) {
	deleted, err := deleteRule[schema.OfferIncrement](ctx, s.db, propertyID, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete offer increment: %w", err)
	}
	return deleted, nil
}

// =============================================================================
// LOS setups and reductions
// =============================================================================

func (s *pgStore) ListLosSetups(ctx context.Context, propertyID uuid.UUID, window *domain.DateRange) ([]schema.LosSetup, error) {
	rows, err := listDateRangedRules[schema.LosSetup](ctx, s.db, propertyID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to list los setups: %w", err)
	}
	return rows, nil
}

func (s *pgStore) GetLosSetup(ctx context.Context, propertyID uuid.UUID, id int64) (*schema.LosSetup, error) {
	row, err := getRule[schema.LosSetup](ctx, s.db, propertyID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get los setup: %w", err)
	}
	return row, nil
}

func (s *pgStore) SaveLosSetup(ctx context.Context, rule *schema.LosSetup) error {
	rule.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(rule).Error; err != nil {
		return fmt.Errorf("failed to save los setup: %w", err)
	}
	return nil
}

func (s *pgStore) DeleteLosSetup(ctx context.Context, propertyID uuid.UUID, id int64) (bool, error) {
	deleted, err := deleteRule[schema.LosSetup](ctx, s.db, propertyID, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete los setup: %w", err)
	}
	return deleted, nil
}

// ListLosReductions lists LOS reductions ordered for best-match lookup
func (s *pgStore) ListLosReductions(ctx context.Context, propertyID uuid.UUID) ([]schema.LosReduction, error) {
	var rows []schema.LosReduction
	err := s.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("occupancy_category ASC, num_nights ASC, lead_time_days ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list los reductions: %w", err)
	}
	return rows, nil
}

// UpsertLosReductions inserts or updates LOS reductions
func (s *pgStore) UpsertLosReductions(ctx context.Context, propertyID uuid.UUID, rows []schema.LosReduction) error {
	if len(rows) == 0 {
		return nil
	}
	now := time.Now()
	for i := range rows {
		rows[i].ID = 0
		rows[i].PropertyID = propertyID
		rows[i].UpdatedAt = now
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "property_id"},
			{Name: "lead_time_days"},
			{Name: "occupancy_category"},
			{Name: "num_nights"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"reduction_percent", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to upsert los reductions: %w", err)
	}
	return nil
}

func (s *pgStore) DeleteLosReduction(ctx context.Context, propertyID uuid.UUID, id int64) (bool, error) {
	deleted, err := deleteRule[schema.LosReduction](ctx, s.db, propertyID, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete los reduction: %w", err)
	}
	return deleted, nil
}

// =============================================================================
// Room rates
// =============================================================================

func (s *pgStore) ListRoomRates(ctx context.Context, propertyID uuid.UUID) ([]schema.RoomRate, error) {
	var rows []schema.RoomRate
	err := s.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("is_base_rate DESC, room_type_code ASC, rate_plan_code ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list room rates: %w", err)
	}
	return rows, nil
}

func (s *pgStore) GetRoomRate(ctx context.Context, propertyID uuid.UUID, id int64) (*schema.RoomRate, error) {
	row, err := getRule[schema.RoomRate](ctx, s.db, propertyID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get room rate: %w", err)
	}
	return row, nil
}

func (s *pgStore) SaveRoomRate(ctx context.Context, rate *schema.RoomRate) error {
	rate.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(rate).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateRule
		}
		return fmt.Errorf("failed to save room rate: %w", err)
	}
	return nil
}

func (s *pgStore) DeleteRoomRate(ctx context.Context, propertyID uuid.UUID, id int64) (bool, error) {
	deleted, err := deleteRule[schema.RoomRate](ctx, s.db, propertyID, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete room rate: %w", err)
	}
	return deleted, nil
}
