package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"

	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

// lowestCompetitorPricesSQL ranks usable scraped rows per competitor and date.
// A row is sold out when it has no price and carries a sold-out message.
// Priced rows rank before sold-out rows, so a sold-out flag is only surfaced
// when nothing was bookable.
const lowestCompetitorPricesSQL = `
SELECT competitor_id, checkin_date, raw_price, currency, room_name, sold_out
FROM (
	SELECT
		cp.competitor_id,
		cp.checkin_date,
		cp.raw_price,
		cp.currency,
		cp.room_name,
		(cp.raw_price = 0 AND COALESCE(cp.sold_out_message, '') <> '') AS sold_out,
		ROW_NUMBER() OVER (
			PARTITION BY cp.competitor_id, cp.checkin_date
			ORDER BY (cp.raw_price = 0) ASC, cp.raw_price ASC, cp.scraped_at DESC
		) AS price_rank
	FROM booking_competitor_prices cp
	WHERE cp.competitor_id IN ?
		AND cp.checkin_date BETWEEN ? AND ?
		AND cp.hotel_name <> ?
		AND NOT (cp.max_persons > ? AND cp.max_persons < ?)
		AND (cp.raw_price > 0 OR (cp.raw_price = 0 AND COALESCE(cp.sold_out_message, '') <> ''))
) ranked
WHERE price_rank = 1
ORDER BY checkin_date ASC, raw_price ASC`

type lowestPriceRow struct {
	CompetitorID uuid.UUID
	CheckinDate  domain.Date
	RawPrice     decimal.Decimal
	Currency     string
	RoomName     string
	SoldOut      bool
}

// UpsertCompetitor creates or refreshes a competitor keyed by external hotel id
func (s *pgStore) UpsertCompetitor(ctx context.Context, input UpsertCompetitorInput) (*schema.Competitor, error) {
	competitor := schema.Competitor{
		ID:              uuid.New(),
		ExternalHotelID: input.ExternalHotelID,
		Name:            input.Name,
		Address:         input.Address,
		City:            input.City,
		Latitude:        input.Latitude,
		Longitude:       input.Longitude,
		Stars:           input.Stars,
		UpdatedAt:       time.Now(),
	}
	if len(input.Raw) > 0 {
		competitor.Raw = datatypes.JSON(input.Raw)
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_hotel_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "address", "city", "latitude", "longitude", "stars", "raw", "updated_at",
		}),
	}).Create(&competitor).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert competitor: %w", err)
	}

	var stored schema.Competitor
	err = s.db.WithContext(ctx).Clauses(dbWrite(s.db)...).
		Where("external_hotel_id = ?", input.ExternalHotelID).
		First(&stored).Error
	if err != nil {
		return nil, fmt.Errorf("failed to reload competitor: %w", err)
	}
	return &stored, nil
}

// LinkCompetitor links a competitor to a property, reviving a soft-deleted link
func (s *pgStore) LinkCompetitor(ctx context.Context, propertyID, competitorID uuid.UUID, onlyFollow bool) (*schema.PropertyCompetitor, error) {
	link := schema.PropertyCompetitor{
		PropertyID:   propertyID,
		CompetitorID: competitorID,
		OnlyFollow:   onlyFollow,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "property_id"}, {Name: "competitor_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"only_follow": onlyFollow,
			"deleted_at":  nil,
		}),
	}).Create(&link).Error
	if err != nil {
		return nil, fmt.Errorf("failed to link competitor: %w", err)
	}

	var stored schema.PropertyCompetitor
	err = s.db.WithContext(ctx).Clauses(dbWrite(s.db)...).
		Preload("Competitor").
		Where("property_id = ? AND competitor_id = ?", propertyID, competitorID).
		First(&stored).Error
	if err != nil {
		return nil, fmt.Errorf("failed to reload competitor link: %w", err)
	}
	return &stored, nil
}

// ListPropertyCompetitors lists active competitor links
func (s *pgStore) ListPropertyCompetitors(ctx context.Context, propertyID uuid.UUID) ([]schema.PropertyCompetitor, error) {
	var links []schema.PropertyCompetitor
	err := s.db.WithContext(ctx).
		Scopes(Active[schema.PropertyCompetitor]()).
		Preload("Competitor").
		Where("property_id = ?", propertyID).
		Order("created_at ASC").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list competitors: %w", err)
	}
	return links, nil
}

// GetPropertyCompetitor retrieves an active competitor link
func (s *pgStore) GetPropertyCompetitor(ctx context.Context, propertyID, competitorID uuid.UUID) (*schema.PropertyCompetitor, error) {
	var link schema.PropertyCompetitor
	err := s.db.WithContext(ctx).
		Scopes(Active[schema.PropertyCompetitor]()).
		Preload("Competitor").
		Where("property_id = ? AND competitor_id = ?", propertyID, competitorID).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get competitor: %w", err)
	}
	return &link, nil
}

// SetCompetitorOnlyFollow updates the only_follow flag of an active link
func (s *pgStore) SetCompetitorOnlyFollow(ctx context.Context, propertyID, competitorID uuid.UUID, onlyFollow bool) (bool, error) {
	result := s.db.WithContext(ctx).Model(&schema.PropertyCompetitor{}).
		Scopes(Active[schema.PropertyCompetitor]()).
		Where("property_id = ? AND competitor_id = ?", propertyID, competitorID).
		Update("only_follow", onlyFollow)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update competitor: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// UnlinkCompetitor soft deletes a competitor link
func (s *pgStore) UnlinkCompetitor(ctx context.Context, propertyID, competitorID uuid.UUID, at time.Time) (bool, error) {
	result := s.db.WithContext(ctx).Model(&schema.PropertyCompetitor{}).
		Scopes(Active[schema.PropertyCompetitor]()).
		Where("property_id = ? AND competitor_id = ?", propertyID, competitorID).
		Updates(softDeleteUpdates[schema.PropertyCompetitor](at))
	if result.Error != nil {
		return false, fmt.Errorf("failed to unlink competitor: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GetLowestCompetitorPrices returns the cheapest usable price per competitor and date
func (s *pgStore) GetLowestCompetitorPrices(ctx context.Context, competitorIDs []uuid.UUID, window domain.DateRange) ([]LowestCompetitorPrice, error) {
	if len(competitorIDs) == 0 {
		return nil, nil
	}

	// raw SQL carries no model, so the reporting resolver is named explicitly
	var rows []lowestPriceRow
	err := s.db.WithContext(ctx).Clauses(dbresolver.Use(reportingResolver)).Raw(lowestCompetitorPricesSQL,
		competitorIDs,
		window.From, window.Until,
		domain.NOT_PARSABLE_HOTEL_NAME,
		domain.MIN_MAX_PERSONS, domain.MAX_MAX_PERSONS,
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get lowest competitor prices: %w", err)
	}

	prices := make([]LowestCompetitorPrice, 0, len(rows))
	for _, r := range rows {
		price := decimal.NewNullDecimal(r.RawPrice)
		if r.SoldOut {
			price = decimal.NullDecimal{}
		}
		prices = append(prices, LowestCompetitorPrice{
			CompetitorID: r.CompetitorID,
			CheckinDate:  r.CheckinDate,
			Price:        price,
			Currency:     r.Currency,
			RoomName:     r.RoomName,
			SoldOut:      r.SoldOut,
		})
	}
	return prices, nil
}

// InsertCompetitorPrices writes scraped price rows
func (s *pgStore) InsertCompetitorPrices(ctx context.Context, rows []schema.CompetitorPrice) error {
	if len(rows) == 0 {
		return nil
	}
	batchSize := calculateSafeBatchSize(len(rows), 10)
	if err := s.db.WithContext(ctx).CreateInBatches(rows, batchSize).Error; err != nil {
		return fmt.Errorf("failed to insert competitor prices: %w", err)
	}
	return nil
}
