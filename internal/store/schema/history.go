package schema

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/pricepilot/dynamic-pricing/internal/domain"
)

// PriceChangeHistory is an append-only snapshot of a computed recommended price
type PriceChangeHistory struct {
	ID                int64                    `gorm:"column:id;primaryKey;autoIncrement"`
	PropertyID        uuid.UUID                `gorm:"column:property_id;type:uuid;not null;uniqueIndex:uq_dp_price_change,priority:1"`
	CheckinDate       domain.Date              `gorm:"column:checkin_date;type:date;not null;uniqueIndex:uq_dp_price_change,priority:2"`
	AsOf              time.Time                `gorm:"column:as_of;not null;uniqueIndex:uq_dp_price_change,priority:3"`
	RecommendedPrice  decimal.Decimal          `gorm:"column:recommended_price;type:numeric(12,2);not null"`
	CompetitorPrice   decimal.NullDecimal      `gorm:"column:competitor_price;type:numeric(12,2)"`
	Occupancy         float64                  `gorm:"column:occupancy;not null;default:0"`
	OccupancyCategory domain.OccupancyCategory `gorm:"column:occupancy_category;not null"`
	LeadTimeCategory  domain.LeadTimeCategory  `gorm:"column:lead_time_category;not null"`
	IncrementApplied  decimal.Decimal          `gorm:"column:increment_applied;type:numeric(6,2);not null;default:0"`
	MSPApplied        bool                     `gorm:"column:msp_applied;not null;default:false"`
	// LosPrices maps number of nights to the per-night price
	LosPrices datatypes.JSON `gorm:"column:los_prices;type:jsonb"`
}

// TableName specifies the table name for the PriceChangeHistory model
func (PriceChangeHistory) TableName() string {
	return "dp_price_change_history"
}

// OverwritePriceHistory is an append-only log of manual price overwrites.
// A nil OverwritePrice clears the overwrite for the date.
type OverwritePriceHistory struct {
	ID             int64               `gorm:"column:id;primaryKey;autoIncrement"`
	PropertyID     uuid.UUID           `gorm:"column:property_id;type:uuid;not null;uniqueIndex:uq_overwrite_price,priority:1"`
	CheckinDate    domain.Date         `gorm:"column:checkin_date;type:date;not null;uniqueIndex:uq_overwrite_price,priority:2"`
	AsOf           time.Time           `gorm:"column:as_of;not null;uniqueIndex:uq_overwrite_price,priority:3"`
	OverwritePrice decimal.NullDecimal `gorm:"column:overwrite_price;type:numeric(12,2)"`
	CreatedBy      *uuid.UUID          `gorm:"column:created_by;type:uuid"`
}

// TableName specifies the table name for the OverwritePriceHistory model
func (OverwritePriceHistory) TableName() string {
	return "overwrite_price_history"
}
