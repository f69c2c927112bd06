package schema

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pricepilot/dynamic-pricing/internal/domain"
)

// GeneralSettings holds the per-property pricing configuration
type GeneralSettings struct {
	ID                         int64              `gorm:"column:id;primaryKey;autoIncrement"`
	PropertyID                 uuid.UUID          `gorm:"column:property_id;type:uuid;not null;uniqueIndex"`
	PricingMode                domain.PricingMode `gorm:"column:pricing_mode;type:text;not null;default:'avg'"`
	MinCompetitors             int                `gorm:"column:min_competitors;not null;default:1"`
	MaxCompetitors             int                `gorm:"column:max_competitors;not null;default:10"`
	BasePrice                  decimal.Decimal    `gorm:"column:base_price;type:numeric(12,2);not null;default:0"`
	MaxPrice                   decimal.Decimal    `gorm:"column:max_price;type:numeric(12,2);not null;default:0"`
	HolidayIncrement           decimal.Decimal    `gorm:"column:holiday_increment;type:numeric(6,2);not null;default:0"`
	IsPricingOnline            bool               `gorm:"column:is_pricing_online;not null;default:false"`
	IsCompetitorTrackingOnline bool               `gorm:"column:is_competitor_tracking_online;not null"`
	CreatedAt                  time.Time          `gorm:"column:created_at;not null;default:now()"`
	UpdatedAt                  time.Time          `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the GeneralSettings model
func (GeneralSettings) TableName() string {
	return "dp_general_settings"
}

// DefaultGeneralSettings returns the settings a new property starts with
func DefaultGeneralSettings(propertyID uuid.UUID) *GeneralSettings {
	return &GeneralSettings{
		PropertyID:                 propertyID,
		PricingMode:                domain.PricingModeAvg,
		MinCompetitors:             1,
		MaxCompetitors:             10,
		IsCompetitorTrackingOnline: true,
	}
}

// DynamicIncrement is one cell of the occupancy x lead time increment grid
type DynamicIncrement struct {
	ID                int64                    `gorm:"column:id;primaryKey;autoIncrement"`
	PropertyID        uuid.UUID                `gorm:"column:property_id;type:uuid;not null;uniqueIndex:uq_dp_increment_cell,priority:1"`
	OccupancyCategory domain.OccupancyCategory `gorm:"column:occupancy_category;not null;uniqueIndex:uq_dp_increment_cell,priority:2"`
	LeadTimeCategory  domain.LeadTimeCategory  `gorm:"column:lead_time_category;not null;uniqueIndex:uq_dp_increment_cell,priority:3"`
	// IncrementValue is a percentage
	IncrementValue decimal.Decimal `gorm:"column:increment_value;type:numeric(6,2);not null;default:0"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the DynamicIncrement model
func (DynamicIncrement) TableName() string {
	return "dp_dynamic_increments_v2"
}

// MinimumSellingPrice is the price floor for a date range
type MinimumSellingPrice struct {
	ID         int64           `gorm:"column:id;primaryKey;autoIncrement"`
	PropertyID uuid.UUID       `gorm:"column:property_id;type:uuid;not null;index:idx_dp_msp_range,priority:1"`
	ValidFrom  domain.Date     `gorm:"column:valid_from;type:date;not null;index:idx_dp_msp_range,priority:2"`
	ValidUntil domain.Date     `gorm:"column:valid_until;type:date;not null;index:idx_dp_msp_range,priority:3"`
	MSP        decimal.Decimal `gorm:"column:msp;type:numeric(12,2);not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;not null;default:now()"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the MinimumSellingPrice model
func (MinimumSellingPrice) TableName() string {
	return "dp_minimum_selling_price"
}

// OfferIncrement is a special offer adjusting prices over a date range
type OfferIncrement struct {
	ID             int64                 `gorm:"column:id;primaryKey;autoIncrement"`
	PropertyID     uuid.UUID             `gorm:"column:property_id;type:uuid;not null;index:idx_dp_offer_range,priority:1"`
	Name           string                `gorm:"column:name;type:text;not null;default:''"`
	ValidFrom      domain.Date           `gorm:"column:valid_from;type:date;not null;index:idx_dp_offer_range,priority:2"`
	ValidUntil     domain.Date           `gorm:"column:valid_until;type:date;not null;index:idx_dp_offer_range,priority:3"`
	IncrementType  domain.AdjustmentType `gorm:"column:increment_type;type:text;not null;default:'percentage'"`
	IncrementValue decimal.Decimal       `gorm:"column:increment_value;type:numeric(12,2);not null"`
	IsActive       bool                  `gorm:"column:is_active;not null"`
	CreatedAt      time.Time             `gorm:"column:created_at;not null;default:now()"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the OfferIncrement model
func (OfferIncrement) TableName() string {
	return "dp_offer_increments"
}

// LosSetup enables length-of-stay pricing over a date range
type LosSetup struct {
	ID         int64       `gorm:"column:id;primaryKey;autoIncrement"`
	PropertyID uuid.UUID   `gorm:"column:property_id;type:uuid;not null;index:idx_dp_los_setup_range,priority:1"`
	ValidFrom  domain.Date `gorm:"column:valid_from;type:date;not null;index:idx_dp_los_setup_range,priority:2"`
	ValidUntil domain.Date `gorm:"column:valid_until;type:date;not null;index:idx_dp_los_setup_range,priority:3"`
	MaxLOS     int         `gorm:"column:max_los;not null;default:7"`
	CreatedAt  time.Time   `gorm:"column:created_at;not null;default:now()"`
	UpdatedAt  time.Time   `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the LosSetup model
func (LosSetup) TableName() string {
	return "dp_los_setup"
}

// LosReduction is the percentage discount for multi-night stays
type LosReduction struct {
	ID                int64                    `gorm:"column:id;primaryKey;autoIncrement"`
	PropertyID        uuid.UUID                `gorm:"column:property_id;type:uuid;not null;uniqueIndex:uq_dp_los_reduction,priority:1"`
	LeadTimeDays      int                      `gorm:"column:lead_time_days;not null;uniqueIndex:uq_dp_los_reduction,priority:2"`
	OccupancyCategory domain.OccupancyCategory `gorm:"column:occupancy_category;not null;uniqueIndex:uq_dp_los_reduction,priority:3"`
	NumNights         int                      `gorm:"column:num_nights;not null;uniqueIndex:uq_dp_los_reduction,priority:4"`
	ReductionPercent  decimal.Decimal          `gorm:"column:reduction_percent;type:numeric(6,2);not null"`
	UpdatedAt         time.Time                `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the LosReduction model
func (LosReduction) TableName() string {
	return "dp_los_reduction"
}

// RoomRate maps a PMS room type and rate plan to an offset from the base price
type RoomRate struct {
	ID           int64                 `gorm:"column:id;primaryKey;autoIncrement"`
	PropertyID   uuid.UUID             `gorm:"column:property_id;type:uuid;not null;uniqueIndex:uq_dp_room_rate,priority:1"`
	RoomTypeCode string                `gorm:"column:room_type_code;type:text;not null;uniqueIndex:uq_dp_room_rate,priority:2"`
	RatePlanCode string                `gorm:"column:rate_plan_code;type:text;not null;uniqueIndex:uq_dp_room_rate,priority:3"`
	Name         string                `gorm:"column:name;type:text;not null;default:''"`
	IsBaseRate   bool                  `gorm:"column:is_base_rate;not null;default:false"`
	OffsetType   domain.AdjustmentType `gorm:"column:offset_type;type:text;not null;default:'percentage'"`
	OffsetValue  decimal.Decimal       `gorm:"column:offset_value;type:numeric(12,2);not null;default:0"`
	CreatedAt    time.Time             `gorm:"column:created_at;not null;default:now()"`
	UpdatedAt    time.Time             `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the RoomRate model
func (RoomRate) TableName() string {
	return "dp_room_rates"
}
