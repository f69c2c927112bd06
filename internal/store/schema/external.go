package schema

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pricepilot/dynamic-pricing/internal/domain"
)

// The models in this file map tables owned by other systems (the scraper
// and the PMS importers). They are read-only here and never migrated in
// production.

// CompetitorPrice is a scraped competitor room price
type CompetitorPrice struct {
	ID             int64           `gorm:"column:id;primaryKey;autoIncrement"`
	CompetitorID   uuid.UUID       `gorm:"column:competitor_id;type:uuid;not null;index:idx_competitor_prices_lookup,priority:1"`
	CheckinDate    domain.Date     `gorm:"column:checkin_date;type:date;not null;index:idx_competitor_prices_lookup,priority:2"`
	RawPrice       decimal.Decimal `gorm:"column:raw_price;type:numeric(12,2);not null;default:0"`
	Currency       string          `gorm:"column:currency;type:varchar(3);not null;default:''"`
	RoomName       string          `gorm:"column:room_name;type:text;not null;default:''"`
	MaxPersons     int             `gorm:"column:max_persons;not null;default:0"`
	HotelName      string          `gorm:"column:hotel_name;type:text;not null;default:''"`
	SoldOutMessage *string         `gorm:"column:sold_out_message;type:text"`
	ScrapedAt      time.Time       `gorm:"column:scraped_at;not null;default:now()"`
}

// TableName specifies the table name for the CompetitorPrice model
func (CompetitorPrice) TableName() string {
	return "booking_competitor_prices"
}

// DailyOccupancy is a PMS occupancy snapshot for a stay date
type DailyOccupancy struct {
	ID             int64       `gorm:"column:id;primaryKey;autoIncrement"`
	PropertyID     uuid.UUID   `gorm:"column:property_id;type:uuid;not null;index:idx_pms_occupancy_lookup,priority:1"`
	StayDate       domain.Date `gorm:"column:stay_date;type:date;not null;index:idx_pms_occupancy_lookup,priority:2"`
	RoomsSold      int         `gorm:"column:rooms_sold;not null;default:0"`
	RoomsAvailable int         `gorm:"column:rooms_available;not null;default:0"`
	AsOf           time.Time   `gorm:"column:as_of;not null;default:now()"`
}

// TableName specifies the table name for the DailyOccupancy model
func (DailyOccupancy) TableName() string {
	return "pms_daily_occupancy"
}

// LegacyPriceOverwrite is a row from the pre-history overwrite table
type LegacyPriceOverwrite struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	PropertyID  uuid.UUID       `gorm:"column:property_id;type:uuid;not null"`
	CheckinDate domain.Date     `gorm:"column:checkin_date;type:date;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;not null"`
}

// TableName specifies the table name for the LegacyPriceOverwrite model
func (LegacyPriceOverwrite) TableName() string {
	return "legacy_price_overwrites"
}
