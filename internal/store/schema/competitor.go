package schema

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Competitor is a hotel tracked by the competitor service
type Competitor struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	ExternalHotelID string         `gorm:"column:external_hotel_id;type:text;not null;uniqueIndex"`
	Name            string         `gorm:"column:name;type:text;not null"`
	Address         string         `gorm:"column:address;type:text;not null;default:''"`
	City            string         `gorm:"column:city;type:text;not null;default:''"`
	Latitude        *float64       `gorm:"column:latitude"`
	Longitude       *float64       `gorm:"column:longitude"`
	Stars           *float64       `gorm:"column:stars"`
	Raw             datatypes.JSON `gorm:"column:raw;type:jsonb"`
	CreatedAt       time.Time      `gorm:"column:created_at;not null;default:now()"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the Competitor model
func (Competitor) TableName() string {
	return "competitors"
}

// PropertyCompetitor links a property to a competitor it watches
type PropertyCompetitor struct {
	ID           int64      `gorm:"column:id;primaryKey;autoIncrement"`
	PropertyID   uuid.UUID  `gorm:"column:property_id;type:uuid;not null;uniqueIndex:uq_dp_property_competitor,priority:1"`
	CompetitorID uuid.UUID  `gorm:"column:competitor_id;type:uuid;not null;uniqueIndex:uq_dp_property_competitor,priority:2"`
	OnlyFollow   bool       `gorm:"column:only_follow;not null;default:false"`
	DeletedAt    *time.Time `gorm:"column:deleted_at;index"`
	CreatedAt    time.Time  `gorm:"column:created_at;not null;default:now()"`

	Competitor Competitor `gorm:"foreignKey:CompetitorID"`
}

// TableName specifies the table name for the PropertyCompetitor model
func (PropertyCompetitor) TableName() string {
	return "dp_property_competitors"
}

// SoftDeleteColumn marks unlinked competitors as deleted
func (PropertyCompetitor) SoftDeleteColumn() (string, SoftDeleteKind) {
	return "deleted_at", SoftDeleteTimestamp
}
