package schema

import (
	"time"

	"github.com/google/uuid"
)

// PropertyManagementSystem is a PMS integration a property can be connected to
type PropertyManagementSystem struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Code      string    `gorm:"column:code;type:text;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the PropertyManagementSystem model
func (PropertyManagementSystem) TableName() string {
	return "property_management_systems"
}

// Property represents a hotel managed by one or more profiles
type Property struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Name            string    `gorm:"column:name;type:text;not null"`
	PMSID           *int64    `gorm:"column:pms_id;index"`
	PMSPropertyCode *string   `gorm:"column:pms_property_code;type:text"`
	Address         string    `gorm:"column:address;type:text;not null;default:''"`
	City            string    `gorm:"column:city;type:text;not null;default:''"`
	PostalCode      string    `gorm:"column:postal_code;type:text;not null;default:''"`
	// Country is an ISO-3166 alpha-2 code
	Country       string    `gorm:"column:country;type:varchar(2);not null;default:''"`
	Latitude      *float64  `gorm:"column:latitude"`
	Longitude     *float64  `gorm:"column:longitude"`
	Timezone      string    `gorm:"column:timezone;type:text;not null;default:'UTC'"`
	NumberOfRooms int       `gorm:"column:number_of_rooms;not null;default:0"`
	Currency      string    `gorm:"column:currency;type:varchar(3);not null;default:'EUR'"`
	IsActive      bool      `gorm:"column:is_active;not null;index"`
	CreatedBy     uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;not null;default:now()"`
	UpdatedAt     time.Time `gorm:"column:updated_at;not null;default:now()"`

	PMS *PropertyManagementSystem `gorm:"foreignKey:PMSID"`
}

// TableName specifies the table name for the Property model
func (Property) TableName() string {
	return "properties"
}

// SoftDeleteColumn marks deactivated properties as deleted
func (Property) SoftDeleteColumn() (string, SoftDeleteKind) {
	return "is_active", SoftDeleteFlag
}

// Location returns the property's time zone, falling back to UTC
func (p Property) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil || p.Timezone == "" {
		return time.UTC
	}
	return loc
}
