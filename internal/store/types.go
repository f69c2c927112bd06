package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pricepilot/dynamic-pricing/internal/domain"
)

// CreateProfileInput holds the data needed to register a profile
type CreateProfileInput struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
}

// PropertyInput carries the editable property fields
type PropertyInput struct {
	Name            string
	PMSID           *int64
	PMSPropertyCode *string
	Address         string
	City            string
	PostalCode      string
	Country         string
	Latitude        *float64
	Longitude       *float64
	Timezone        string
	NumberOfRooms   int
	Currency        string
}

// PropertyUpdate carries optional property changes; nil fields are left untouched
type PropertyUpdate struct {
	Name            *string
	PMSID           *int64
	PMSPropertyCode *string
	Address         *string
	City            *string
	PostalCode      *string
	Country         *string
	Latitude        *float64
	Longitude       *float64
	Timezone        *string
	NumberOfRooms   *int
	Currency        *string
}

// UpsertCompetitorInput holds competitor data keyed by the competitor service id
type UpsertCompetitorInput struct {
	ExternalHotelID string
	Name            string
	Address         string
	City            string
	Latitude        *float64
	Longitude       *float64
	Stars           *float64
	Raw             []byte
}

// LowestCompetitorPrice is the cheapest usable price of one competitor for one
// date. Price is null when the competitor is sold out.
type LowestCompetitorPrice struct {
	CompetitorID uuid.UUID
	CheckinDate  domain.Date
	Price        decimal.NullDecimal
	Currency     string
	RoomName     string
	SoldOut      bool
}

// NotificationFilter narrows a notification listing
type NotificationFilter struct {
	UnreadOnly bool
	Now        time.Time
	Limit      int
	Offset     int
}
