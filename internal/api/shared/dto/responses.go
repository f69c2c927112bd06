package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pricepilot/dynamic-pricing/internal/domain"
)

// ProfileResponse is the public view of a profile
type ProfileResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsOnboarding bool      `json:"is_onboarding"`
	HasPaid      bool      `json:"has_paid"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginResponse is returned by login, register and refresh. The refresh
// token never appears in the body.
type LoginResponse struct {
	Success     bool             `json:"success"`
	AccessToken string           `json:"access_token"`
	ExpiresIn   int64            `json:"expires_in"`
	Profile     *ProfileResponse `json:"profile,omitempty"`
}

// CSRFResponse is returned by GET /auth/csrf
type CSRFResponse struct {
	Success   bool   `json:"success"`
	CSRFToken string `json:"csrf_token"`
}

// SuccessResponse acknowledges a command
type SuccessResponse struct {
	Success bool `json:"success"`
}

// PropertyResponse is the public view of a property
type PropertyResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	PMS             *string   `json:"pms"`
	PMSPropertyCode *string   `json:"pms_property_code"`
	Address         string    `json:"address"`
	City            string    `json:"city"`
	PostalCode      string    `json:"postal_code"`
	Country         string    `json:"country"`
	Latitude        *float64  `json:"latitude"`
	Longitude       *float64  `json:"longitude"`
	Timezone        string    `json:"timezone"`
	NumberOfRooms   int       `json:"number_of_rooms"`
	Currency        string    `json:"currency"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CompetitorResponse is an active competitor link
type CompetitorResponse struct {
	ID              uuid.UUID `json:"id"`
	ExternalHotelID string    `json:"external_hotel_id"`
	Name            string    `json:"name"`
	Address         string    `json:"address"`
	City            string    `json:"city"`
	Latitude        *float64  `json:"latitude"`
	Longitude       *float64  `json:"longitude"`
	Stars           *float64  `json:"stars"`
	OnlyFollow      bool      `json:"only_follow"`
	LinkedAt        time.Time `json:"linked_at"`
}

// HotelResponse is a hotel returned by competitor discovery
type HotelResponse struct {
	ExternalHotelID string   `json:"external_hotel_id"`
	Name            string   `json:"name"`
	Address         string   `json:"address"`
	City            string   `json:"city"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	Stars           *float64 `json:"stars"`
	DistanceKm      *float64 `json:"distance_km,omitempty"`
	AlreadyLinked   bool     `json:"already_linked"`
}

// CompetitorPriceResponse is the lowest price of one competitor for one date.
// Price is null when the competitor is sold out.
type CompetitorPriceResponse struct {
	CompetitorID   uuid.UUID           `json:"competitor_id"`
	CompetitorName string              `json:"competitor_name"`
	Date           domain.Date         `json:"date"`
	Price          decimal.NullDecimal `json:"price"`
	Currency       string              `json:"currency"`
	RoomName       string              `json:"room_name"`
	SoldOut        bool                `json:"sold_out"`
}

// CompetitorPricesResponse wraps the rows of a competitor price query
type CompetitorPricesResponse struct {
	From  domain.Date               `json:"from"`
	Until domain.Date               `json:"to"`
	Items []CompetitorPriceResponse `json:"items"`
}

// GeneralSettingsResponse is the pricing configuration of a property
type GeneralSettingsResponse struct {
	PricingMode                domain.PricingMode `json:"pricing_mode"`
	MinCompetitors             int                `json:"min_competitors"`
	MaxCompetitors             int                `json:"max_competitors"`
	BasePrice                  decimal.Decimal    `json:"base_price"`
	MaxPrice                   decimal.Decimal    `json:"max_price"`
	HolidayIncrement           decimal.Decimal    `json:"holiday_increment"`
	IsPricingOnline            bool               `json:"is_pricing_online"`
	IsCompetitorTrackingOnline bool               `json:"is_competitor_tracking_online"`
	UpdatedAt                  time.Time          `json:"updated_at"`
}

// IncrementCellResponse is one cell of the increment grid
type IncrementCellResponse struct {
	OccupancyCategory int             `json:"occupancy_category"`
	LeadTimeCategory  int             `json:"lead_time_category"`
	IncrementValue    decimal.Decimal `json:"increment_value"`
}

// MSPResponse is a minimum selling price
type MSPResponse struct {
	ID         int64           `json:"id"`
	ValidFrom  domain.Date     `json:"valid_from"`
	ValidUntil domain.Date     `json:"valid_until"`
	MSP        decimal.Decimal `json:"msp"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// OfferResponse is an offer increment
type OfferResponse struct {
	ID             int64                 `json:"id"`
	Name           string                `json:"name"`
	ValidFrom      domain.Date           `json:"valid_from"`
	ValidUntil     domain.Date           `json:"valid_until"`
	IncrementType  domain.AdjustmentType `json:"increment_type"`
	IncrementValue decimal.Decimal       `json:"increment_value"`
	IsActive       bool                  `json:"is_active"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// LosSetupResponse is a LOS setup
type LosSetupResponse struct {
	ID         int64       `json:"id"`
	ValidFrom  domain.Date `json:"valid_from"`
	ValidUntil domain.Date `json:"valid_until"`
	MaxLOS     int         `json:"max_los"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// LosReductionResponse is a LOS reduction row
type LosReductionResponse struct {
	ID                int64           `json:"id"`
	LeadTimeDays      int             `json:"lead_time_days"`
	OccupancyCategory int             `json:"occupancy_category"`
	NumNights         int             `json:"num_nights"`
	ReductionPercent  decimal.Decimal `json:"reduction_percent"`
}

// RoomRateResponse is a room rate
type RoomRateResponse struct {
	ID           int64                 `json:"id"`
	RoomTypeCode string                `json:"room_type_code"`
	RatePlanCode string                `json:"rate_plan_code"`
	Name         string                `json:"name"`
	IsBaseRate   bool                  `json:"is_base_rate"`
	OffsetType   domain.AdjustmentType `json:"offset_type"`
	OffsetValue  decimal.Decimal       `json:"offset_value"`
}

// PriceDayResponse is the current price state of one check-in date
type PriceDayResponse struct {
	Date             domain.Date             `json:"date"`
	RecommendedPrice *decimal.Decimal        `json:"recommended_price"`
	OverwritePrice   *decimal.Decimal        `json:"overwrite_price"`
	EffectivePrice   *decimal.Decimal        `json:"effective_price"`
	CompetitorPrice  *decimal.Decimal        `json:"competitor_price"`
	LosPrices        map[int]decimal.Decimal `json:"los_prices,omitempty"`
	RecommendedAsOf  *time.Time              `json:"recommended_as_of"`
	OverwriteAsOf    *time.Time              `json:"overwrite_as_of"`
}

// PricesResponse lists price states over a range
type PricesResponse struct {
	From  domain.Date        `json:"from"`
	Until domain.Date        `json:"to"`
	Items []PriceDayResponse `json:"items"`
}

// PriceChangeResponse is one recommended price snapshot
type PriceChangeResponse struct {
	AsOf              time.Time               `json:"as_of"`
	RecommendedPrice  decimal.Decimal         `json:"recommended_price"`
	CompetitorPrice   *decimal.Decimal        `json:"competitor_price"`
	Occupancy         float64                 `json:"occupancy"`
	OccupancyCategory int                     `json:"occupancy_category"`
	LeadTimeCategory  int                     `json:"lead_time_category"`
	IncrementApplied  decimal.Decimal         `json:"increment_applied"`
	MSPApplied        bool                    `json:"msp_applied"`
	LosPrices         map[int]decimal.Decimal `json:"los_prices,omitempty"`
}

// OverwriteResponse is one overwrite snapshot; a nil price cleared the overwrite
type OverwriteResponse struct {
	AsOf      time.Time        `json:"as_of"`
	Price     *decimal.Decimal `json:"price"`
	CreatedBy *uuid.UUID       `json:"created_by"`
}

// PriceHistoryResponse is the history of one check-in date, newest first
type PriceHistoryResponse struct {
	Date         domain.Date           `json:"date"`
	PriceChanges []PriceChangeResponse `json:"price_changes"`
	Overwrites   []OverwriteResponse   `json:"overwrites"`
}

// RecalculateResponse summarises a pricing run
type RecalculateResponse struct {
	Success bool        `json:"success"`
	From    domain.Date `json:"from"`
	Until   domain.Date `json:"to"`
	Priced  int         `json:"priced"`
	Changed int         `json:"changed"`
}

// NotificationResponse is a dashboard notification
type NotificationResponse struct {
	ID         int64                       `json:"id"`
	PropertyID *uuid.UUID                  `json:"property_id"`
	Category   domain.NotificationCategory `json:"category"`
	Title      string                      `json:"title"`
	Message    string                      `json:"message"`
	Payload    map[string]any              `json:"payload,omitempty"`
	IsRead     bool                        `json:"is_read"`
	IsNew      bool                        `json:"is_new"`
	ExpiresAt  *time.Time                  `json:"expires_at"`
	CreatedAt  time.Time                   `json:"created_at"`
}

// NotificationListResponse is a page of notifications
type NotificationListResponse struct {
	Total  int64                  `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Items  []NotificationResponse `json:"items"`
}

// NotificationCountResponse is the unread notification count
type NotificationCountResponse struct {
	Unread int64 `json:"unread"`
}

// MarkAllReadResponse reports how many notifications were marked read
type MarkAllReadResponse struct {
	Success bool  `json:"success"`
	Updated int64 `json:"updated"`
}

// CheckoutSessionResponse is a Stripe Checkout session to redirect to
type CheckoutSessionResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

// WebhookResponse acknowledges a Stripe webhook
type WebhookResponse struct {
	Received bool `json:"received"`
}
