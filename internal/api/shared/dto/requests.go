package dto

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	apierrors "github.com/pricepilot/dynamic-pricing/internal/api/shared/errors"
	"github.com/pricepilot/dynamic-pricing/internal/domain"
)

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// PropertyRequest is the body of POST /onboarding/property
type PropertyRequest struct {
	Name            string   `json:"name" binding:"required,max=255"`
	PMS             *string  `json:"pms" binding:"omitempty,oneof=apaleo avirato mrplan booking other"`
	PMSPropertyCode *string  `json:"pms_property_code" binding:"omitempty,max=100"`
	Address         string   `json:"address" binding:"max=255"`
	City            string   `json:"city" binding:"max=100"`
	PostalCode      string   `json:"postal_code" binding:"max=20"`
	Country         string   `json:"country" binding:"omitempty,len=2"`
	Latitude        *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude       *float64 `json:"longitude" binding:"omitempty,longitude"`
	Timezone        string   `json:"timezone" binding:"omitempty,timezone"`
	NumberOfRooms   int      `json:"number_of_rooms" binding:"required,min=1"`
	Currency        string   `json:"currency" binding:"omitempty,len=3"`
}

// Validate checks that coordinates come in pairs
func (r *PropertyRequest) Validate() error {
	if (r.Latitude == nil) != (r.Longitude == nil) {
		return apierrors.NewValidationError("latitude", "latitude and longitude must be provided together")
	}
	r.Country = strings.ToUpper(r.Country)
	r.Currency = strings.ToUpper(r.Currency)
	return nil
}

// UpdatePropertyRequest is the body of PATCH /properties/:property_id
type UpdatePropertyRequest struct {
	Name            *string  `json:"name" binding:"omitempty,min=1,max=255"`
	PMS             *string  `json:"pms" binding:"omitempty,oneof=apaleo avirato mrplan booking other"`
	PMSPropertyCode *string  `json:"pms_property_code" binding:"omitempty,max=100"`
	Address         *string  `json:"address" binding:"omitempty,max=255"`
	City            *string  `json:"city" binding:"omitempty,max=100"`
	PostalCode      *string  `json:"postal_code" binding:"omitempty,max=20"`
	Country         *string  `json:"country" binding:"omitempty,len=2"`
	Latitude        *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude       *float64 `json:"longitude" binding:"omitempty,longitude"`
	Timezone        *string  `json:"timezone" binding:"omitempty,timezone"`
	NumberOfRooms   *int     `json:"number_of_rooms" binding:"omitempty,min=1"`
	Currency        *string  `json:"currency" binding:"omitempty,len=3"`
}

// Validate checks that coordinates come in pairs
func (r *UpdatePropertyRequest) Validate() error {
	if (r.Latitude == nil) != (r.Longitude == nil) {
		return apierrors.NewValidationError("latitude", "latitude and longitude must be provided together")
	}
	if r.Country != nil {
		upper := strings.ToUpper(*r.Country)
		r.Country = &upper
	}
	if r.Currency != nil {
		upper := strings.ToUpper(*r.Currency)
		r.Currency = &upper
	}
	return nil
}

// AddCompetitorRequest is the body of POST /properties/:property_id/competitors
type AddCompetitorRequest struct {
	ExternalHotelID string   `json:"external_hotel_id" binding:"required,max=100"`
	Name            string   `json:"name" binding:"required,max=255"`
	Address         string   `json:"address" binding:"max=255"`
	City            string   `json:"city" binding:"max=100"`
	Latitude        *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude       *float64 `json:"longitude" binding:"omitempty,longitude"`
	Stars           *float64 `json:"stars" binding:"omitempty,min=0,max=5"`
	OnlyFollow      bool     `json:"only_follow"`
}

// UpdateCompetitorRequest is the body of PATCH /properties/:property_id/competitors/:competitor_id
type UpdateCompetitorRequest struct {
	OnlyFollow *bool `json:"only_follow" binding:"required"`
}

// GeneralSettingsRequest is the body of PUT /properties/:property_id/general-settings
type GeneralSettingsRequest struct {
	PricingMode                domain.PricingMode `json:"pricing_mode" binding:"required,oneof=min max avg median"`
	MinCompetitors             int                `json:"min_competitors" binding:"min=0"`
	MaxCompetitors             int                `json:"max_competitors" binding:"min=0"`
	BasePrice                  decimal.Decimal    `json:"base_price"`
	MaxPrice                   decimal.Decimal    `json:"max_price"`
	HolidayIncrement           decimal.Decimal    `json:"holiday_increment"`
	IsPricingOnline            bool               `json:"is_pricing_online"`
	IsCompetitorTrackingOnline bool               `json:"is_competitor_tracking_online"`
}

// Validate checks competitor thresholds and amounts
func (r *GeneralSettingsRequest) Validate() error {
	if r.MaxCompetitors > 0 && r.MinCompetitors > r.MaxCompetitors {
		return apierrors.NewValidationError("min_competitors", "min_competitors must not exceed max_competitors")
	}
	if r.BasePrice.IsNegative() {
		return apierrors.NewValidationError("base_price", "base_price must not be negative")
	}
	if r.MaxPrice.IsNegative() {
		return apierrors.NewValidationError("max_price", "max_price must not be negative")
	}
	return nil
}

// IncrementCellRequest is one cell of the increment grid
type IncrementCellRequest struct {
	OccupancyCategory int             `json:"occupancy_category" binding:"min=0,max=7"`
	LeadTimeCategory  int             `json:"lead_time_category" binding:"min=0,max=6"`
	IncrementValue    decimal.Decimal `json:"increment_value"`
}

// UpsertIncrementsRequest is the body of PUT /properties/:property_id/dynamic-increments
type UpsertIncrementsRequest struct {
	Cells []IncrementCellRequest `json:"cells" binding:"required,min=1,max=56,dive"`
}

// Validate rejects duplicate cells
func (r *UpsertIncrementsRequest) Validate() error {
	seen := make(map[[2]int]bool, len(r.Cells))
	for i, cell := range r.Cells {
		key := [2]int{cell.OccupancyCategory, cell.LeadTimeCategory}
		if seen[key] {
			return apierrors.NewValidationError(fmt.Sprintf("cells[%d]", i), "duplicate occupancy and lead time category")
		}
		seen[key] = true
	}
	return nil
}

// MSPRequest creates or patches a minimum selling price
type MSPRequest struct {
	ValidFrom  *domain.Date     `json:"valid_from"`
	ValidUntil *domain.Date     `json:"valid_until"`
	MSP        *decimal.Decimal `json:"msp"`
}

// ValidateCreate checks a complete MSP
func (r *MSPRequest) ValidateCreate() error {
	if err := requireDates(r.ValidFrom, r.ValidUntil); err != nil {
		return err
	}
	if r.MSP == nil {
		return apierrors.NewValidationError("msp", "This field is required.")
	}
	return r.Validate()
}

// Validate checks the fields that are present
func (r *MSPRequest) Validate() error {
	if err := checkDateOrder(r.ValidFrom, r.ValidUntil); err != nil {
		return err
	}
	if r.MSP != nil && !r.MSP.IsPositive() {
		return apierrors.NewValidationError("msp", "msp must be positive")
	}
	return nil
}

// OfferRequest creates or patches an offer increment
type OfferRequest struct {
	Name           *string                `json:"name" binding:"omitempty,max=255"`
	ValidFrom      *domain.Date           `json:"valid_from"`
	ValidUntil     *domain.Date           `json:"valid_until"`
	IncrementType  *domain.AdjustmentType `json:"increment_type" binding:"omitempty,oneof=percentage fixed"`
	IncrementValue *decimal.Decimal       `json:"increment_value"`
	IsActive       *bool                  `json:"is_active"`
}

// ValidateCreate checks a complete offer
func (r *OfferRequest) ValidateCreate() error {
	if err := requireDates(r.ValidFrom, r.ValidUntil); err != nil {
		return err
	}
	if r.IncrementValue == nil {
		return apierrors.NewValidationError("increment_value", "This field is required.")
	}
	return r.Validate()
}

// Validate checks the fields that are present
func (r *OfferRequest) Validate() error {
	return checkDateOrder(r.ValidFrom, r.ValidUntil)
}

// LosSetupRequest creates or patches a LOS setup
type LosSetupRequest struct {
	ValidFrom  *domain.Date `json:"valid_from"`
	ValidUntil *domain.Date `json:"valid_until"`
	MaxLOS     *int         `json:"max_los" binding:"omitempty,min=2,max=14"`
}

// ValidateCreate checks a complete LOS setup
func (r *LosSetupRequest) ValidateCreate() error {
	if err := requireDates(r.ValidFrom, r.ValidUntil); err != nil {
		return err
	}
	if r.MaxLOS == nil {
		return apierrors.NewValidationError("max_los", "This field is required.")
	}
	return r.Validate()
}

// Validate checks the fields that are present
func (r *LosSetupRequest) Validate() error {
	return checkDateOrder(r.ValidFrom, r.ValidUntil)
}

// LosReductionRequest is one row of a LOS reduction bulk upsert
type LosReductionRequest struct {
	LeadTimeDays      int             `json:"lead_time_days" binding:"min=0,max=365"`
	OccupancyCategory int             `json:"occupancy_category" binding:"min=0,max=7"`
	NumNights         int             `json:"num_nights" binding:"min=2,max=14"`
	ReductionPercent  decimal.Decimal `json:"reduction_percent"`
}

// UpsertLosReductionsRequest is the body of PUT /properties/:property_id/los-reductions
type UpsertLosReductionsRequest struct {
	Reductions []LosReductionRequest `json:"reductions" binding:"required,min=1,max=500,dive"`
}

// Validate checks percentages
func (r *UpsertLosReductionsRequest) Validate() error {
	for i, row := range r.Reductions {
		if row.ReductionPercent.IsNegative() || row.ReductionPercent.GreaterThan(decimal.NewFromInt(100)) {
			return apierrors.NewValidationError(fmt.Sprintf("reductions[%d].reduction_percent", i), "reduction_percent must be between 0 and 100")
		}
	}
	return nil
}

// RoomRateRequest creates or patches a room rate
type RoomRateRequest struct {
	RoomTypeCode *string                `json:"room_type_code" binding:"omitempty,min=1,max=50"`
	RatePlanCode *string                `json:"rate_plan_code" binding:"omitempty,min=1,max=50"`
	Name         *string                `json:"name" binding:"omitempty,max=255"`
	IsBaseRate   *bool                  `json:"is_base_rate"`
	OffsetType   *domain.AdjustmentType `json:"offset_type" binding:"omitempty,oneof=percentage fixed"`
	OffsetValue  *decimal.Decimal       `json:"offset_value"`
}

// ValidateCreate checks a complete room rate
func (r *RoomRateRequest) ValidateCreate() error {
	if r.RoomTypeCode == nil {
		return apierrors.NewValidationError("room_type_code", "This field is required.")
	}
	if r.RatePlanCode == nil {
		return apierrors.NewValidationError("rate_plan_code", "This field is required.")
	}
	return nil
}

// OverwriteRequest is the body of POST /properties/:property_id/prices/overwrites
type OverwriteRequest struct {
	CheckinDate domain.Date     `json:"checkin_date"`
	Price       decimal.Decimal `json:"price"`
}

// Validate checks the overwrite
func (r *OverwriteRequest) Validate() error {
	if r.CheckinDate.IsZero() {
		return apierrors.NewValidationError("checkin_date", "This field is required.")
	}
	if !r.Price.IsPositive() {
		return apierrors.NewValidationError("price", "price must be positive")
	}
	return nil
}

// checkDateOrder only applies when a patch carries both ends
func checkDateOrder(from, until *domain.Date) error {
	if from != nil && until != nil && from.After(*until) {
		return apierrors.NewInvalidDateRangeError("valid_until")
	}
	return nil
}

func requireDates(from, until *domain.Date) error {
	if from == nil || from.IsZero() {
		return apierrors.NewValidationError("valid_from", "This field is required.")
	}
	if until == nil || until.IsZero() {
		return apierrors.NewValidationError("valid_until", "This field is required.")
	}
	if from.After(*until) {
		return apierrors.NewInvalidDateRangeError("valid_until")
	}
	return nil
}
