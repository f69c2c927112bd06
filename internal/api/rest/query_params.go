package rest

import (
	"github.com/pricepilot/dynamic-pricing/internal/api/shared/constants"
	apierrors "github.com/pricepilot/dynamic-pricing/internal/api/shared/errors"
	"github.com/pricepilot/dynamic-pricing/internal/api/shared/executor"
	"github.com/pricepilot/dynamic-pricing/internal/domain"
)

// DateWindowQueryParams holds the optional overlap filter of rule listings
type DateWindowQueryParams struct {
	From string `form:"from" binding:"omitempty,date"`
	To   string `form:"to" binding:"omitempty,date"`
}

// Window returns nil when no filter was given. Both bounds are required
// once either is present.
func (p *DateWindowQueryParams) Window() (*domain.DateRange, error) {
	if p.From == "" && p.To == "" {
		return nil, nil
	}
	if p.From == "" {
		return nil, apierrors.NewValidationError("from", "from and to must be provided together")
	}
	if p.To == "" {
		return nil, apierrors.NewValidationError("to", "from and to must be provided together")
	}
	window := domain.DateRange{From: mustDate(p.From), Until: mustDate(p.To)}
	if err := window.Validate(); err != nil {
		return nil, apierrors.NewInvalidDateRangeError("to")
	}
	return &window, nil
}

// PricesQueryParams holds query parameters for GET /prices
type PricesQueryParams struct {
	From string `form:"from" binding:"omitempty,date"`
	To   string `form:"to" binding:"omitempty,date"`
}

// Dates returns the bounds that were supplied
func (p *PricesQueryParams) Dates() (from, to *domain.Date) {
	return optionalDate(p.From), optionalDate(p.To)
}

// CompetitorPricesQueryParams holds query parameters for GET /competitor-prices
type CompetitorPricesQueryParams struct {
	Date string `form:"date" binding:"omitempty,date"`
	From string `form:"from" binding:"omitempty,date"`
	To   string `form:"to" binding:"omitempty,date"`
	Week string `form:"week" binding:"omitempty,isoweek"`
}

// PriceQuery converts the parameters for the executor
func (p *CompetitorPricesQueryParams) PriceQuery() executor.PriceQuery {
	return executor.PriceQuery{
		Date: optionalDate(p.Date),
		From: optionalDate(p.From),
		To:   optionalDate(p.To),
		Week: p.Week,
	}
}

// SearchQueryParams holds query parameters for GET /competitors/search
type SearchQueryParams struct {
	Query string `form:"q" binding:"required,min=2,max=100"`
	Limit int    `form:"limit,default=10" binding:"min=0"`
}

// NearbyQueryParams holds query parameters for GET /competitors/nearby
type NearbyQueryParams struct {
	RadiusKm float64 `form:"radius_km" binding:"min=0"`
	Limit    int     `form:"limit,default=10" binding:"min=0"`
}

// HistoryQueryParams holds query parameters for GET /prices/:date/history
type HistoryQueryParams struct {
	Limit int `form:"limit,default=50" binding:"min=0"`
}

// RecalculateQueryParams holds query parameters for POST /prices/recalculate
type RecalculateQueryParams struct {
	Days *int `form:"days"`
}

// NotificationsQueryParams holds query parameters for GET /notifications
type NotificationsQueryParams struct {
	UnreadOnly bool `form:"unread_only"`
	Limit      int  `form:"limit,default=20" binding:"min=0"`
	Offset     int  `form:"offset,default=0" binding:"min=0"`
}

// ParseNotificationsQuery caps the page size
func ParseNotificationsQuery(p *NotificationsQueryParams) {
	if p.Limit > constants.MAX_PAGE_SIZE {
		p.Limit = constants.MAX_PAGE_SIZE
	}
}

// DateURIParams holds a date path parameter
type DateURIParams struct {
	Date string `uri:"date" binding:"required,date"`
}

// optionalDate parses a value already checked by the date validator
func optionalDate(value string) *domain.Date {
	if value == "" {
		return nil
	}
	d := mustDate(value)
	return &d
}

func mustDate(value string) domain.Date {
	d, _ := domain.ParseDate(value)
	return d
}
