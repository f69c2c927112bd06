package executor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pricepilot/dynamic-pricing/internal/api/shared/constants"
	"github.com/pricepilot/dynamic-pricing/internal/api/shared/dto"
	apierrors "github.com/pricepilot/dynamic-pricing/internal/api/shared/errors"
	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/logger"
	"github.com/pricepilot/dynamic-pricing/internal/providers/competitor"
	"github.com/pricepilot/dynamic-pricing/internal/store"
)

// PriceQuery selects the dates of a competitor price query. Exactly one of
// Date, the From and To pair or Week is set.
type PriceQuery struct {
	Date *domain.Date
	From *domain.Date
	To   *domain.Date
	Week string
}

// Window resolves the query into an inclusive date range
func (q PriceQuery) Window() (domain.DateRange, error) {
	forms := 0
	if q.Date != nil {
		forms++
	}
	if q.From != nil || q.To != nil {
		forms++
	}
	if q.Week != "" {
		forms++
	}
	if forms != 1 {
		return domain.DateRange{}, apierrors.NewValidationError("date", "provide exactly one of date, from and to, or week")
	}

	var window domain.DateRange
	switch {
	case q.Date != nil:
		window = domain.DateRange{From: *q.Date, Until: *q.Date}
	case q.Week != "":
		from, until, err := domain.ParseISOWeek(q.Week)
		if err != nil {
			return domain.DateRange{}, apierrors.NewValidationError("week", "week must be formatted as YYYY-Www")
		}
		window = domain.DateRange{From: from, Until: until}
	default:
		if q.From == nil || q.To == nil {
			return domain.DateRange{}, apierrors.NewValidationError("to", "from and to must be provided together")
		}
		window = domain.DateRange{From: *q.From, Until: *q.To}
	}

	if err := window.Validate(); err != nil {
		return domain.DateRange{}, apierrors.NewInvalidDateRangeError("to")
	}
	if window.Days() > domain.MAX_PRICE_RANGE_DAYS {
		return domain.DateRange{}, apierrors.NewValidationError("to", "date range must not exceed 62 days")
	}
	return window, nil
}

// CompetitorExecutor handles competitor links, discovery and prices
type CompetitorExecutor interface {
	ListCompetitors(ctx context.Context, profileID, propertyID uuid.UUID) ([]dto.CompetitorResponse, error)
	// AddCompetitor upserts the competitor and creates or revives the link
	AddCompetitor(ctx context.Context, profileID, propertyID uuid.UUID, req dto.AddCompetitorRequest) (*dto.CompetitorResponse, error)
	UpdateCompetitor(ctx context.Context, profileID, propertyID, competitorID uuid.UUID, req dto.UpdateCompetitorRequest) (*dto.CompetitorResponse, error)
	// RemoveCompetitor soft deletes the link; scraped prices are kept
	RemoveCompetitor(ctx context.Context, profileID, propertyID, competitorID uuid.UUID) error
	// SearchHotels finds candidate competitors by free text
	SearchHotels(ctx context.Context, profileID, propertyID uuid.UUID, query string, limit int) ([]dto.HotelResponse, error)
	// NearbyHotels finds candidate competitors around the property, nearest first
	NearbyHotels(ctx context.Context, profileID, propertyID uuid.UUID, radiusKm float64, limit int) ([]dto.HotelResponse, error)
	// GetCompetitorPrices returns the lowest price per active competitor and date
	GetCompetitorPrices(ctx context.Context, profileID, propertyID uuid.UUID, query PriceQuery) (*dto.CompetitorPricesResponse, error)
}

func (e *executor) ListCompetitors(ctx context.Context, profileID, propertyID uuid.UUID) ([]dto.CompetitorResponse, error) {
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}
	links, err := e.store.ListPropertyCompetitors(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CompetitorResponse, 0, len(links))
	for i := range links {
		resp = append(resp, dto.MapCompetitorToDTO(&links[i]))
	}
	return resp, nil
}

func (e *executor) AddCompetitor(ctx context.Context, profileID, propertyID uuid.UUID, req dto.AddCompetitorRequest) (*dto.CompetitorResponse, error) {
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	c, err := e.store.UpsertCompetitor(ctx, store.UpsertCompetitorInput{
		ExternalHotelID: req.ExternalHotelID,
		Name:            req.Name,
		Address:         req.Address,
		City:            req.City,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		Stars:           req.Stars,
		Raw:             raw,
	})
	if err != nil {
		return nil, err
	}

	link, err := e.store.LinkCompetitor(ctx, propertyID, c.ID, req.OnlyFollow)
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Competitor linked",
		zap.String("propertyID", propertyID.String()),
		zap.String("competitorID", c.ID.String()),
		zap.String("externalHotelID", req.ExternalHotelID))

	resp := dto.MapCompetitorToDTO(link)
	return &resp, nil
}

func (e *executor) UpdateCompetitor(ctx context.Context, profileID, propertyID, competitorID uuid.UUID, req dto.UpdateCompetitorRequest) (*dto.CompetitorResponse, error) {
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}

	updated, err := e.store.SetCompetitorOnlyFollow(ctx, propertyID, competitorID, *req.OnlyFollow)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, domain.ErrCompetitorNotFound
	}

	link, err := e.store.GetPropertyCompetitor(ctx, propertyID, competitorID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, domain.ErrCompetitorNotFound
	}
	resp := dto.MapCompetitorToDTO(link)
	return &resp, nil
}

func (e *executor) RemoveCompetitor(ctx context.Context, profileID, propertyID, competitorID uuid.UUID) error {
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return err
	}
	removed, err := e.store.UnlinkCompetitor(ctx, propertyID, competitorID, e.clock.Now())
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrCompetitorNotFound
	}
	return nil
}

func (e *executor) SearchHotels(ctx context.Context, profileID, propertyID uuid.UUID, query string, limit int) ([]dto.HotelResponse, error) {
	property, err := e.ownedProperty(ctx, profileID, propertyID)
	if err != nil {
		return nil, err
	}

	hotels, err := e.competitors.Search(ctx, query, clampLimit(limit, constants.DEFAULT_SEARCH_LIMIT, constants.MAX_SEARCH_LIMIT))
	if err != nil {
		return nil, err
	}

	linked, err := e.linkedHotels(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.HotelResponse, 0, len(hotels))
	for _, h := range hotels {
		item := dto.MapHotelToDTO(h, linked[h.ID])
		if property.Latitude != nil && property.Longitude != nil && h.Latitude != nil && h.Longitude != nil {
			d := competitor.DistanceKm(*property.Latitude, *property.Longitude, *h.Latitude, *h.Longitude)
			item.DistanceKm = &d
		}
		resp = append(resp, item)
	}
	return resp, nil
}

func (e *executor) NearbyHotels(ctx context.Context, profileID, propertyID uuid.UUID, radiusKm float64, limit int) ([]dto.HotelResponse, error) {
	property, err := e.ownedProperty(ctx, profileID, propertyID)
	if err != nil {
		return nil, err
	}
	if property.Latitude == nil || property.Longitude == nil {
		return nil, apierrors.NewValidationError("latitude", "property has no coordinates")
	}

	if radiusKm <= 0 {
		radiusKm = constants.DEFAULT_NEARBY_RADIUS_KM
	}
	if radiusKm > constants.MAX_NEARBY_RADIUS_KM {
		radiusKm = constants.MAX_NEARBY_RADIUS_KM
	}
	limit = clampLimit(limit, constants.DEFAULT_SEARCH_LIMIT, constants.MAX_SEARCH_LIMIT)

	hotels, err := e.competitors.Nearby(ctx, *property.Latitude, *property.Longitude, radiusKm, limit)
	if err != nil {
		return nil, err
	}

	linked, err := e.linkedHotels(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	nearby := competitor.SortByDistance(*property.Latitude, *property.Longitude, radiusKm, hotels)
	if len(nearby) > limit {
		nearby = nearby[:limit]
	}
	resp := make([]dto.HotelResponse, 0, len(nearby))
	for _, h := range nearby {
		item := dto.MapHotelToDTO(h.Hotel, linked[h.ID])
		d := h.DistanceKm
		item.DistanceKm = &d
		resp = append(resp, item)
	}
	return resp, nil
}

func (e *executor) GetCompetitorPrices(ctx context.Context, profileID, propertyID uuid.UUID, query PriceQuery) (*dto.CompetitorPricesResponse, error) {
	window, err := query.Window()
	if err != nil {
		return nil, err
	}
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}

	links, err := e.store.ListPropertyCompetitors(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(links))
	ids := make([]uuid.UUID, 0, len(links))
	for _, link := range links {
		names[link.CompetitorID] = link.Competitor.Name
		ids = append(ids, link.CompetitorID)
	}

	start := time.Now()
	prices, err := e.store.GetLowestCompetitorPrices(ctx, ids, window)
	if err != nil {
		return nil, err
	}
	logger.InfoCtx(ctx, "Competitor prices loaded",
		zap.String("propertyID", propertyID.String()),
		zap.Int("competitors", len(ids)),
		zap.Int("rows", len(prices)),
		zap.Duration("duration", time.Since(start)))

	return &dto.CompetitorPricesResponse{
		From:  window.From,
		Until: window.Until,
		Items: mapCompetitorPrices(prices, names),
	}, nil
}

func mapCompetitorPrices(prices []store.LowestCompetitorPrice, names map[uuid.UUID]string) []dto.CompetitorPriceResponse {
	items := make([]dto.CompetitorPriceResponse, 0, len(prices))
	for _, p := range prices {
		items = append(items, dto.CompetitorPriceResponse{
			CompetitorID:   p.CompetitorID,
			CompetitorName: names[p.CompetitorID],
			Date:           p.CheckinDate,
			Price:          p.Price,
			Currency:       p.Currency,
			RoomName:       p.RoomName,
			SoldOut:        p.SoldOut,
		})
	}
	return items
}

// linkedHotels returns the external ids of the property's active competitors
func (e *executor) linkedHotels(ctx context.Context, propertyID uuid.UUID) (map[string]bool, error) {
	links, err := e.store.ListPropertyCompetitors(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	linked := make(map[string]bool, len(links))
	for _, link := range links {
		linked[link.Competitor.ExternalHotelID] = true
	}
	return linked, nil
}

func clampLimit(limit, fallback, maxLimit int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

