package pricing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/pricepilot/dynamic-pricing/internal/adapter"
	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/logger"
	"github.com/pricepilot/dynamic-pricing/internal/store"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

// Source is the part of the store the engine reads from and appends to
type Source interface {
	GetGeneralSettings(ctx context.Context, propertyID uuid.UUID) (*schema.GeneralSettings, error)
	ListPropertyCompetitors(ctx context.Context, propertyID uuid.UUID) ([]schema.PropertyCompetitor, error)
	GetLowestCompetitorPrices(ctx context.Context, competitorIDs []uuid.UUID, window domain.DateRange) ([]store.LowestCompetitorPrice, error)
	ListDailyOccupancy(ctx context.Context, propertyID uuid.UUID, window domain.DateRange) ([]schema.DailyOccupancy, error)
	ListDynamicIncrements(ctx context.Context, propertyID uuid.UUID) ([]schema.DynamicIncrement, error)
	ListMinimumSellingPrices(ctx context.Context, propertyID uuid.UUID, window *domain.DateRange) ([]schema.MinimumSellingPrice, error)
	ListOfferIncrements(ctx context.Context, propertyID uuid.UUID, window *domain.DateRange) ([]schema.OfferIncrement, error)
	ListLosSetups(ctx context.Context, propertyID uuid.UUID, window *domain.DateRange) ([]schema.LosSetup, error)
	ListLosReductions(ctx context.Context, propertyID uuid.UUID) ([]schema.LosReduction, error)
	GetLatestPriceChanges(ctx context.Context, propertyID uuid.UUID, window domain.DateRange) ([]schema.PriceChangeHistory, error)
	CreatePriceChanges(ctx context.Context, rows []schema.PriceChangeHistory) error
}

// Result summarises one recalculation run
type Result struct {
	PropertyID uuid.UUID   `json:"property_id"`
	From       domain.Date `json:"from"`
	Until      domain.Date `json:"until"`
	Priced     int         `json:"priced"`
	Changed    int         `json:"changed"`
}

// Engine computes recommended prices from competitor prices and rule tables
type Engine struct {
	source   Source
	clock    adapter.Clock
	holidays HolidayCalendar
}

// NewEngine creates a pricing engine
func NewEngine(source Source, clock adapter.Clock, holidays HolidayCalendar) *Engine {
	if holidays == nil {
		holidays = NewHolidayCalendar()
	}
	return &Engine{source: source, clock: clock, holidays: holidays}
}

// Recalculate prices the next days check-in dates of property, starting at
// today in the property's time zone. A history row is appended only for
// dates whose recommended price or LOS prices changed.
func (e *Engine) Recalculate(ctx context.Context, property *schema.Property, days int) (*Result, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be positive, got %d", days)
	}

	now := e.clock.Now()
	today := domain.Today(now, property.Location())
	window := domain.DateRange{From: today, Until: today.AddDays(days - 1)}

	r, err := e.load(ctx, property, today, window)
	if err != nil {
		return nil, err
	}

	latest, err := e.source.GetLatestPriceChanges(ctx, property.ID, window)
	if err != nil {
		return nil, err
	}
	previous := make(map[domain.Date]schema.PriceChangeHistory, len(latest))
	for _, row := range latest {
		previous[row.CheckinDate] = row
	}

	result := &Result{PropertyID: property.ID, From: window.From, Until: window.Until}
	var rows []schema.PriceChangeHistory
	for _, date := range window.Dates() {
		q, ok := r.quote(date)
		if !ok {
			continue
		}
		result.Priced++

		if prev, ok := previous[date]; ok && unchanged(prev, q) {
			continue
		}

		losPrices, err := encodeLosPrices(q.LosPrices)
		if err != nil {
			return nil, fmt.Errorf("failed to encode los prices: %w", err)
		}
		rows = append(rows, schema.PriceChangeHistory{
			PropertyID:        property.ID,
			CheckinDate:       date,
			AsOf:              now,
			RecommendedPrice:  q.Price,
			CompetitorPrice:   q.CompetitorPrice,
			Occupancy:         q.Occupancy,
			OccupancyCategory: q.OccupancyCategory,
			LeadTimeCategory:  q.LeadTimeCategory,
			IncrementApplied:  q.IncrementApplied,
			MSPApplied:        q.MSPApplied,
			LosPrices:         datatypes.JSON(losPrices),
		})
	}

	if err := e.source.CreatePriceChanges(ctx, rows); err != nil {
		return nil, err
	}
	result.Changed = len(rows)

	logger.InfoCtx(ctx, "Recalculated prices",
		zap.String("propertyID", property.ID.String()),
		zap.String("from", window.From.String()),
		zap.String("until", window.Until.String()),
		zap.Int("priced", result.Priced),
		zap.Int("changed", result.Changed))

	return result, nil
}

func (e *Engine) load(ctx context.Context, property *schema.Property, today domain.Date, window domain.DateRange) (*rules, error) {
	settings, err := e.source.GetGeneralSettings(ctx, property.ID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = schema.DefaultGeneralSettings(property.ID)
	}

	links, err := e.source.ListPropertyCompetitors(ctx, property.ID)
	if err != nil {
		return nil, err
	}
	competitorIDs := make([]uuid.UUID, 0, len(links))
	for _, link := range links {
		if !link.OnlyFollow {
			competitorIDs = append(competitorIDs, link.CompetitorID)
		}
	}

	lowest, err := e.source.GetLowestCompetitorPrices(ctx, competitorIDs, window)
	if err != nil {
		return nil, err
	}
	competitor := make(map[domain.Date][]decimal.Decimal)
	for _, p := range lowest {
		if p.SoldOut || !p.Price.Valid || !p.Price.Decimal.IsPositive() {
			continue
		}
		competitor[p.CheckinDate] = append(competitor[p.CheckinDate], p.Price.Decimal)
	}

	occupancyRows, err := e.source.ListDailyOccupancy(ctx, property.ID, window)
	if err != nil {
		return nil, err
	}
	occupancy := make(map[domain.Date]schema.DailyOccupancy, len(occupancyRows))
	for _, row := range occupancyRows {
		occupancy[row.StayDate] = row
	}

	cells, err := e.source.ListDynamicIncrements(ctx, property.ID)
	if err != nil {
		return nil, err
	}
	increments := make(map[[2]int]decimal.Decimal, len(cells))
	for _, cell := range cells {
		increments[[2]int{int(cell.OccupancyCategory), int(cell.LeadTimeCategory)}] = cell.IncrementValue
	}

	msps, err := e.source.ListMinimumSellingPrices(ctx, property.ID, &window)
	if err != nil {
		return nil, err
	}
	offers, err := e.source.ListOfferIncrements(ctx, property.ID, &window)
	if err != nil {
		return nil, err
	}
	losSetups, err := e.source.ListLosSetups(ctx, property.ID, &window)
	if err != nil {
		return nil, err
	}
	reductions, err := e.source.ListLosReductions(ctx, property.ID)
	if err != nil {
		return nil, err
	}

	return &rules{
		today:      today,
		country:    property.Country,
		rooms:      property.NumberOfRooms,
		settings:   *settings,
		competitor: competitor,
		occupancy:  occupancy,
		increments: increments,
		msps:       msps,
		offers:     offers,
		losSetups:  losSetups,
		reductions: reductions,
		holidays:   e.holidays,
	}, nil
}

func unchanged(prev schema.PriceChangeHistory, q Quote) bool {
	if !prev.RecommendedPrice.Equal(q.Price) {
		return false
	}
	stored, err := DecodeLosPrices(prev.LosPrices)
	if err != nil {
		return false
	}
	return sameLosPrices(stored, q.LosPrices)
}
