package executor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pricepilot/dynamic-pricing/internal/api/shared/constants"
	"github.com/pricepilot/dynamic-pricing/internal/api/shared/dto"
	apierrors "github.com/pricepilot/dynamic-pricing/internal/api/shared/errors"
	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/logger"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

// PriceExecutor handles recommended prices and manual overwrites
type PriceExecutor interface {
	// GetPrices returns the current price state of every date in the range.
	// Without a range the next 30 days from the property's today are used.
	GetPrices(ctx context.Context, profileID, propertyID uuid.UUID, from, to *domain.Date) (*dto.PricesResponse, error)
	// GetPriceHistory returns both histories of a date, newest first
	GetPriceHistory(ctx context.Context, profileID, propertyID uuid.UUID, date domain.Date, limit int) (*dto.PriceHistoryResponse, error)
	// CreateOverwrite appends an overwrite snapshot
	CreateOverwrite(ctx context.Context, profileID, propertyID uuid.UUID, req dto.OverwriteRequest) (*dto.OverwriteResponse, error)
	// ClearOverwrite appends a snapshot without price
	ClearOverwrite(ctx context.Context, profileID, propertyID uuid.UUID, date domain.Date) (*dto.OverwriteResponse, error)
	// Recalculate runs the pricing engine for the property now
	Recalculate(ctx context.Context, profileID, propertyID uuid.UUID, days *int) (*dto.RecalculateResponse, error)
}

func (e *executor) GetPrices(ctx context.Context, profileID, propertyID uuid.UUID, from, to *domain.Date) (*dto.PricesResponse, error) {
	property, err := e.ownedProperty(ctx, profileID, propertyID)
	if err != nil {
		return nil, err
	}

	window, err := e.priceWindow(property, from, to)
	if err != nil {
		return nil, err
	}

	changes, err := e.store.GetLatestPriceChanges(ctx, propertyID, window)
	if err != nil {
		return nil, err
	}
	overwrites, err := e.store.GetLatestOverwrites(ctx, propertyID, window)
	if err != nil {
		return nil, err
	}

	changeByDate := make(map[domain.Date]*schema.PriceChangeHistory, len(changes))
	for i := range changes {
		changeByDate[changes[i].CheckinDate] = &changes[i]
	}
	overwriteByDate := make(map[domain.Date]*schema.OverwritePriceHistory, len(overwrites))
	for i := range overwrites {
		overwriteByDate[overwrites[i].CheckinDate] = &overwrites[i]
	}

	items := make([]dto.PriceDayResponse, 0, window.Days())
	for _, date := range window.Dates() {
		items = append(items, dto.MapPriceDay(date, changeByDate[date], overwriteByDate[date]))
	}

	return &dto.PricesResponse{From: window.From, Until: window.Until, Items: items}, nil
}

func (e *executor) priceWindow(property *schema.Property, from, to *domain.Date) (domain.DateRange, error) {
	var window domain.DateRange
	switch {
	case from == nil && to == nil:
		today := e.propertyToday(property)
		window = domain.DateRange{From: today, Until: today.AddDays(constants.DEFAULT_PRICES_DAYS - 1)}
	case from != nil && to != nil:
		window = domain.DateRange{From: *from, Until: *to}
	case from != nil:
		window = domain.DateRange{From: *from, Until: from.AddDays(constants.DEFAULT_PRICES_DAYS - 1)}
	default:
		return domain.DateRange{}, apierrors.NewValidationError("from", "from is required when to is provided")
	}

	if err := window.Validate(); err != nil {
		return domain.DateRange{}, apierrors.NewInvalidDateRangeError("to")
	}
	if window.Days() > constants.MAX_RECALCULATE_DAYS {
		return domain.DateRange{}, apierrors.NewValidationError("to", fmt.Sprintf("date range must not exceed %d days", constants.MAX_RECALCULATE_DAYS))
	}
	return window, nil
}

func (e *executor) GetPriceHistory(ctx context.Context, profileID, propertyID uuid.UUID, date domain.Date, limit int) (*dto.PriceHistoryResponse, error) {
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}
	limit = clampLimit(limit, constants.DEFAULT_HISTORY_LIMIT, constants.MAX_PAGE_SIZE)

	changes, err := e.store.ListPriceChangesForDate(ctx, propertyID, date, limit)
	if err != nil {
		return nil, err
	}
	overwrites, err := e.store.ListOverwritesForDate(ctx, propertyID, date, limit)
	if err != nil {
		return nil, err
	}

	resp := &dto.PriceHistoryResponse{
		Date:         date,
		PriceChanges: make([]dto.PriceChangeResponse, 0, len(changes)),
		Overwrites:   make([]dto.OverwriteResponse, 0, len(overwrites)),
	}
	for i := range changes {
		resp.PriceChanges = append(resp.PriceChanges, dto.MapPriceChangeToDTO(&changes[i]))
	}
	for i := range overwrites {
		resp.Overwrites = append(resp.Overwrites, dto.MapOverwriteToDTO(&overwrites[i]))
	}
	return resp, nil
}

func (e *executor) CreateOverwrite(ctx context.Context, profileID, propertyID uuid.UUID, req dto.OverwriteRequest) (*dto.OverwriteResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}

	price := decimal.NewNullDecimal(domain.RoundPrice(req.Price))
	return e.appendOverwrite(ctx, profileID, propertyID, req.CheckinDate, price)
}

func (e *executor) ClearOverwrite(ctx context.Context, profileID, propertyID uuid.UUID, date domain.Date) (*dto.OverwriteResponse, error) {
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}
	return e.appendOverwrite(ctx, profileID, propertyID, date, decimal.NullDecimal{})
}

func (e *executor) appendOverwrite(ctx context.Context, profileID, propertyID uuid.UUID, date domain.Date, price decimal.NullDecimal) (*dto.OverwriteResponse, error) {
	row := &schema.OverwritePriceHistory{
		PropertyID:     propertyID,
		CheckinDate:    date,
		AsOf:           e.clock.Now().UTC(),
		OverwritePrice: price,
		CreatedBy:      &profileID,
	}
	if err := e.store.CreateOverwrite(ctx, row); err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Price overwrite recorded",
		zap.String("propertyID", propertyID.String()),
		zap.String("date", date.String()),
		zap.Bool("cleared", !price.Valid))

	resp := dto.MapOverwriteToDTO(row)
	return &resp, nil
}

func (e *executor) Recalculate(ctx context.Context, profileID, propertyID uuid.UUID, days *int) (*dto.RecalculateResponse, error) {
	horizon := e.cfg.PricingHorizonDays
	if days != nil {
		horizon = *days
	}
	if horizon < 1 || horizon > constants.MAX_RECALCULATE_DAYS {
		return nil, apierrors.NewValidationError("days", fmt.Sprintf("days must be between 1 and %d", constants.MAX_RECALCULATE_DAYS))
	}

	property, err := e.ownedProperty(ctx, profileID, propertyID)
	if err != nil {
		return nil, err
	}

	result, err := e.engine.Recalculate(ctx, property, horizon)
	if err != nil {
		return nil, err
	}
	return &dto.RecalculateResponse{
		Success: true,
		From:    result.From,
		Until:   result.Until,
		Priced:  result.Priced,
		Changed: result.Changed,
	}, nil
}
