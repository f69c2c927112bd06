package executor

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pricepilot/dynamic-pricing/internal/api/shared/dto"
	apierrors "github.com/pricepilot/dynamic-pricing/internal/api/shared/errors"
	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/logger"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

// SettingsExecutor handles general settings and the pricing rule tables
type SettingsExecutor interface {
	GetGeneralSettings(ctx context.Context, profileID, propertyID uuid.UUID) (*dto.GeneralSettingsResponse, error)
	SaveGeneralSettings(ctx context.Context, profileID, propertyID uuid.UUID, req dto.GeneralSettingsRequest) (*dto.GeneralSettingsResponse, error)

	ListIncrements(ctx context.Context, profileID, propertyID uuid.UUID) ([]dto.IncrementCellResponse, error)
	UpsertIncrements(ctx context.Context, profileID, propertyID uuid.UUID, req dto.UpsertIncrementsRequest) ([]dto.IncrementCellResponse, error)
	// ResetIncrements replaces the grid with the default values
	ResetIncrements(ctx context.Context, profileID, propertyID uuid.UUID) ([]dto.IncrementCellResponse, error)

	ListMSPs(ctx context.Context, profileID, propertyID uuid.UUID, window *domain.DateRange) ([]dto.MSPResponse, error)
	CreateMSP(ctx context.Context, profileID, propertyID uuid.UUID, req dto.MSPRequest) (*dto.MSPResponse, error)
	UpdateMSP(ctx context.Context, profileID, propertyID uuid.UUID, id int64, req dto.MSPRequest) (*dto.MSPResponse, error)
	DeleteMSP(ctx context.Context, profileID, propertyID uuid.UUID, id int64) error

	ListOffers(ctx context.Context, profileID, propertyID uuid.UUID, window *domain.DateRange) ([]dto.OfferResponse, error)
	CreateOffer(ctx context.Context, profileID, propertyID uuid.UUID, req dto.OfferRequest) (*dto.OfferResponse, error)
	UpdateOffer(ctx context.Context, profileID, propertyID uuid.UUID, id int64, req dto.OfferRequest) (*dto.OfferResponse, error)
	DeleteOffer(ctx context.Context, profileID, propertyID uuid.UUID, id int64) error

	ListLosSetups(ctx context.Context, profileID, propertyID uuid.UUID, window *domain.DateRange) ([]dto.LosSetupResponse, error)
	CreateLosSetup(ctx context.Context, profileID, propertyID uuid.UUID, req dto.LosSetupRequest) (*dto.LosSetupResponse, error)
	UpdateLosSetup(ctx context.Context, profileID, propertyID uuid.UUID, id int64, req dto.LosSetupRequest) (*dto.LosSetupResponse, error)
	DeleteLosSetup(ctx context.Context, profileID, propertyID uuid.UUID, id int64) error

	ListLosReductions(ctx context.Context, profileID, propertyID uuid.UUID) ([]dto.LosReductionResponse, error)
	UpsertLosReductions(ctx context.Context, profileID, propertyID uuid.UUID, req dto.UpsertLosReductionsRequest) ([]dto.LosReductionResponse, error)
	DeleteLosReduction(ctx context.Context, profileID, propertyID uuid.UUID, id int64) error

	ListRoomRates(ctx context.Context, profileID, propertyID uuid.UUID) ([]dto.RoomRateResponse, error)
	CreateRoomRate(ctx context.Context, profileID, propertyID uuid.UUID, req dto.RoomRateRequest) (*dto.RoomRateResponse, error)
	UpdateRoomRate(ctx context.Context, profileID, propertyID uuid.UUID, id int64, req dto.RoomRateRequest) (*dto.RoomRateResponse, error)
	DeleteRoomRate(ctx context.Context, profileID, propertyID uuid.UUID, id int64) error
}

// =============================================================================
// General settings and increments
// =============================================================================

func (e *executor) GetGeneralSettings(ctx context.Context, profileID, propertyID uuid.UUID) (*dto.GeneralSettingsResponse, error) {
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}
	settings, err := e.store.GetGeneralSettings(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = schema.DefaultGeneralSettings(propertyID)
	}
	resp := dto.MapGeneralSettingsToDTO(settings)
	return &resp, nil
}

func (e *executor) SaveGeneralSettings(ctx context.Context, profileID, propertyID uuid.UUID, req dto.GeneralSettingsRequest) (*dto.GeneralSettingsResponse, error) {
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}
	settings := &schema.GeneralSettings{
		PropertyID:                 propertyID,
		PricingMode:                req.PricingMode,
		MinCompetitors:             req.MinCompetitors,
		MaxCompetitors:             req.MaxCompetitors,
		BasePrice:                  req.BasePrice,
		MaxPrice:                   req.MaxPrice,
		HolidayIncrement:           req.HolidayIncrement,
		IsPricingOnline:            req.IsPricingOnline,
		IsCompetitorTrackingOnline: req.IsCompetitorTrackingOnline,
	}
	if err := e.store.SaveGeneralSettings(ctx, settings); err != nil {
		return nil, err
	}
	logger.InfoCtx(ctx, "General settings saved",
		zap.String("propertyID", propertyID.String()),
		zap.String("mode", string(req.PricingMode)))

	resp := dto.MapGeneralSettingsToDTO(settings)
	return &resp, nil
}

func (e *executor) ListIncrements(ctx context.Context, profileID, propertyID uuid.UUID) ([]dto.IncrementCellResponse, error) {
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}
	return e.listIncrements(ctx, propertyID)
}

func (e *executor) UpsertIncrements(ctx context.Context, profileID, propertyID uuid.UUID, req dto.UpsertIncrementsRequest) ([]dto.IncrementCellResponse, error) {
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}
	cells := make([]schema.DynamicIncrement, 0, len(req.Cells))
	for _, c := range req.Cells {
		cells = append(cells, schema.DynamicIncrement{
			PropertyID:        propertyID,
			OccupancyCategory: domain.OccupancyCategory(c.OccupancyCategory),
			LeadTimeCategory:  domain.LeadTimeCategory(c.LeadTimeCategory),
			IncrementValue:    c.IncrementValue,
		})
	}
	if err := e.store.UpsertDynamicIncrements(ctx, propertyID, cells); err != nil {
		return nil, err
	}
	return e.listIncrements(ctx, propertyID)
}

func (e *executor) ResetIncrements(ctx context.Context, profileID, propertyID uuid.UUID) ([]dto.IncrementCellResponse, error) {
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}
	written, err := e.store.SeedDefaultIncrements(ctx, propertyID, true)
	if err != nil {
		return nil, err
	}
	logger.InfoCtx(ctx, "Increment grid reset",
		zap.String("propertyID", propertyID.String()),
		zap.Int64("cells", written))
	return e.listIncrements(ctx, propertyID)
}

func (e *executor) listIncrements(ctx context.Context, propertyID uuid.UUID) ([]dto.IncrementCellResponse, error) {
	cells, err := e.store.ListDynamicIncrements(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return dto.MapIncrementsToDTO(cells), nil
}

// =============================================================================
// Minimum selling prices
// =============================================================================

func (e *executor) ListMSPs(ctx context.Context, profileID, propertyID uuid.UUID, window *domain.DateRange) ([]dto.MSPResponse, error) {
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}
	rows, err := e.store.ListMinimumSellingPrices(ctx, propertyID, window)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.MSPResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, dto.MapMSPToDTO(&rows[i]))
	}
	return resp, nil
}

func (e *executor) CreateMSP(ctx context.Context, profileID, propertyID uuid.UUID, req dto.MSPRequest) (*dto.MSPResponse, error) {
	if err := req.ValidateCreate(); err != nil {
		return nil, err
	}
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}
	rule := &schema.MinimumSellingPrice{
		PropertyID: propertyID,
		ValidFrom:  *req.ValidFrom,
		ValidUntil: *req.ValidUntil,
		MSP:        domain.RoundPrice(*req.MSP),
	}
	if err := e.store.SaveMinimumSellingPrice(ctx, rule); err != nil {
		return nil, err
	}
	resp := dto.MapMSPToDTO(rule)
	return &resp, nil
}

func (e *executor) UpdateMSP(ctx context.Context, profileID, propertyID uuid.UUID, id int64, req dto.MSPRequest) (*dto.MSPResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}
	rule, err := e.store.GetMinimumSellingPrice(ctx, propertyID, id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, domain.ErrRuleNotFound
	}

	applyDates(&rule.ValidFrom, &rule.ValidUntil, req.ValidFrom, req.ValidUntil)
	if req.MSP != nil {
		rule.MSP = domain.RoundPrice(*req.MSP)
	}
	if err := checkDates(rule.ValidFrom, rule.ValidUntil); err != nil {
		return nil, err
	}

	if err := e.store.SaveMinimumSellingPrice(ctx, rule); err != nil {
		return nil, err
	}
	resp := dto.MapMSPToDTO(rule)
	return &resp, nil
}

func (e *executor) DeleteMSP(ctx context.Context, profileID, propertyID uuid.UUID, id int64) error {
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return err
	}
	return ruleDeleted(e.store.DeleteMinimumSellingPrice(ctx, propertyID, id))
}

// =============================================================================
// Offer increments
// =============================================================================

func (e *executor) ListOffers(ctx context.Context, profileID, propertyID uuid.UUID, window *domain.DateRange) ([]dto.OfferResponse, error) {
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}
	rows, err := e.store.ListOfferIncrements(ctx, propertyID, window)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.OfferResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, dto.MapOfferToDTO(&rows[i]))
	}
	return resp, nil
}

func (e *executor) CreateOffer(ctx context.Context, profileID, propertyID uuid.UUID, req dto.OfferRequest) (*dto.OfferResponse, error) {
	if err := req.ValidateCreate(); err != nil {
		return nil, err
	}
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}
	rule := &schema.OfferIncrement{
		PropertyID:     propertyID,
		ValidFrom:      *req.ValidFrom,
		ValidUntil:     *req.ValidUntil,
		IncrementType:  domain.AdjustmentPercentage,
		IncrementValue: *req.IncrementValue,
		IsActive:       true,
	}
	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.IncrementType != nil {
		rule.IncrementType = *req.IncrementType
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if err := e.store.SaveOfferIncrement(ctx, rule); err != nil {
		return nil, err
	}
	resp := dto.MapOfferToDTO(rule)
	return &resp, nil
}

func (e *executor) UpdateOffer(ctx context.Context, profileID, propertyID uuid.UUID, id int64, req dto.OfferRequest) (*dto.OfferResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}
	rule, err := e.store.GetOfferIncrement(ctx, propertyID, id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, domain.ErrRuleNotFound
	}

	applyDates(&rule.ValidFrom, &rule.ValidUntil, req.ValidFrom, req.ValidUntil)
	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.IncrementType != nil {
		rule.IncrementType = *req.IncrementType
	}
	if req.IncrementValue != nil {
		rule.IncrementValue = *req.IncrementValue
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if err := checkDates(rule.ValidFrom, rule.ValidUntil); err != nil {
		return nil, err
	}

	if err := e.store.SaveOfferIncrement(ctx, rule); err != nil {
		return nil, err
	}
	resp := dto.MapOfferToDTO(rule)
	return &resp, nil
}

func (e *executor) DeleteOffer(ctx context.Context, profileID, propertyID uuid.UUID, id int64) error {
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return err
	}
	return ruleDeleted(e.store.DeleteOfferIncrement(ctx, propertyID, id))
}

// =============================================================================
// LOS setups and reductions
// =============================================================================

func (e *executor) ListLosSetups(ctx context.Context, profileID, propertyID uuid.UUID, window *domain.DateRange) ([]dto.LosSetupResponse, error) {
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}
	rows, err := e.store.ListLosSetups(ctx, propertyID, window)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.LosSetupResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, dto.MapLosSetupToDTO(&rows[i]))
	}
	return resp, nil
}

func (e *executor) CreateLosSetup(ctx context.Context, profileID, propertyID uuid.UUID, req dto.LosSetupRequest) (*dto.LosSetupResponse, error) {
	if err := req.ValidateCreate(); err != nil {
		return nil, err
	}
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}
	rule := &schema.LosSetup{
		PropertyID: propertyID,
		ValidFrom:  *req.ValidFrom,
		ValidUntil: *req.ValidUntil,
		MaxLOS:     *req.MaxLOS,
	}
	if err := e.store.SaveLosSetup(ctx, rule); err != nil {
		return nil, err
	}
	resp := dto.MapLosSetupToDTO(rule)
	return &resp, nil
}

func (e *executor) UpdateLosSetup(ctx context.Context, profileID, propertyID uuid.UUID, id int64, req dto.LosSetupRequest) (*dto.LosSetupResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}
	rule, err := e.store.GetLosSetup(ctx, propertyID, id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, domain.ErrRuleNotFound
	}

	applyDates(&rule.ValidFrom, &rule.ValidUntil, req.ValidFrom, req.ValidUntil)
	if req.MaxLOS != nil {
		rule.MaxLOS = *req.MaxLOS
	}
	if err := checkDates(rule.ValidFrom, rule.ValidUntil); err != nil {
		return nil, err
	}

	if err := e.store.SaveLosSetup(ctx, rule); err != nil {
		return nil, err
	}
	resp := dto.MapLosSetupToDTO(rule)
	return &resp, nil
}

func (e *executor) DeleteLosSetup(ctx context.Context, profileID, propertyID uuid.UUID, id int64) error {
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return err
	}
	return ruleDeleted(e.store.DeleteLosSetup(ctx, propertyID, id))
}

func (e *executor) ListLosReductions(ctx context.Context, profileID, propertyID uuid.UUID) ([]dto.LosReductionResponse, error) {
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}
	rows, err := e.store.ListLosReductions(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return dto.MapLosReductionsToDTO(rows), nil
}

func (e *executor) UpsertLosReductions(ctx context.Context, profileID, propertyID uuid.UUID, req dto.UpsertLosReductionsRequest) ([]dto.LosReductionResponse, error) {
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}
	rows := make([]schema.LosReduction, 0, len(req.Reductions))
	for _, r := range req.Reductions {
		rows = append(rows, schema.LosReduction{
			PropertyID:        propertyID,
			LeadTimeDays:      r.LeadTimeDays,
			OccupancyCategory: domain.OccupancyCategory(r.OccupancyCategory),
			NumNights:         r.NumNights,
			ReductionPercent:  r.ReductionPercent,
		})
	}
	if err := e.store.UpsertLosReductions(ctx, propertyID, rows); err != nil {
		return nil, err
	}
	return e.ListLosReductions(ctx, profileID, propertyID)
}

func (e *executor) DeleteLosReduction(ctx context.Context, profileID, propertyID uuid.UUID, id int64) error {
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return err
	}
	return ruleDeleted(e.store.DeleteLosReduction(ctx, propertyID, id))
}

// =============================================================================
// Room rates
// =============================================================================

func (e *executor) ListRoomRates(ctx context.Context, profileID, propertyID uuid.UUID) ([]dto.RoomRateResponse, error) {
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}
	rows, err := e.store.ListRoomRates(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.RoomRateResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, dto.MapRoomRateToDTO(&rows[i]))
	}
	return resp, nil
}

func (e *executor) CreateRoomRate(ctx context.Context, profileID, propertyID uuid.UUID, req dto.RoomRateRequest) (*dto.RoomRateResponse, error) {
	if err := req.ValidateCreate(); err != nil {
		return nil, err
	}
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}
	rate := &schema.RoomRate{
		PropertyID: propertyID,
		OffsetType: domain.AdjustmentPercentage,
	}
	applyRoomRate(rate, req)
	if err := e.store.SaveRoomRate(ctx, rate); err != nil {
		return nil, err
	}
	resp := dto.MapRoomRateToDTO(rate)
	return &resp, nil
}

func (e *executor) UpdateRoomRate(ctx context.Context, profileID, propertyID uuid.UUID, id int64, req dto.RoomRateRequest) (*dto.RoomRateResponse, error) {
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}
	rate, err := e.store.GetRoomRate(ctx, propertyID, id)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, domain.ErrRuleNotFound
	}
	applyRoomRate(rate, req)
	if err := e.store.SaveRoomRate(ctx, rate); err != nil {
		return nil, err
	}
	resp := dto.MapRoomRateToDTO(rate)
	return &resp, nil
}

func (e *executor) DeleteRoomRate(ctx context.Context, profileID, propertyID uuid.UUID, id int64) error {
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return err
	}
	return ruleDeleted(e.store.DeleteRoomRate(ctx, propertyID, id))
}

func applyRoomRate(rate *schema.RoomRate, req dto.RoomRateRequest) {
	if req.RoomTypeCode != nil {
		rate.RoomTypeCode = *req.RoomTypeCode
	}
	if req.RatePlanCode != nil {
		rate.RatePlanCode = *req.RatePlanCode
	}
	if req.Name != nil {
		rate.Name = *req.Name
	}
	if req.IsBaseRate != nil {
		rate.IsBaseRate = *req.IsBaseRate
	}
	if req.OffsetType != nil {
		rate.OffsetType = *req.OffsetType
	}
	if req.OffsetValue != nil {
		rate.OffsetValue = *req.OffsetValue
	}
}

func applyDates(from, until *domain.Date, newFrom, newUntil *domain.Date) {
	if newFrom != nil {
		*from = *newFrom
	}
	if newUntil != nil {
		*until = *newUntil
	}
}

// checkDates validates the merged range of a patched rule
func checkDates(from, until domain.Date) error {
	if from.After(until) {
		return apierrors.NewInvalidDateRangeError("valid_until")
	}
	return nil
}

func ruleDeleted(deleted bool, err error) error {
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrRuleNotFound
	}
	return nil
}
