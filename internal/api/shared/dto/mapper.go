package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/pricing"
	"github.com/pricepilot/dynamic-pricing/internal/providers/competitor"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

// MapProfileToDTO maps a profile to its public view
func MapProfileToDTO(p *schema.Profile) *ProfileResponse {
	return &ProfileResponse{
		ID:           p.ID,
		Email:        p.Email,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		IsOnboarding: p.IsOnboarding,
		HasPaid:      p.StripeCustomerID != nil && *p.StripeCustomerID != "",
		CreatedAt:    p.CreatedAt,
	}
}

// MapPropertyToDTO maps a property to its public view
func MapPropertyToDTO(p *schema.Property) PropertyResponse {
	resp := PropertyResponse{
		ID:              p.ID,
		Name:            p.Name,
		PMSPropertyCode: p.PMSPropertyCode,
		Address:         p.Address,
		City:            p.City,
		PostalCode:      p.PostalCode,
		Country:         p.Country,
		Latitude:        p.Latitude,
		Longitude:       p.Longitude,
		Timezone:        p.Timezone,
		NumberOfRooms:   p.NumberOfRooms,
		Currency:        p.Currency,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if p.PMS != nil {
		code := p.PMS.Code
		resp.PMS = &code
	}
	return resp
}

// MapCompetitorToDTO maps an active competitor link
func MapCompetitorToDTO(link *schema.PropertyCompetitor) CompetitorResponse {
	c := link.Competitor
	return CompetitorResponse{
		ID:              c.ID,
		ExternalHotelID: c.ExternalHotelID,
		Name:            c.Name,
		Address:         c.Address,
		City:            c.City,
		Latitude:        c.Latitude,
		Longitude:       c.Longitude,
		Stars:           c.Stars,
		OnlyFollow:      link.OnlyFollow,
		LinkedAt:        link.CreatedAt,
	}
}

// MapHotelToDTO maps a competitor service hotel
func MapHotelToDTO(h competitor.Hotel, linked bool) HotelResponse {
	return HotelResponse{
		ExternalHotelID: h.ID,
		Name:            h.Name,
		Address:         h.Address,
		City:            h.City,
		Latitude:        h.Latitude,
		Longitude:       h.Longitude,
		Stars:           h.Stars,
		AlreadyLinked:   linked,
	}
}

// MapGeneralSettingsToDTO maps general settings
func MapGeneralSettingsToDTO(s *schema.GeneralSettings) GeneralSettingsResponse {
	return GeneralSettingsResponse{
		PricingMode:                s.PricingMode,
		MinCompetitors:             s.MinCompetitors,
		MaxCompetitors:             s.MaxCompetitors,
		BasePrice:                  s.BasePrice,
		MaxPrice:                   s.MaxPrice,
		HolidayIncrement:           s.HolidayIncrement,
		IsPricingOnline:            s.IsPricingOnline,
		IsCompetitorTrackingOnline: s.IsCompetitorTrackingOnline,
		UpdatedAt:                  s.UpdatedAt,
	}
}

func MapIncrementsToDTO(cells []schema.DynamicIncrement) []IncrementCellResponse {
	out := make([]IncrementCellResponse, 0, len(cells))
	for _, c := range cells {
		out = append(out, IncrementCellResponse{
			OccupancyCategory: int(c.OccupancyCategory),
			LeadTimeCategory:  int(c.LeadTimeCategory),
			IncrementValue:    c.IncrementValue,
		})
	}
	return out
}

func MapMSPToDTO(m *schema.MinimumSellingPrice) MSPResponse {
	return MSPResponse{ID: m.ID, ValidFrom: m.ValidFrom, ValidUntil: m.ValidUntil, MSP: m.MSP, UpdatedAt: m.UpdatedAt}
}

func MapOfferToDTO(o *schema.OfferIncrement) OfferResponse {
	return OfferResponse{
		ID:             o.ID,
		Name:           o.Name,
		ValidFrom:      o.ValidFrom,
		ValidUntil:     o.ValidUntil,
		IncrementType:  o.IncrementType,
		IncrementValue: o.IncrementValue,
		IsActive:       o.IsActive,
		UpdatedAt:      o.UpdatedAt,
	}
}

func MapLosSetupToDTO(l *schema.LosSetup) LosSetupResponse {
	return LosSetupResponse{ID: l.ID, ValidFrom: l.ValidFrom, ValidUntil: l.ValidUntil, MaxLOS: l.MaxLOS, UpdatedAt: l.UpdatedAt}
}

func MapLosReductionsToDTO(rows []schema.LosReduction) []LosReductionResponse {
	out := make([]LosReductionResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, LosReductionResponse{
			ID:                r.ID,
			LeadTimeDays:      r.LeadTimeDays,
			OccupancyCategory: int(r.OccupancyCategory),
			NumNights:         r.NumNights,
			ReductionPercent:  r.ReductionPercent,
		})
	}
	return out
}

func MapRoomRateToDTO(r *schema.RoomRate) RoomRateResponse {
	return RoomRateResponse{
		ID:           r.ID,
		RoomTypeCode: r.RoomTypeCode,
		RatePlanCode: r.RatePlanCode,
		Name:         r.Name,
		IsBaseRate:   r.IsBaseRate,
		OffsetType:   r.OffsetType,
		OffsetValue:  r.OffsetValue,
	}
}

// MapPriceChangeToDTO maps a recommended price snapshot
func MapPriceChangeToDTO(row *schema.PriceChangeHistory) PriceChangeResponse {
	los, _ := pricing.DecodeLosPrices(row.LosPrices)
	return PriceChangeResponse{
		AsOf:              row.AsOf,
		RecommendedPrice:  row.RecommendedPrice,
		CompetitorPrice:   nullDecimal(row.CompetitorPrice),
		Occupancy:         row.Occupancy,
		OccupancyCategory: int(row.OccupancyCategory),
		LeadTimeCategory:  int(row.LeadTimeCategory),
		IncrementApplied:  row.IncrementApplied,
		MSPApplied:        row.MSPApplied,
		LosPrices:         los,
	}
}

// MapOverwriteToDTO maps an overwrite snapshot
func MapOverwriteToDTO(row *schema.OverwritePriceHistory) OverwriteResponse {
	return OverwriteResponse{AsOf: row.AsOf, Price: nullDecimal(row.OverwritePrice), CreatedBy: row.CreatedBy}
}

// MapPriceDay combines the latest recommended and overwrite rows of a date.
// The overwrite wins when present and not cleared.
func MapPriceDay(date domain.Date, change *schema.PriceChangeHistory, overwrite *schema.OverwritePriceHistory) PriceDayResponse {
	day := PriceDayResponse{Date: date}
	if change != nil {
		price := change.RecommendedPrice
		asOf := change.AsOf
		day.RecommendedPrice = &price
		day.RecommendedAsOf = &asOf
		day.CompetitorPrice = nullDecimal(change.CompetitorPrice)
		day.LosPrices, _ = pricing.DecodeLosPrices(change.LosPrices)
		day.EffectivePrice = &price
	}
	if overwrite != nil {
		asOf := overwrite.AsOf
		day.OverwriteAsOf = &asOf
		if overwrite.OverwritePrice.Valid {
			price := overwrite.OverwritePrice.Decimal
			day.OverwritePrice = &price
			day.EffectivePrice = &price
		}
	}
	return day
}

// MapNotificationToDTO maps a notification
func MapNotificationToDTO(n *schema.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:         n.ID,
		PropertyID: n.PropertyID,
		Category:   n.Category,
		Title:      n.Title,
		Message:    n.Message,
		IsRead:     n.IsRead,
		IsNew:      n.IsNew,
		ExpiresAt:  n.ExpiresAt,
		CreatedAt:  n.CreatedAt,
	}
	if len(n.Payload) > 0 {
		_ = json.Unmarshal(n.Payload, &resp.Payload)
	}
	return resp
}

func nullDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
