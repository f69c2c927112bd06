package executor

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pricepilot/dynamic-pricing/internal/api/shared/dto"
	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/logger"
	"github.com/pricepilot/dynamic-pricing/internal/pricing"
	"github.com/pricepilot/dynamic-pricing/internal/store"
)

// PropertyExecutor handles onboarding and property management
type PropertyExecutor interface {
	// SaveOnboardingProperty creates the onboarding property on the first
	// call and updates the same property afterwards
	SaveOnboardingProperty(ctx context.Context, profileID uuid.UUID, req dto.PropertyRequest) (*dto.PropertyResponse, error)
	// CompleteOnboarding ends onboarding for a profile
	CompleteOnboarding(ctx context.Context, profileID uuid.UUID) (*dto.ProfileResponse, error)
	ListProperties(ctx context.Context, profileID uuid.UUID) ([]dto.PropertyResponse, error)
	GetProperty(ctx context.Context, profileID, propertyID uuid.UUID) (*dto.PropertyResponse, error)
	UpdateProperty(ctx context.Context, profileID, propertyID uuid.UUID, req dto.UpdatePropertyRequest) (*dto.PropertyResponse, error)
	// DeleteProperty deactivates a property
	DeleteProperty(ctx context.Context, profileID, propertyID uuid.UUID) error
}

func (e *executor) SaveOnboardingProperty(ctx context.Context, profileID uuid.UUID, req dto.PropertyRequest) (*dto.PropertyResponse, error) {
	profile, err := e.store.GetProfileByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrProfileNotFound
	}
	if !profile.IsOnboarding {
		return nil, domain.ErrOnboardingCompleted
	}

	pmsID, err := e.resolvePMS(ctx, req.PMS)
	if err != nil {
		return nil, err
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = pricing.TimezoneFor(req.Latitude, req.Longitude)
	}

	property, created, err := e.store.EnsureOnboardingProperty(ctx, profileID, store.PropertyInput{
		Name:            req.Name,
		PMSID:           pmsID,
		PMSPropertyCode: req.PMSPropertyCode,
		Address:         req.Address,
		City:            req.City,
		PostalCode:      req.PostalCode,
		Country:         req.Country,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		Timezone:        timezone,
		NumberOfRooms:   req.NumberOfRooms,
		Currency:        req.Currency,
	})
	if err != nil {
		return nil, err
	}

	propertyID := property.ID
	if created {
		logger.InfoCtx(ctx, "Onboarding property created",
			zap.String("profileID", profileID.String()),
			zap.String("propertyID", propertyID.String()))
	} else {
		updated, err := e.store.UpdateProperty(ctx, propertyID, store.PropertyUpdate{
			Name:            &req.Name,
			PMSID:           pmsID,
			PMSPropertyCode: req.PMSPropertyCode,
			Address:         &req.Address,
			City:            &req.City,
			PostalCode:      &req.PostalCode,
			Country:         &req.Country,
			Latitude:        req.Latitude,
			Longitude:       req.Longitude,
			Timezone:        &timezone,
			NumberOfRooms:   &req.NumberOfRooms,
			Currency:        &req.Currency,
		})
		if err != nil {
			return nil, err
		}
		if updated == nil {
			return nil, domain.ErrPropertyNotFound
		}
	}

	property, err = e.store.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, domain.ErrPropertyNotFound
	}
	resp := dto.MapPropertyToDTO(property)
	return &resp, nil
}

func (e *executor) CompleteOnboarding(ctx context.Context, profileID uuid.UUID) (*dto.ProfileResponse, error) {
	if err := e.store.CompleteOnboarding(ctx, profileID); err != nil {
		return nil, err
	}
	return e.Me(ctx, profileID)
}

func (e *executor) ListProperties(ctx context.Context, profileID uuid.UUID) ([]dto.PropertyResponse, error) {
	properties, err := e.store.ListPropertiesForProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.PropertyResponse, 0, len(properties))
	for i := range properties {
		resp = append(resp, dto.MapPropertyToDTO(&properties[i]))
	}
	return resp, nil
}

func (e *executor) GetProperty(ctx context.Context, profileID, propertyID uuid.UUID) (*dto.PropertyResponse, error) {
	property, err := e.ownedProperty(ctx, profileID, propertyID)
	if err != nil {
		return nil, err
	}
	resp := dto.MapPropertyToDTO(property)
	return &resp, nil
}

func (e *executor) UpdateProperty(ctx context.Context, profileID, propertyID uuid.UUID, req dto.UpdatePropertyRequest) (*dto.PropertyResponse, error) {
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return nil, err
	}

	pmsID, err := e.resolvePMS(ctx, req.PMS)
	if err != nil {
		return nil, err
	}

	update := store.PropertyUpdate{
		Name:            req.Name,
		PMSID:           pmsID,
		PMSPropertyCode: req.PMSPropertyCode,
		Address:         req.Address,
		City:            req.City,
		PostalCode:      req.PostalCode,
		Country:         req.Country,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		Timezone:        req.Timezone,
		NumberOfRooms:   req.NumberOfRooms,
		Currency:        req.Currency,
	}
	// moving the property without an explicit zone re-derives it
	if req.Timezone == nil && req.Latitude != nil && req.Longitude != nil {
		timezone := pricing.TimezoneFor(req.Latitude, req.Longitude)
		update.Timezone = &timezone
	}

	property, err := e.store.UpdateProperty(ctx, propertyID, update)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, domain.ErrPropertyNotFound
	}
	resp := dto.MapPropertyToDTO(property)
	return &resp, nil
}

func (e *executor) DeleteProperty(ctx context.Context, profileID, propertyID uuid.UUID) error {
	if _, err := e.ownedProperty(ctx, profileID, propertyID); err != nil {
		return err
	}
	if err := e.store.DeactivateProperty(ctx, propertyID); err != nil {
		return err
	}
	logger.InfoCtx(ctx, "Property deactivated", zap.String("propertyID", propertyID.String()))
	return nil
}

// resolvePMS maps a PMS code to its row id, registering unknown codes
func (e *executor) resolvePMS(ctx context.Context, code *string) (*int64, error) {
	if code == nil || *code == "" {
		return nil, nil
	}
	pmsCode := domain.PMSCode(strings.ToLower(*code))

	pms, err := e.store.GetPMSByCode(ctx, pmsCode)
	if err != nil {
		return nil, err
	}
	if pms == nil {
		pms, err = e.store.UpsertPMS(ctx, pmsCode, string(pmsCode))
		if err != nil {
			return nil, err
		}
	}
	return &pms.ID, nil
}
