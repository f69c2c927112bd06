package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"

	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

// CreatePropertyWithDefaults creates a property, links it to its creator and
// seeds general settings and the default increment grid in one transaction
func (s *pgStore) CreatePropertyWithDefaults(ctx context.Context, profileID uuid.UUID, input PropertyInput) (*schema.Property, error) {
	var property *schema.Property
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		property, err = createPropertyWithDefaults(tx, profileID, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return property, nil
}

// EnsureOnboardingProperty returns the profile's onboarding property, creating
// it with defaults when the profile has none. Calls for the same profile are
// serialized by an advisory lock, so concurrent requests create one property.
func (s *pgStore) EnsureOnboardingProperty(ctx context.Context, profileID uuid.UUID, input PropertyInput) (*schema.Property, bool, error) {
	var (
		property *schema.Property
		created  bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "onboarding:"+profileID.String()).Error; err != nil {
			return fmt.Errorf("failed to lock onboarding: %w", err)
		}

		var existing schema.Property
		err := tx.Scopes(Active[schema.Property]()).
			Where("created_by = ?", profileID).
			Order("created_at ASC").
			First(&existing).Error
		if err == nil {
			property = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to get onboarding property: %w", err)
		}

		property, err = createPropertyWithDefaults(tx, profileID, input)
		if err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return property, created, nil
}

func createPropertyWithDefaults(tx *gorm.DB, profileID uuid.UUID, input PropertyInput) (*schema.Property, error) {
	property := schema.Property{
		ID:              uuid.New(),
		Name:            input.Name,
		PMSID:           input.PMSID,
		PMSPropertyCode: input.PMSPropertyCode,
		Address:         input.Address,
		City:            input.City,
		PostalCode:      input.PostalCode,
		Country:         input.Country,
		Latitude:        input.Latitude,
		Longitude:       input.Longitude,
		Timezone:        input.Timezone,
		NumberOfRooms:   input.NumberOfRooms,
		Currency:        input.Currency,
		IsActive:        true,
		CreatedBy:       profileID,
	}

	if err := tx.Create(&property).Error; err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	link := schema.ProfileProperty{ProfileID: profileID, PropertyID: property.ID}
	if err := tx.Create(&link).Error; err != nil {
		return nil, fmt.Errorf("failed to link property to profile: %w", err)
	}

	if err := tx.Create(schema.DefaultGeneralSettings(property.ID)).Error; err != nil {
		return nil, fmt.Errorf("failed to create general settings: %w", err)
	}

	if _, err := seedDefaultIncrements(tx, property.ID, false); err != nil {
		return nil, err
	}
	return &property, nil
}

// GetOnboardingProperty retrieves the first active property created by the profile
func (s *pgStore) GetOnboardingProperty(ctx context.Context, profileID uuid.UUID) (*schema.Property, error) {
	var property schema.Property
	found, err := s.firstOrNil(func(db *gorm.DB) error {
		return db.WithContext(ctx).
			Scopes(Active[schema.Property]()).
			Where("created_by = ?", profileID).
			Order("created_at ASC").
			First(&property).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get onboarding property: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &property, nil
}

// GetProperty retrieves an active property
func (s *pgStore) GetProperty(ctx context.Context, propertyID uuid.UUID) (*schema.Property, error) {
	var property schema.Property
	err := s.db.WithContext(ctx).
		Scopes(Active[schema.Property]()).
		Preload("PMS").
		Where("id = ?", propertyID).
		First(&property).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	return &property, nil
}

// GetPropertyForProfile retrieves an active property the profile manages
func (s *pgStore) GetPropertyForProfile(ctx context.Context, profileID, propertyID uuid.UUID) (*schema.Property, error) {
	var property schema.Property
	found, err := s.firstOrNil(func(db *gorm.DB) error {
		return db.WithContext(ctx).
			Scopes(Active[schema.Property]()).
			Preload("PMS").
			Joins("JOIN profile_properties pp ON pp.property_id = properties.id").
			Where("pp.profile_id = ? AND properties.id = ?", profileID, propertyID).
			First(&property).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &property, nil
}

// ListPropertiesForProfile lists the active properties of a profile
func (s *pgStore) ListPropertiesForProfile(ctx context.Context, profileID uuid.UUID) ([]schema.Property, error) {
	var properties []schema.Property
	err := s.db.WithContext(ctx).
		Scopes(Active[schema.Property]()).
		Preload("PMS").
		Joins("JOIN profile_properties pp ON pp.property_id = properties.id").
		Where("pp.profile_id = ?", profileID).
		Order("properties.name ASC").
		Find(&properties).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, nil
}

// ListActiveProperties lists every active property
func (s *pgStore) ListActiveProperties(ctx context.Context) ([]schema.Property, error) {
	var properties []schema.Property
	err := s.db.WithContext(ctx).
		Scopes(Active[schema.Property]()).
		Order("created_at ASC").
		Find(&properties).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active properties: %w", err)
	}
	return properties, nil
}

// ListPropertyOwners lists the active profiles managing a property
func (s *pgStore) ListPropertyOwners(ctx context.Context, propertyID uuid.UUID) ([]schema.Profile, error) {
	var profiles []schema.Profile
	err := s.db.WithContext(ctx).
		Scopes(Active[schema.Profile]()).
		Joins("JOIN profile_properties pp ON pp.profile_id = profiles.id").
		Where("pp.property_id = ?", propertyID).
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list property owners: %w", err)
	}
	return profiles, nil
}

// UpdateProperty applies the non-nil fields of update
func (s *pgStore) UpdateProperty(ctx context.Context, propertyID uuid.UUID, update PropertyUpdate) (*schema.Property, error) {
	updates := map[string]any{"updated_at": time.Now()}
	setIf(updates, "name", update.Name)
	setIf(updates, "pms_id", update.PMSID)
	setIf(updates, "pms_property_code", update.PMSPropertyCode)
	setIf(updates, "address", update.Address)
	setIf(updates, "city", update.City)
	setIf(updates, "postal_code", update.PostalCode)
	setIf(updates, "country", update.Country)
	setIf(updates, "latitude", update.Latitude)
	setIf(updates, "longitude", update.Longitude)
	setIf(updates, "timezone", update.Timezone)
	setIf(updates, "number_of_rooms", update.NumberOfRooms)
	setIf(updates, "currency", update.Currency)

	result := s.db.WithContext(ctx).Model(&schema.Property{}).
		Scopes(Active[schema.Property]()).
		Where("id = ?", propertyID).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update property: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	var property schema.Property
	if err := s.db.WithContext(ctx).Clauses(dbWrite(s.db)...).Preload("PMS").Where("id = ?", propertyID).First(&property).Error; err != nil {
		return nil, fmt.Errorf("failed to reload property: %w", err)
	}
	return &property, nil
}

// DeactivateProperty soft deletes a property
func (s *pgStore) DeactivateProperty(ctx context.Context, propertyID uuid.UUID) error {
	updates := softDeleteUpdates[schema.Property](time.Now())
	updates["updated_at"] = time.Now()
	err := s.db.WithContext(ctx).Model(&schema.Property{}).Where("id = ?", propertyID).Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to deactivate property: %w", err)
	}
	return nil
}

// DeletePropertyData hard deletes a property and every row keyed by it
func (s *pgStore) DeletePropertyData(ctx context.Context, propertyID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keyed := []any{
			&schema.ProfileProperty{},
			&schema.PropertyCompetitor{},
			&schema.GeneralSettings{},
			&schema.DynamicIncrement{},
			&schema.MinimumSellingPrice{},
			&schema.OfferIncrement{},
			&schema.LosSetup{},
			&schema.LosReduction{},
			&schema.RoomRate{},
			&schema.PriceChangeHistory{},
			&schema.OverwritePriceHistory{},
			&schema.Notification{},
		}
		for _, model := range keyed {
			if err := tx.Where("property_id = ?", propertyID).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to delete property data: %w", err)
			}
		}
		if err := tx.Where("id = ?", propertyID).Delete(&schema.Property{}).Error; err != nil {
			return fmt.Errorf("failed to delete property: %w", err)
		}
		return nil
	})
}

// UpsertPMS creates or renames a property management system
func (s *pgStore) UpsertPMS(ctx context.Context, code domain.PMSCode, name string) (*schema.PropertyManagementSystem, error) {
	pms := schema.PropertyManagementSystem{Code: string(code), Name: name}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(&pms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert pms: %w", err)
	}
	return s.GetPMSByCode(ctx, code)
}

// GetPMSByCode retrieves a property management system
func (s *pgStore) GetPMSByCode(ctx context.Context, code domain.PMSCode) (*schema.PropertyManagementSystem, error) {
	var pms schema.PropertyManagementSystem
	found, err := s.firstOrNil(func(db *gorm.DB) error {
		return db.WithContext(ctx).Where("code = ?", string(code)).First(&pms).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get pms: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &pms, nil
}

func setIf[T any](updates map[string]any, column string, value *T) {
	if value != nil {
		updates[column] = *value
	}
}

// dbWrite pins a read to the primary when a replica resolver is registered
func dbWrite(db *gorm.DB) []clause.Expression {
	if hasDBResolver(db) {
		return []clause.Expression{dbresolver.Write}
	}
	return nil
}
