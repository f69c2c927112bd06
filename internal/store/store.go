package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

// Store defines the interface for database operations
type Store interface {
	// =============================================================================
	// Profiles and refresh tokens
	// =============================================================================

	// CreateProfile creates a profile, returning domain.ErrEmailAlreadyExists on a taken email
	CreateProfile(ctx context.Context, input CreateProfileInput) (*schema.Profile, error)
	// GetProfileByID retrieves an active profile
	GetProfileByID(ctx context.Context, id uuid.UUID) (*schema.Profile, error)
	// GetProfileByEmail retrieves an active profile by its lowercased email
	GetProfileByEmail(ctx context.Context, email string) (*schema.Profile, error)
	// CompleteOnboarding clears the onboarding flag of a profile
	CompleteOnboarding(ctx context.Context, profileID uuid.UUID) error
	// CreateRefreshToken stores a hashed refresh token
	CreateRefreshToken(ctx context.Context, token *schema.RefreshToken) error
	// GetRefreshToken retrieves a refresh token by hash
	GetRefreshToken(ctx context.Context, tokenHash string) (*schema.RefreshToken, error)
	// RotateRefreshToken revokes oldHash and stores next atomically
	RotateRefreshToken(ctx context.Context, oldHash string, next *schema.RefreshToken, at time.Time) error
	// RevokeRefreshToken revokes a refresh token
	RevokeRefreshToken(ctx context.Context, tokenHash string, at time.Time) error

	// =============================================================================
	// Properties
	// =============================================================================

	// CreatePropertyWithDefaults creates a property owned by profileID with general settings and the default increment grid
	CreatePropertyWithDefaults(ctx context.Context, profileID uuid.UUID, input PropertyInput) (*schema.Property, error)
	// EnsureOnboardingProperty returns the onboarding property of profileID,
	// creating it with defaults when missing; reports whether it was created
	EnsureOnboardingProperty(ctx context.Context, profileID uuid.UUID, input PropertyInput) (*schema.Property, bool, error)
	// GetOnboardingProperty retrieves the property a profile created during onboarding
	GetOnboardingProperty(ctx context.Context, profileID uuid.UUID) (*schema.Property, error)
	// GetProperty retrieves an active property
	GetProperty(ctx context.Context, propertyID uuid.UUID) (*schema.Property, error)
	// GetPropertyForProfile retrieves an active property visible to profileID
	GetPropertyForProfile(ctx context.Context, profileID, propertyID uuid.UUID) (*schema.Property, error)
	// ListPropertiesForProfile lists the active properties of a profile
	ListPropertiesForProfile(ctx context.Context, profileID uuid.UUID) ([]schema.Property, error)
	// ListActiveProperties lists every active property
	ListActiveProperties(ctx context.Context) ([]schema.Property, error)
	// ListPropertyOwners lists the active profiles managing a property
	ListPropertyOwners(ctx context.Context, propertyID uuid.UUID) ([]schema.Profile, error)
	// UpdateProperty applies non-nil fields of update
	UpdateProperty(ctx context.Context, propertyID uuid.UUID, update PropertyUpdate) (*schema.Property, error)
	// DeactivateProperty soft deletes a property
	DeactivateProperty(ctx context.Context, propertyID uuid.UUID) error
	// DeletePropertyData hard deletes a property and every row keyed by it
	DeletePropertyData(ctx context.Context, propertyID uuid.UUID) error
	// UpsertPMS creates or renames a property management system
	UpsertPMS(ctx context.Context, code domain.PMSCode, name string) (*schema.PropertyManagementSystem, error)
	// GetPMSByCode retrieves a property management system
	GetPMSByCode(ctx context.Context, code domain.PMSCode) (*schema.PropertyManagementSystem, error)

	// =============================================================================
	// Competitors
	// =============================================================================

	// UpsertCompetitor creates or refreshes a competitor keyed by its external hotel id
	UpsertCompetitor(ctx context.Context, input UpsertCompetitorInput) (*schema.Competitor, error)
	// LinkCompetitor links a competitor to a property, reviving a soft-deleted link
	LinkCompetitor(ctx context.Context, propertyID, competitorID uuid.UUID, onlyFollow bool) (*schema.PropertyCompetitor, error)
	// ListPropertyCompetitors lists active competitor links with their competitor
	ListPropertyCompetitors(ctx context.Context, propertyID uuid.UUID) ([]schema.PropertyCompetitor, error)
	// GetPropertyCompetitor retrieves an active competitor link
	GetPropertyCompetitor(ctx context.Context, propertyID, competitorID uuid.UUID) (*schema.PropertyCompetitor, error)
	// SetCompetitorOnlyFollow updates the only_follow flag of an active link
	SetCompetitorOnlyFollow(ctx context.Context, propertyID, competitorID uuid.UUID, onlyFollow bool) (bool, error)
	// UnlinkCompetitor soft deletes a competitor link; price rows are kept
	UnlinkCompetitor(ctx context.Context, propertyID, competitorID uuid.UUID, at time.Time) (bool, error)
	// GetLowestCompetitorPrices returns the cheapest usable price per competitor and date
	GetLowestCompetitorPrices(ctx context.Context, competitorIDs []uuid.UUID, window domain.DateRange) ([]LowestCompetitorPrice, error)
	// InsertCompetitorPrices writes scraped price rows (demo seeding only)
	InsertCompetitorPrices(ctx context.Context, rows []schema.CompetitorPrice) error

	// =============================================================================
	// Settings and rule tables
	// =============================================================================

	// GetGeneralSettings retrieves the settings of a property
	GetGeneralSettings(ctx context.Context, propertyID uuid.UUID) (*schema.GeneralSettings, error)
	// SaveGeneralSettings creates or replaces the settings of a property
	SaveGeneralSettings(ctx context.Context, settings *schema.GeneralSettings) error
	// ListDynamicIncrements lists the increment grid of a property
	ListDynamicIncrements(ctx context.Context, propertyID uuid.UUID) ([]schema.DynamicIncrement, error)
	// UpsertDynamicIncrements inserts or updates grid cells
	UpsertDynamicIncrements(ctx context.Context, propertyID uuid.UUID, cells []schema.DynamicIncrement) error
	// SeedDefaultIncrements inserts missing default cells, optionally replacing existing ones; returns rows written
	SeedDefaultIncrements(ctx context.Context, propertyID uuid.UUID, deleteExisting bool) (int64, error)

	ListMinimumSellingPrices(ctx context.Context, propertyID uuid.UUID, window *domain.DateRange) ([]schema.MinimumSellingPrice, error)
	GetMinimumSellingPrice(ctx context.Context, propertyID uuid.UUID, id int64) (*schema.MinimumSellingPrice, error)
	SaveMinimumSellingPrice(ctx context.Context, rule *schema.MinimumSellingPrice) error
	DeleteMinimumSellingPrice(ctx context.Context, propertyID uuid.UUID, id int64) (bool, error)

	ListOfferIncrements(ctx context.Context, propertyID uuid.UUID, window *domain.DateRange) ([]schema.OfferIncrement, error)
	GetOfferIncrement(ctx context.Context, propertyID uuid.UUID, id int64) (*schema.OfferIncrement, error)
	SaveOfferIncrement(ctx context.Context, rule *schema.OfferIncrement) error
	DeleteOfferIncrement(ctx context.Context, propertyID uuid.UUID, id int64) (bool, error)

	ListLosSetups(ctx context.Context, propertyID uuid.UUID, window *domain.DateRange) ([]schema.LosSetup, error)
	GetLosSetup(ctx context.Context, propertyID uuid.UUID, id int64) (*schema.LosSetup, error)
	SaveLosSetup(ctx context.Context, rule *schema.LosSetup) error
	DeleteLosSetup(ctx context.Context, propertyID uuid.UUID, id int64) (bool, error)

	ListLosReductions(ctx context.Context, propertyID uuid.UUID) ([]schema.LosReduction, error)
	UpsertLosReductions(ctx context.Context, propertyID uuid.UUID, rows []schema.LosReduction) error
	DeleteLosReduction(ctx context.Context, propertyID uuid.UUID, id int64) (bool, error)

	ListRoomRates(ctx context.Context, propertyID uuid.UUID) ([]schema.RoomRate, error)
	GetRoomRate(ctx context.Context, propertyID uuid.UUID, id int64) (*schema.RoomRate, error)
	// SaveRoomRate returns domain.ErrDuplicateRule when the room type and rate plan pair is taken
	SaveRoomRate(ctx context.Context, rate *schema.RoomRate) error
	DeleteRoomRate(ctx context.Context, propertyID uuid.UUID, id int64) (bool, error)

	// =============================================================================
	// Occupancy and price history
	// =============================================================================

	// ListDailyOccupancy returns the latest occupancy snapshot per stay date
	ListDailyOccupancy(ctx context.Context, propertyID uuid.UUID, window domain.DateRange) ([]schema.DailyOccupancy, error)
	// InsertDailyOccupancy writes occupancy snapshots (demo seeding only)
	InsertDailyOccupancy(ctx context.Context, rows []schema.DailyOccupancy) error
	// GetLatestPriceChanges returns the latest recommended price row per date
	GetLatestPriceChanges(ctx context.Context, propertyID uuid.UUID, window domain.DateRange) ([]schema.PriceChangeHistory, error)
	// GetLatestOverwrites returns the latest overwrite row per date, including clearing rows
	GetLatestOverwrites(ctx context.Context, propertyID uuid.UUID, window domain.DateRange) ([]schema.OverwritePriceHistory, error)
	// CreatePriceChanges appends recommended price snapshots
	CreatePriceChanges(ctx context.Context, rows []schema.PriceChangeHistory) error
	// CreateOverwrite appends an overwrite snapshot
	CreateOverwrite(ctx context.Context, row *schema.OverwritePriceHistory) error
	// ListPriceChangesForDate lists recommended price snapshots for a date, newest first
	ListPriceChangesForDate(ctx context.Context, propertyID uuid.UUID, date domain.Date, limit int) ([]schema.PriceChangeHistory, error)
	// ListOverwritesForDate lists overwrite snapshots for a date, newest first
	ListOverwritesForDate(ctx context.Context, propertyID uuid.UUID, date domain.Date, limit int) ([]schema.OverwritePriceHistory, error)
	// ListLegacyOverwrites pages through the legacy overwrite table by id
	ListLegacyOverwrites(ctx context.Context, afterID int64, limit int) ([]schema.LegacyPriceOverwrite, error)
	// BackfillOverwrites inserts overwrite rows in one transaction, skipping existing snapshots
	BackfillOverwrites(ctx context.Context, rows []schema.OverwritePriceHistory) (int64, error)

	// =============================================================================
	// Notifications and payments
	// =============================================================================

	// CreateNotificationUnlessRecent creates n unless a notification with the same
	// profile, property and category exists since `since`
	CreateNotificationUnlessRecent(ctx context.Context, n *schema.Notification, since time.Time) (bool, error)
	// CreateNotification creates n unconditionally
	CreateNotification(ctx context.Context, n *schema.Notification) error
	// ListNotifications lists non-expired notifications newest first with the total count
	ListNotifications(ctx context.Context, profileID uuid.UUID, filter NotificationFilter) ([]schema.Notification, int64, error)
	// CountUnreadNotifications counts non-expired unread notifications
	CountUnreadNotifications(ctx context.Context, profileID uuid.UUID, now time.Time) (int64, error)
	// MarkNotificationsSeen clears the is_new flag
	MarkNotificationsSeen(ctx context.Context, profileID uuid.UUID, ids []int64) error
	// MarkNotificationRead marks one notification read
	MarkNotificationRead(ctx context.Context, profileID uuid.UUID, id int64) (bool, error)
	// MarkAllNotificationsRead marks every notification of a profile read
	MarkAllNotificationsRead(ctx context.Context, profileID uuid.UUID) (int64, error)
	// DeleteExpiredNotifications removes notifications past their expiry
	DeleteExpiredNotifications(ctx context.Context, now time.Time) (int64, error)
	// RecordCheckout records a payment once per checkout session together with
	// the profile's Stripe customer; reports whether the payment was new
	RecordCheckout(ctx context.Context, payment *schema.Payment) (bool, error)

	// =============================================================================
	// Key-value store
	// =============================================================================

	SetKeyValue(ctx context.Context, key string, value string) error
	GetKeyValue(ctx context.Context, key string) (string, error)
}
