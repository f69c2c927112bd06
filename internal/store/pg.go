package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

func hasDBResolver(db *gorm.DB) bool {
	return db != nil && db.Callback().Query().Get("gorm:db_resolver") != nil
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// reportingResolver names the replica resolver serving the externally
// written reporting tables
const reportingResolver = "reporting"

// Open connects to PostgreSQL. When readDSN is not empty, reads of the
// reporting tables (scraped competitor prices, PMS occupancy) are routed to
// that replica through dbresolver. Every other table reads from the primary,
// so a write is always visible to the next read.
func Open(dsn, readDSN string, debug bool) (*gorm.DB, error) {
	logLevel := gormlogger.Silent
	if debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if readDSN != "" {
		err = db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.Open(readDSN)},
			Policy:   dbresolver.RandomPolicy{},
		}, reportingResolver, &schema.CompetitorPrice{}, &schema.DailyOccupancy{}))
		if err != nil {
			return nil, fmt.Errorf("failed to register read replica: %w", err)
		}
	}

	return db, nil
}

// Migrate creates or updates the tables this service owns. includeExternal
// also creates the read-only tables owned by other systems, for local
// development and tests.
func Migrate(db *gorm.DB, includeExternal bool) error {
	models := schema.Managed()
	if includeExternal {
		models = append(models, schema.External()...)
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// If any of the pool settings are 0 or empty, reasonable defaults are used:
//   - MaxOpenConns: 20 (if 0)
//   - MaxIdleConns: 5 (if 0)
//   - ConnMaxLifetime: 5 minutes (if 0)
//   - ConnMaxIdleTime: 10 minutes (if 0)
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Notes:
//   - database/sql treats MaxOpenConns=0 as "unlimited"
//   - database/sql treats MaxIdleConns=0 as "no idle connections"
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// calculateSafeBatchSize keeps bulk inserts under PostgreSQL's 65535
// parameter limit for the extended protocol.
func calculateSafeBatchSize(totalRecords int, fieldsPerRecord int) int {
	const maxParams = 65535
	const totalHeadroom = 1000

	availableParams := maxParams - totalHeadroom
	safeBatchSize := max(availableParams/fieldsPerRecord, 1)

	if safeBatchSize > totalRecords {
		return max(totalRecords, 1)
	}

	return safeBatchSize
}

// isUniqueViolation reports whether err is a unique constraint violation
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// firstOrNil runs query and maps gorm.ErrRecordNotFound to (false, nil).
// Replica can lag behind primary, so a miss is retried on primary when a
// resolver is registered.
func (s *pgStore) firstOrNil(query func(db *gorm.DB) error) (bool, error) {
	err := query(s.db)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if !hasDBResolver(s.db) {
		return false, nil
	}

	err = query(s.db.Clauses(dbresolver.Write))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// =============================================================================
// Profiles and refresh tokens
// =============================================================================

// CreateProfile creates a profile
func (s *pgStore) CreateProfile(ctx context.Context, input CreateProfileInput) (*schema.Profile, error) {
	profile := schema.Profile{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: input.PasswordHash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		IsOnboarding: true,
		IsActive:     true,
	}

	err := s.db.WithContext(ctx).Create(&profile).Error
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return &profile, nil
}

// GetProfileByID retrieves an active profile
func (s *pgStore) GetProfileByID(ctx context.Context, id uuid.UUID) (*schema.Profile, error) {
	var profile schema.Profile
	found, err := s.firstOrNil(func(db *gorm.DB) error {
		return db.WithContext(ctx).Scopes(Active[schema.Profile]()).Where("id = ?", id).First(&profile).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &profile, nil
}

// GetProfileByEmail retrieves an active profile by email
func (s *pgStore) GetProfileByEmail(ctx context.Context, email string) (*schema.Profile, error) {
	var profile schema.Profile
	err := s.db.WithContext(ctx).
		Scopes(Active[schema.Profile]()).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile by email: %w", err)
	}
	return &profile, nil
}

// CompleteOnboarding clears the onboarding flag
func (s *pgStore) CompleteOnboarding(ctx context.Context, profileID uuid.UUID) error {
	err := s.db.WithContext(ctx).Model(&schema.Profile{}).
		Where("id = ?", profileID).
		Updates(map[string]any{"is_onboarding": false, "updated_at": time.Now()}).Error
	if err != nil {
		return fmt.Errorf("failed to complete onboarding: %w", err)
	}
	return nil
}

// CreateRefreshToken stores a hashed refresh token
func (s *pgStore) CreateRefreshToken(ctx context.Context, token *schema.RefreshToken) error {
	if err := s.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

// GetRefreshToken retrieves a refresh token by hash
func (s *pgStore) GetRefreshToken(ctx context.Context, tokenHash string) (*schema.RefreshToken, error) {
	var token schema.RefreshToken
	found, err := s.firstOrNil(func(db *gorm.DB) error {
		return db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&token).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &token, nil
}

// RotateRefreshToken revokes oldHash and stores next in one transaction
func (s *pgStore) RotateRefreshToken(ctx context.Context, oldHash string, next *schema.RefreshToken, at time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&schema.RefreshToken{}).
			Where("token_hash = ? AND revoked_at IS NULL", oldHash).
			Update("revoked_at", at)
		if result.Error != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrInvalidRefreshToken
		}
		if err := tx.Create(next).Error; err != nil {
			return fmt.Errorf("failed to create refresh token: %w", err)
		}
		return nil
	})
}

// RevokeRefreshToken revokes a refresh token
func (s *pgStore) RevokeRefreshToken(ctx context.Context, tokenHash string, at time.Time) error {
	err := s.db.WithContext(ctx).Model(&schema.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", tokenHash).
		Update("revoked_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// =============================================================================
// Key-value store
// =============================================================================

// SetKeyValue sets a key-value pair in the key-value store
func (s *pgStore) SetKeyValue(ctx context.Context, key string, value string) error {
	kv := schema.KeyValueStore{
		Key:   key,
		Value: value,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&kv).Error
	if err != nil {
		return fmt.Errorf("failed to set key-value: %w", err)
	}

	return nil
}

// GetKeyValue retrieves a value by key from the key-value store
func (s *pgStore) GetKeyValue(ctx context.Context, key string) (string, error) {
	var kv schema.KeyValueStore
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get key-value: %w", err)
	}

	return kv.Value, nil
}
