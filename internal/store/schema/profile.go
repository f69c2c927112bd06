package schema

import (
	"time"

	"github.com/google/uuid"
)

// Profile represents a dashboard user
type Profile struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Email            string    `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash     string    `gorm:"column:password_hash;type:text;not null"`
	FirstName        string    `gorm:"column:first_name;type:text;not null;default:''"`
	LastName         string    `gorm:"column:last_name;type:text;not null;default:''"`
	IsOnboarding     bool      `gorm:"column:is_onboarding;not null"`
	IsActive         bool      `gorm:"column:is_active;not null"`
	StripeCustomerID *string   `gorm:"column:stripe_customer_id;type:text"`
	CreatedAt        time.Time `gorm:"column:created_at;not null;default:now()"`
	UpdatedAt        time.Time `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the Profile model
func (Profile) TableName() string {
	return "profiles"
}

// SoftDeleteColumn marks inactive profiles as deleted
func (Profile) SoftDeleteColumn() (string, SoftDeleteKind) {
	return "is_active", SoftDeleteFlag
}

// ProfileProperty is the join table between profiles and the properties they manage
type ProfileProperty struct {
	ProfileID  uuid.UUID `gorm:"column:profile_id;type:uuid;primaryKey"`
	PropertyID uuid.UUID `gorm:"column:property_id;type:uuid;primaryKey;index"`
	CreatedAt  time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the ProfileProperty model
func (ProfileProperty) TableName() string {
	return "profile_properties"
}

// RefreshToken stores a hashed refresh token issued to a profile
type RefreshToken struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement"`
	ProfileID uuid.UUID  `gorm:"column:profile_id;type:uuid;not null;index"`
	TokenHash string     `gorm:"column:token_hash;type:text;not null;uniqueIndex"`
	ExpiresAt time.Time  `gorm:"column:expires_at;not null"`
	RevokedAt *time.Time `gorm:"column:revoked_at"`
	CreatedAt time.Time  `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the RefreshToken model
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}
