package schema

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/pricepilot/dynamic-pricing/internal/domain"
)

// Notification is a per-profile message shown in the dashboard
type Notification struct {
	ID         int64                       `gorm:"column:id;primaryKey;autoIncrement"`
	ProfileID  uuid.UUID                   `gorm:"column:profile_id;type:uuid;not null;index:idx_notifications_dedupe,priority:1"`
	PropertyID *uuid.UUID                  `gorm:"column:property_id;type:uuid;index:idx_notifications_dedupe,priority:2"`
	Category   domain.NotificationCategory `gorm:"column:category;type:text;not null;index:idx_notifications_dedupe,priority:3"`
	Title      string                      `gorm:"column:title;type:text;not null"`
	Message    string                      `gorm:"column:message;type:text;not null"`
	Payload    datatypes.JSON              `gorm:"column:payload;type:jsonb"`
	IsRead     bool                        `gorm:"column:is_read;not null;default:false"`
	IsNew      bool                        `gorm:"column:is_new;not null"`
	ExpiresAt  *time.Time                  `gorm:"column:expires_at;index"`
	CreatedAt  time.Time                   `gorm:"column:created_at;not null;default:now();index:idx_notifications_dedupe,priority:4"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
