package schema

import (
	"time"

	"github.com/google/uuid"

	"github.com/pricepilot/dynamic-pricing/internal/domain"
)

// Payment records a completed Stripe checkout session
type Payment struct {
	ID               int64                `gorm:"column:id;primaryKey;autoIncrement"`
	ProfileID        uuid.UUID            `gorm:"column:profile_id;type:uuid;not null;index"`
	StripeSessionID  string               `gorm:"column:stripe_session_id;type:text;not null;uniqueIndex"`
	StripeCustomerID string               `gorm:"column:stripe_customer_id;type:text;not null;default:''"`
	AmountTotal      int64                `gorm:"column:amount_total;not null;default:0"` // minor units
	Currency         string               `gorm:"column:currency;type:varchar(3);not null;default:''"`
	Status           domain.PaymentStatus `gorm:"column:status;type:text;not null"`
	CreatedAt        time.Time            `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}
