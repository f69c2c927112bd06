package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pricepilot/dynamic-pricing/internal/store/schema"
)

// CreateNotificationUnlessRecent creates n unless a notification with the same
// profile, property and category was created at or after since. The check and
// the insert share a transaction-scoped advisory lock so concurrent sweeps
// cannot both insert.
func (s *pgStore) CreateNotificationUnlessRecent(ctx context.Context, n *schema.Notification, since time.Time) (bool, error) {
	propertyKey := ""
	if n.PropertyID != nil {
		propertyKey = n.PropertyID.String()
	}
	lockKey := fmt.Sprintf("notification:%s:%s:%s", n.ProfileID, propertyKey, n.Category)

	created := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", lockKey).Error; err != nil {
			return err
		}

		query := tx.Model(&schema.Notification{}).
			Where("profile_id = ? AND category = ? AND created_at >= ?", n.ProfileID, n.Category, since)
		if n.PropertyID != nil {
			query = query.Where("property_id = ?", *n.PropertyID)
		} else {
			query = query.Where("property_id IS NULL")
		}

		var count int64
		if err := query.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		if err := tx.Create(n).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to create notification: %w", err)
	}
	return created, nil
}

// CreateNotification creates n unconditionally
func (s *pgStore) CreateNotification(ctx context.Context, n *schema.Notification) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func visibleNotifications(db *gorm.DB, profileID uuid.UUID, now time.Time) *gorm.DB {
	return db.Model(&schema.Notification{}).
		Where("profile_id = ?", profileID).
		Where("expires_at IS NULL OR expires_at > ?", now)
}

// ListNotifications lists non-expired notifications newest first with the total count
func (s *pgStore) ListNotifications(ctx context.Context, profileID uuid.UUID, filter NotificationFilter) ([]schema.Notification, int64, error) {
	db := s.db.WithContext(ctx)
	query := visibleNotifications(db, profileID, filter.Now)
	if filter.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	var rows []schema.Notification
	query = query.Order("created_at DESC, id DESC").Offset(filter.Offset)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return rows, total, nil
}

// CountUnreadNotifications counts non-expired unread notifications
func (s *pgStore) CountUnreadNotifications(ctx context.Context, profileID uuid.UUID, now time.Time) (int64, error) {
	var count int64
	err := visibleNotifications(s.db.WithContext(ctx), profileID, now).
		Where("is_read = ?", false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkNotificationsSeen clears the is_new flag
func (s *pgStore) MarkNotificationsSeen(ctx context.Context, profileID uuid.UUID, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Model(&schema.Notification{}).
		Where("profile_id = ? AND id IN ? AND is_new = ?", profileID, ids, true).
		Update("is_new", false).Error
	if err != nil {
		return fmt.Errorf("failed to mark notifications seen: %w", err)
	}
	return nil
}

// MarkNotificationRead marks one notification read
func (s *pgStore) MarkNotificationRead(ctx context.Context, profileID uuid.UUID, id int64) (bool, error) {
	result := s.db.WithContext(ctx).Model(&schema.Notification{}).
		Where("profile_id = ? AND id = ?", profileID, id).
		Updates(map[string]any{"is_read": true, "is_new": false})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// MarkAllNotificationsRead marks every notification of a profile read
func (s *pgStore) MarkAllNotificationsRead(ctx context.Context, profileID uuid.UUID) (int64, error) {
	result := s.db.WithContext(ctx).Model(&schema.Notification{}).
		Where("profile_id = ? AND is_read = ?", profileID, false).
		Updates(map[string]any{"is_read": true, "is_new": false})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteExpiredNotifications removes notifications past their expiry
func (s *pgStore) DeleteExpiredNotifications(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Delete(&schema.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired notifications: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// RecordCheckout records a payment once per checkout session and stores the
// Stripe customer on the profile in the same transaction. It reports whether
// the payment row was new.
func (s *pgStore) RecordCheckout(ctx context.Context, payment *schema.Payment) (bool, error) {
	created := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "stripe_session_id"}},
			DoNothing: true,
		}).Create(payment)
		if result.Error != nil {
			return fmt.Errorf("failed to create payment: %w", result.Error)
		}
		created = result.RowsAffected > 0

		if payment.StripeCustomerID == "" {
			return nil
		}
		err := tx.Model(&schema.Profile{}).
			Where("id = ?", payment.ProfileID).
			Updates(map[string]any{"stripe_customer_id": payment.StripeCustomerID, "updated_at": time.Now()}).Error
		if err != nil {
			return fmt.Errorf("failed to set stripe customer: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}
