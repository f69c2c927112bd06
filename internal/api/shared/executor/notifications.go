package executor

import (
	"context"

	"github.com/google/uuid"

	"github.com/pricepilot/dynamic-pricing/internal/api/shared/constants"
	"github.com/pricepilot/dynamic-pricing/internal/api/shared/dto"
	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/logger"
	"github.com/pricepilot/dynamic-pricing/internal/store"
)

// NotificationExecutor handles the dashboard notification feed
type NotificationExecutor interface {
	// ListNotifications returns non-expired notifications newest first and
	// clears the is_new flag of the returned rows
	ListNotifications(ctx context.Context, profileID uuid.UUID, unreadOnly bool, limit, offset int) (*dto.NotificationListResponse, error)
	CountUnreadNotifications(ctx context.Context, profileID uuid.UUID) (*dto.NotificationCountResponse, error)
	MarkNotificationRead(ctx context.Context, profileID uuid.UUID, id int64) error
	MarkAllNotificationsRead(ctx context.Context, profileID uuid.UUID) (*dto.MarkAllReadResponse, error)
}

func (e *executor) ListNotifications(ctx context.Context, profileID uuid.UUID, unreadOnly bool, limit, offset int) (*dto.NotificationListResponse, error) {
	limit = clampLimit(limit, constants.DEFAULT_NOTIFICATIONS_LIMIT, constants.MAX_PAGE_SIZE)
	if offset < 0 {
		offset = 0
	}

	rows, total, err := e.store.ListNotifications(ctx, profileID, store.NotificationFilter{
		UnreadOnly: unreadOnly,
		Now:        e.clock.Now(),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.NotificationListResponse{
		Total:  total,
		Limit:  limit,
		Offset: offset,
		Items:  make([]dto.NotificationResponse, 0, len(rows)),
	}
	var seen []int64
	for i := range rows {
		// the response still reports is_new for this read
		resp.Items = append(resp.Items, dto.MapNotificationToDTO(&rows[i]))
		if rows[i].IsNew {
			seen = append(seen, rows[i].ID)
		}
	}

	if len(seen) > 0 {
		if err := e.store.MarkNotificationsSeen(ctx, profileID, seen); err != nil {
			logger.ErrorCtx(ctx, err)
		}
	}
	return resp, nil
}

func (e *executor) CountUnreadNotifications(ctx context.Context, profileID uuid.UUID) (*dto.NotificationCountResponse, error) {
	unread, err := e.store.CountUnreadNotifications(ctx, profileID, e.clock.Now())
	if err != nil {
		return nil, err
	}
	return &dto.NotificationCountResponse{Unread: unread}, nil
}

func (e *executor) MarkNotificationRead(ctx context.Context, profileID uuid.UUID, id int64) error {
	updated, err := e.store.MarkNotificationRead(ctx, profileID, id)
	if err != nil {
		return err
	}
	if !updated {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (e *executor) MarkAllNotificationsRead(ctx context.Context, profileID uuid.UUID) (*dto.MarkAllReadResponse, error) {
	updated, err := e.store.MarkAllNotificationsRead(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return &dto.MarkAllReadResponse{Success: true, Updated: updated}, nil
}
