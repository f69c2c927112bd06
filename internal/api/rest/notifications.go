package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pricepilot/dynamic-pricing/internal/api/shared/dto"
	apierrors "github.com/pricepilot/dynamic-pricing/internal/api/shared/errors"
)

// ListNotifications returns a page of notifications and clears their is_new flag
func (h *handler) ListNotifications(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}

	var params NotificationsQueryParams
	if !h.bindQuery(c, &params) {
		return
	}
	ParseNotificationsQuery(&params)

	notifications, err := h.executor.ListNotifications(c.Request.Context(), id, params.UnreadOnly, params.Limit, params.Offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (h *handler) CountNotifications(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}

	count, err := h.executor.CountUnreadNotifications(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, count)
}

func (h *handler) MarkNotificationRead(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}
	notificationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, apierrors.NewNotFoundError(apierrors.ErrCodeNotificationNotFound, "Notification not found."))
		return
	}

	if err := h.executor.MarkNotificationRead(c.Request.Context(), id, notificationID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

func (h *handler) MarkAllNotificationsRead(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}

	result, err := h.executor.MarkAllNotificationsRead(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
