package rest

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/pricepilot/dynamic-pricing/internal/api/shared/errors"
	"github.com/pricepilot/dynamic-pricing/internal/logger"
)

// maxWebhookBodyBytes matches the limit Stripe documents for event payloads
const maxWebhookBodyBytes = 65536

// CreateCheckoutSession starts a Stripe Checkout subscription for the profile
func (h *handler) CreateCheckoutSession(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}

	session, err := h.executor.CreateCheckoutSession(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// StripeWebhook verifies and processes a Stripe event
func (h *handler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		logger.WarnCtx(c.Request.Context(), "Failed to read webhook body", zap.Error(err))
		c.JSON(http.StatusBadRequest, apierrors.NewValidationError("", "Failed to read request body"))
		return
	}

	result, err := h.executor.HandleStripeWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
