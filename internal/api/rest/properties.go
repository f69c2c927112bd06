package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pricepilot/dynamic-pricing/internal/api/shared/dto"
	apierrors "github.com/pricepilot/dynamic-pricing/internal/api/shared/errors"
)

// SaveOnboardingProperty creates the onboarding property on the first call
// and updates it on later calls
func (h *handler) SaveOnboardingProperty(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}

	var req dto.PropertyRequest
	if !h.bindJSON(c, &req) || !validate(c, req.Validate) {
		return
	}

	property, err := h.executor.SaveOnboardingProperty(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

// CompleteOnboarding ends onboarding for the profile
func (h *handler) CompleteOnboarding(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}

	profile, err := h.executor.CompleteOnboarding(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ListProperties lists the properties the profile manages
func (h *handler) ListProperties(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}

	properties, err := h.executor.ListProperties(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, properties)
}

func (h *handler) GetProperty(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}

	property, err := h.executor.GetProperty(c.Request.Context(), id, propertyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

func (h *handler) UpdateProperty(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}

	var req dto.UpdatePropertyRequest
	if !h.bindJSON(c, &req) || !validate(c, req.Validate) {
		return
	}

	property, err := h.executor.UpdateProperty(c.Request.Context(), id, propertyID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

// DeleteProperty deactivates the property
func (h *handler) DeleteProperty(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}

	if err := h.executor.DeleteProperty(c.Request.Context(), id, propertyID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// propertyScope resolves the authenticated profile and the :property_id parameter
func propertyScope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	profile, ok := profileID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	property, ok := uuidParam(c, "property_id", apierrors.ErrCodePropertyNotFound)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return profile, property, true
}
