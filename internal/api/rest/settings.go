package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pricepilot/dynamic-pricing/internal/api/shared/dto"
	apierrors "github.com/pricepilot/dynamic-pricing/internal/api/shared/errors"
)

func (h *handler) GetGeneralSettings(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}

	settings, err := h.executor.GetGeneralSettings(c.Request.Context(), id, propertyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *handler) SaveGeneralSettings(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}

	var req dto.GeneralSettingsRequest
	if !h.bindJSON(c, &req) || !validate(c, req.Validate) {
		return
	}

	settings, err := h.executor.SaveGeneralSettings(c.Request.Context(), id, propertyID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *handler) ListIncrements(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}

	cells, err := h.executor.ListIncrements(c.Request.Context(), id, propertyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cells)
}

// UpsertIncrements writes the given grid cells; absent cells are kept
func (h *handler) UpsertIncrements(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}

	var req dto.UpsertIncrementsRequest
	if !h.bindJSON(c, &req) || !validate(c, req.Validate) {
		return
	}

	cells, err := h.executor.UpsertIncrements(c.Request.Context(), id, propertyID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cells)
}

func (h *handler) ResetIncrements(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}

	cells, err := h.executor.ResetIncrements(c.Request.Context(), id, propertyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cells)
}

func (h *handler) ListMSPs(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}
	var params DateWindowQueryParams
	if !h.bindQuery(c, &params) {
		return
	}
	window, err := params.Window()
	if err != nil {
		respondError(c, err)
		return
	}

	msps, err := h.executor.ListMSPs(c.Request.Context(), id, propertyID, window)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msps)
}

func (h *handler) CreateMSP(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}
	var req dto.MSPRequest
	if !h.bindJSON(c, &req) || !validate(c, req.ValidateCreate) {
		return
	}

	msp, err := h.executor.CreateMSP(c.Request.Context(), id, propertyID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msp)
}

func (h *handler) UpdateMSP(c *gin.Context) {
	id, propertyID, ruleID, ok := ruleScope(c)
	if !ok {
		return
	}
	var req dto.MSPRequest
	if !h.bindJSON(c, &req) || !validate(c, req.Validate) {
		return
	}

	msp, err := h.executor.UpdateMSP(c.Request.Context(), id, propertyID, ruleID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msp)
}

func (h *handler) DeleteMSP(c *gin.Context) {
	h.deleteRule(c, h.executor.DeleteMSP)
}

func (h *handler) ListOffers(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}
	var params DateWindowQueryParams
	if !h.bindQuery(c, &params) {
		return
	}
	window, err := params.Window()
	if err != nil {
		respondError(c, err)
		return
	}

	offers, err := h.executor.ListOffers(c.Request.Context(), id, propertyID, window)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, offers)
}

func (h *handler) CreateOffer(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}
	var req dto.OfferRequest
	if !h.bindJSON(c, &req) || !validate(c, req.ValidateCreate) {
		return
	}

	offer, err := h.executor.CreateOffer(c.Request.Context(), id, propertyID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, offer)
}

func (h *handler) UpdateOffer(c *gin.Context) {
	id, propertyID, ruleID, ok := ruleScope(c)
	if !ok {
		return
	}
	var req dto.OfferRequest
	if !h.bindJSON(c, &req) {
		return
	}

	offer, err := h.executor.UpdateOffer(c.Request.Context(), id, propertyID, ruleID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, offer)
}

func (h *handler) DeleteOffer(c *gin.Context) {
	h.deleteRule(c, h.executor.DeleteOffer)
}

func (h *handler) ListLosSetups(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}
	var params DateWindowQueryParams
	if !h.bindQuery(c, &params) {
		return
	}
	window, err := params.Window()
	if err != nil {
		respondError(c, err)
		return
	}

	setups, err := h.executor.ListLosSetups(c.Request.Context(), id, propertyID, window)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, setups)
}

func (h *handler) CreateLosSetup(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}
	var req dto.LosSetupRequest
	if !h.bindJSON(c, &req) || !validate(c, req.ValidateCreate) {
		return
	}

	setup, err := h.executor.CreateLosSetup(c.Request.Context(), id, propertyID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, setup)
}

func (h *handler) UpdateLosSetup(c *gin.Context) {
	id, propertyID, ruleID, ok := ruleScope(c)
	if !ok {
		return
	}
	var req dto.LosSetupRequest
	if !h.bindJSON(c, &req) {
		return
	}

	setup, err := h.executor.UpdateLosSetup(c.Request.Context(), id, propertyID, ruleID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, setup)
}

func (h *handler) DeleteLosSetup(c *gin.Context) {
	h.deleteRule(c, h.executor.DeleteLosSetup)
}

func (h *handler) ListLosReductions(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}

	reductions, err := h.executor.ListLosReductions(c.Request.Context(), id, propertyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reductions)
}

func (h *handler) UpsertLosReductions(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}
	var req dto.UpsertLosReductionsRequest
	if !h.bindJSON(c, &req) || !validate(c, req.Validate) {
		return
	}

	reductions, err := h.executor.UpsertLosReductions(c.Request.Context(), id, propertyID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reductions)
}

func (h *handler) DeleteLosReduction(c *gin.Context) {
	h.deleteRule(c, h.executor.DeleteLosReduction)
}

func (h *handler) ListRoomRates(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}

	rates, err := h.executor.ListRoomRates(c.Request.Context(), id, propertyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rates)
}

func (h *handler) CreateRoomRate(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}
	var req dto.RoomRateRequest
	if !h.bindJSON(c, &req) || !validate(c, req.ValidateCreate) {
		return
	}

	rate, err := h.executor.CreateRoomRate(c.Request.Context(), id, propertyID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rate)
}

func (h *handler) UpdateRoomRate(c *gin.Context) {
	id, propertyID, ruleID, ok := ruleScope(c)
	if !ok {
		return
	}
	var req dto.RoomRateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	rate, err := h.executor.UpdateRoomRate(c.Request.Context(), id, propertyID, ruleID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rate)
}

func (h *handler) DeleteRoomRate(c *gin.Context) {
	h.deleteRule(c, h.executor.DeleteRoomRate)
}

type deleteRuleFunc func(ctx context.Context, profileID, propertyID uuid.UUID, id int64) error

func (h *handler) deleteRule(c *gin.Context, remove deleteRuleFunc) {
	id, propertyID, ruleID, ok := ruleScope(c)
	if !ok {
		return
	}

	if err := remove(c.Request.Context(), id, propertyID, ruleID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ruleScope resolves the property scope and the numeric :id of a rule row
func ruleScope(c *gin.Context) (uuid.UUID, uuid.UUID, int64, bool) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return uuid.Nil, uuid.Nil, 0, false
	}
	ruleID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || ruleID <= 0 {
		c.JSON(http.StatusNotFound, apierrors.NewNotFoundError(apierrors.ErrCodeRuleNotFound, "Rule not found."))
		return uuid.Nil, uuid.Nil, 0, false
	}
	return id, propertyID, ruleID, true
}
