package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pricepilot/dynamic-pricing/internal/api/shared/dto"
)

// GetPrices returns recommended, overwrite and effective price per date
func (h *handler) GetPrices(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}

	var params PricesQueryParams
	if !h.bindQuery(c, &params) {
		return
	}
	from, to := params.Dates()

	prices, err := h.executor.GetPrices(c.Request.Context(), id, propertyID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prices)
}

func (h *handler) GetPriceHistory(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}

	var uri DateURIParams
	if err := c.ShouldBindUri(&uri); err != nil {
		h.respondBindError(c, err)
		return
	}
	var params HistoryQueryParams
	if !h.bindQuery(c, &params) {
		return
	}

	history, err := h.executor.GetPriceHistory(c.Request.Context(), id, propertyID, mustDate(uri.Date), params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// CreateOverwrite pins a manual price for a check-in date
func (h *handler) CreateOverwrite(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}

	var req dto.OverwriteRequest
	if !h.bindJSON(c, &req) || !validate(c, req.Validate) {
		return
	}

	overwrite, err := h.executor.CreateOverwrite(c.Request.Context(), id, propertyID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, overwrite)
}

// ClearOverwrite returns a date to the recommended price
func (h *handler) ClearOverwrite(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}

	var uri DateURIParams
	if err := c.ShouldBindUri(&uri); err != nil {
		h.respondBindError(c, err)
		return
	}

	overwrite, err := h.executor.ClearOverwrite(c.Request.Context(), id, propertyID, mustDate(uri.Date))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overwrite)
}

// RecalculatePrices runs the pricing engine for the property
func (h *handler) RecalculatePrices(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}

	var params RecalculateQueryParams
	if !h.bindQuery(c, &params) {
		return
	}

	result, err := h.executor.Recalculate(c.Request.Context(), id, propertyID, params.Days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
