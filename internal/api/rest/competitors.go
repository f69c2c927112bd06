package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pricepilot/dynamic-pricing/internal/api/shared/dto"
	apierrors "github.com/pricepilot/dynamic-pricing/internal/api/shared/errors"
)

func (h *handler) ListCompetitors(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}

	competitors, err := h.executor.ListCompetitors(c.Request.Context(), id, propertyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, competitors)
}

// AddCompetitor links a competitor hotel to the property
func (h *handler) AddCompetitor(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}

	var req dto.AddCompetitorRequest
	if !h.bindJSON(c, &req) {
		return
	}

	competitor, err := h.executor.AddCompetitor(c.Request.Context(), id, propertyID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, competitor)
}

func (h *handler) UpdateCompetitor(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}
	competitorID, ok := uuidParam(c, "competitor_id", apierrors.ErrCodeCompetitorNotFound)
	if !ok {
		return
	}

	var req dto.UpdateCompetitorRequest
	if !h.bindJSON(c, &req) {
		return
	}

	competitor, err := h.executor.UpdateCompetitor(c.Request.Context(), id, propertyID, competitorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, competitor)
}

func (h *handler) RemoveCompetitor(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}
	competitorID, ok := uuidParam(c, "competitor_id", apierrors.ErrCodeCompetitorNotFound)
	if !ok {
		return
	}

	if err := h.executor.RemoveCompetitor(c.Request.Context(), id, propertyID, competitorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SearchHotels proxies a free text search to the competitor service
func (h *handler) SearchHotels(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}

	var params SearchQueryParams
	if !h.bindQuery(c, &params) {
		return
	}

	hotels, err := h.executor.SearchHotels(c.Request.Context(), id, propertyID, params.Query, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, hotels)
}

// NearbyHotels lists hotels around the property, nearest first
func (h *handler) NearbyHotels(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}

	var params NearbyQueryParams
	if !h.bindQuery(c, &params) {
		return
	}

	hotels, err := h.executor.NearbyHotels(c.Request.Context(), id, propertyID, params.RadiusKm, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, hotels)
}

func (h *handler) GetCompetitorPrices(c *gin.Context) {
	id, propertyID, ok := propertyScope(c)
	if !ok {
		return
	}

	var params CompetitorPricesQueryParams
	if !h.bindQuery(c, &params) {
		return
	}

	prices, err := h.executor.GetCompetitorPrices(c.Request.Context(), id, propertyID, params.PriceQuery())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prices)
}
