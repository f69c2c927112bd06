package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pricepilot/dynamic-pricing/internal/api/shared/executor"
)

// Handler defines the interface for REST API handlers
// This interface allows for easy mocking and testing
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// GetCSRFToken issues a CSRF cookie and returns its value
	// GET /api/v1/auth/csrf
	GetCSRFToken(c *gin.Context)

	// Register creates a profile and starts a session
	// POST /api/v1/auth/register
	Register(c *gin.Context)

	// Login starts a session
	// POST /api/v1/auth/login
	Login(c *gin.Context)

	// Refresh rotates the refresh cookie and issues a new access token
	// POST /api/v1/auth/refresh
	Refresh(c *gin.Context)

	// Logout revokes the refresh cookie
	// POST /api/v1/auth/logout
	Logout(c *gin.Context)

	// Me returns the authenticated profile
	// GET /api/v1/auth/me
	Me(c *gin.Context)

	// SaveOnboardingProperty creates or updates the onboarding property
	// POST /api/v1/onboarding/property
	SaveOnboardingProperty(c *gin.Context)

	// CompleteOnboarding ends onboarding
	// POST /api/v1/onboarding/complete
	CompleteOnboarding(c *gin.Context)

	// GET /api/v1/properties
	ListProperties(c *gin.Context)
	// GET /api/v1/properties/:property_id
	GetProperty(c *gin.Context)
	// PATCH /api/v1/properties/:property_id
	UpdateProperty(c *gin.Context)
	// DELETE /api/v1/properties/:property_id
	DeleteProperty(c *gin.Context)

	// GET /api/v1/properties/:property_id/competitors
	ListCompetitors(c *gin.Context)
	// POST /api/v1/properties/:property_id/competitors
	AddCompetitor(c *gin.Context)
	// PATCH /api/v1/properties/:property_id/competitors/:competitor_id
	UpdateCompetitor(c *gin.Context)
	// DELETE /api/v1/properties/:property_id/competitors/:competitor_id
	RemoveCompetitor(c *gin.Context)
	// GET /api/v1/properties/:property_id/competitors/search?q=<query>&limit=<limit>
	SearchHotels(c *gin.Context)
	// GET /api/v1/properties/:property_id/competitors/nearby?radius_km=<km>&limit=<limit>
	NearbyHotels(c *gin.Context)
	// GetCompetitorPrices accepts exactly one of date, from+to or week
	// GET /api/v1/properties/:property_id/competitor-prices?date=<date>|from=<date>&to=<date>|week=<YYYY-Www>
	GetCompetitorPrices(c *gin.Context)

	GetGeneralSettings(c *gin.Context)
	SaveGeneralSettings(c *gin.Context)

	ListIncrements(c *gin.Context)
	UpsertIncrements(c *gin.Context)
	ResetIncrements(c *gin.Context)

	ListMSPs(c *gin.Context)
	CreateMSP(c *gin.Context)
	UpdateMSP(c *gin.Context)
	DeleteMSP(c *gin.Context)

	ListOffers(c *gin.Context)
	CreateOffer(c *gin.Context)
	UpdateOffer(c *gin.Context)
	DeleteOffer(c *gin.Context)

	ListLosSetups(c *gin.Context)
	CreateLosSetup(c *gin.Context)
	UpdateLosSetup(c *gin.Context)
	DeleteLosSetup(c *gin.Context)

	ListLosReductions(c *gin.Context)
	UpsertLosReductions(c *gin.Context)
	DeleteLosReduction(c *gin.Context)

	ListRoomRates(c *gin.Context)
	CreateRoomRate(c *gin.Context)
	UpdateRoomRate(c *gin.Context)
	DeleteRoomRate(c *gin.Context)

	// GetPrices returns the price state per date
	// GET /api/v1/properties/:property_id/prices?from=<date>&to=<date>
	GetPrices(c *gin.Context)
	// GET /api/v1/properties/:property_id/prices/:date/history?limit=<limit>
	GetPriceHistory(c *gin.Context)
	// POST /api/v1/properties/:property_id/prices/overwrites
	CreateOverwrite(c *gin.Context)
	// DELETE /api/v1/properties/:property_id/prices/overwrites/:date
	ClearOverwrite(c *gin.Context)
	// POST /api/v1/properties/:property_id/prices/recalculate?days=<days>
	RecalculatePrices(c *gin.Context)

	// GET /api/v1/notifications?unread_only=<bool>&limit=<limit>&offset=<offset>
	ListNotifications(c *gin.Context)
	// GET /api/v1/notifications/count
	CountNotifications(c *gin.Context)
	// PATCH /api/v1/notifications/:id/read
	MarkNotificationRead(c *gin.Context)
	// POST /api/v1/notifications/read-all
	MarkAllNotificationsRead(c *gin.Context)

	// CreateCheckoutSession starts a Stripe Checkout subscription
	// POST /api/v1/billing/checkout-session
	CreateCheckoutSession(c *gin.Context)

	// StripeWebhook receives Stripe events (signature verified, no auth)
	// POST /api/v1/billing/stripe/webhook
	StripeWebhook(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// CookieConfig controls the auth cookies set by the handler
type CookieConfig struct {
	RefreshName string
	CSRFName    string
	Domain      string
	Secure      bool
	RefreshTTL  time.Duration
}

// handler implements the Handler interface
type handler struct {
	debug    bool
	executor executor.Executor
	cookies  CookieConfig
}

// NewHandler creates a new REST API handler using the shared executor
func NewHandler(debug bool, exec executor.Executor, cookies CookieConfig) Handler {
	if cookies.RefreshName == "" {
		cookies.RefreshName = "refresh_token"
	}
	if cookies.CSRFName == "" {
		cookies.CSRFName = "csrftoken"
	}
	return &handler{
		debug:    debug,
		executor: exec,
		cookies:  cookies,
	}
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "dynamic-pricing-api",
	})
}
