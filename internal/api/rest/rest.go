package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/pricepilot/dynamic-pricing/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, tokens middleware.TokenValidator, csrfCookieName string) {
	RegisterValidators()

	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	requireAuth := middleware.Auth(tokens)
	requireCSRF := middleware.CSRF(csrfCookieName)

	// Auth endpoints. Refresh and logout are authenticated by cookie, so
	// they need the CSRF double submit instead of a bearer token.
	authGroup := v1.Group("/auth")
	{
		authGroup.GET("/csrf", handler.GetCSRFToken)
		authGroup.POST("/register", handler.Register)
		authGroup.POST("/login", handler.Login)
		authGroup.POST("/refresh", requireCSRF, handler.Refresh)
		authGroup.POST("/logout", requireCSRF, handler.Logout)
		authGroup.GET("/me", requireAuth, handler.Me)
	}

	onboarding := v1.Group("/onboarding", requireAuth)
	{
		onboarding.POST("/property", handler.SaveOnboardingProperty)
		onboarding.POST("/complete", handler.CompleteOnboarding)
	}

	v1.GET("/properties", requireAuth, handler.ListProperties)
	property := v1.Group("/properties/:property_id", requireAuth)
	{
		property.GET("", handler.GetProperty)
		property.PATCH("", handler.UpdateProperty)
		property.DELETE("", handler.DeleteProperty)

		// Competitors
		property.GET("/competitors", handler.ListCompetitors)
		property.POST("/competitors", handler.AddCompetitor)
		property.GET("/competitors/search", handler.SearchHotels)
		property.GET("/competitors/nearby", handler.NearbyHotels)
		property.PATCH("/competitors/:competitor_id", handler.UpdateCompetitor)
		property.DELETE("/competitors/:competitor_id", handler.RemoveCompetitor)
		property.GET("/competitor-prices", handler.GetCompetitorPrices)

		// Settings and rule tables
		property.GET("/general-settings", handler.GetGeneralSettings)
		property.PUT("/general-settings", handler.SaveGeneralSettings)

		property.GET("/dynamic-increments", handler.ListIncrements)
		property.PUT("/dynamic-increments", handler.UpsertIncrements)
		property.POST("/dynamic-increments/reset", handler.ResetIncrements)

		property.GET("/minimum-selling-prices", handler.ListMSPs)
		property.POST("/minimum-selling-prices", handler.CreateMSP)
		property.PATCH("/minimum-selling-prices/:id", handler.UpdateMSP)
		property.DELETE("/minimum-selling-prices/:id", handler.DeleteMSP)

		property.GET("/offer-increments", handler.ListOffers)
		property.POST("/offer-increments", handler.CreateOffer)
		property.PATCH("/offer-increments/:id", handler.UpdateOffer)
		property.DELETE("/offer-increments/:id", handler.DeleteOffer)

		property.GET("/los-setups", handler.ListLosSetups)
		property.POST("/los-setups", handler.CreateLosSetup)
		property.PATCH("/los-setups/:id", handler.UpdateLosSetup)
		property.DELETE("/los-setups/:id", handler.DeleteLosSetup)

		property.GET("/los-reductions", handler.ListLosReductions)
		property.PUT("/los-reductions", handler.UpsertLosReductions)
		property.DELETE("/los-reductions/:id", handler.DeleteLosReduction)

		property.GET("/room-rates", handler.ListRoomRates)
		property.POST("/room-rates", handler.CreateRoomRate)
		property.PATCH("/room-rates/:id", handler.UpdateRoomRate)
		property.DELETE("/room-rates/:id", handler.DeleteRoomRate)

		// Prices
		property.GET("/prices", handler.GetPrices)
		property.GET("/prices/:date/history", handler.GetPriceHistory)
		property.POST("/prices/overwrites", handler.CreateOverwrite)
		property.DELETE("/prices/overwrites/:date", handler.ClearOverwrite)
		property.POST("/prices/recalculate", handler.RecalculatePrices)
	}

	notifications := v1.Group("/notifications", requireAuth)
	{
		notifications.GET("", handler.ListNotifications)
		notifications.GET("/count", handler.CountNotifications)
		notifications.PATCH("/:id/read", handler.MarkNotificationRead)
		notifications.POST("/read-all", handler.MarkAllNotificationsRead)
	}

	billing := v1.Group("/billing")
	{
		billing.POST("/checkout-session", requireAuth, handler.CreateCheckoutSession)
		// Stripe authenticates with the signature header
		billing.POST("/stripe/webhook", handler.StripeWebhook)
	}
}
