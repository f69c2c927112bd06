package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pricepilot/dynamic-pricing/internal/api/shared/dto"
	"github.com/pricepilot/dynamic-pricing/internal/api/shared/executor"
	"github.com/pricepilot/dynamic-pricing/internal/auth"
	"github.com/pricepilot/dynamic-pricing/internal/domain"
)

const (
	refreshCookiePath = "/api/v1/auth"
	csrfCookieMaxAge  = 365 * 24 * time.Hour
)

// GetCSRFToken issues a CSRF cookie readable by the dashboard
func (h *handler) GetCSRFToken(c *gin.Context) {
	token, err := auth.NewOpaqueToken()
	if err != nil {
		respondError(c, err)
		return
	}

	h.setCookie(c, &http.Cookie{
		Name:     h.cookies.CSRFName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(csrfCookieMaxAge.Seconds()),
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
	c.JSON(http.StatusOK, dto.CSRFResponse{Success: true, CSRFToken: token})
}

// Register creates a profile and starts a session
func (h *handler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	session, err := h.executor.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setRefreshCookie(c, session)
	c.JSON(http.StatusCreated, session.Login)
}

// Login starts a session
func (h *handler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	session, err := h.executor.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setRefreshCookie(c, session)
	c.JSON(http.StatusOK, session.Login)
}

// Refresh rotates the refresh cookie; the CSRF middleware runs first
func (h *handler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(h.cookies.RefreshName)
	if err != nil || refreshToken == "" {
		respondError(c, domain.ErrInvalidRefreshToken)
		return
	}

	session, err := h.executor.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		h.clearRefreshCookie(c)
		respondError(c, err)
		return
	}

	h.setRefreshCookie(c, session)
	c.JSON(http.StatusOK, session.Login)
}

// Logout revokes the refresh cookie. A missing cookie still succeeds.
func (h *handler) Logout(c *gin.Context) {
	if refreshToken, err := c.Cookie(h.cookies.RefreshName); err == nil && refreshToken != "" {
		if err := h.executor.Logout(c.Request.Context(), refreshToken); err != nil {
			respondError(c, err)
			return
		}
	}

	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

// Me returns the authenticated profile
func (h *handler) Me(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}

	profile, err := h.executor.Me(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *handler) setRefreshCookie(c *gin.Context, session *executor.Session) {
	maxAge := int(time.Until(session.RefreshExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = int(h.cookies.RefreshTTL.Seconds())
	}
	h.setCookie(c, &http.Cookie{
		Name:     h.cookies.RefreshName,
		Value:    session.RefreshToken,
		Path:     refreshCookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *handler) clearRefreshCookie(c *gin.Context) {
	h.setCookie(c, &http.Cookie{
		Name:     h.cookies.RefreshName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *handler) setCookie(c *gin.Context, cookie *http.Cookie) {
	cookie.Domain = h.cookies.Domain
	cookie.Secure = h.cookies.Secure
	http.SetCookie(c.Writer, cookie)
}
