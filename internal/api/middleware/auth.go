package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pricepilot/dynamic-pricing/internal/api/shared/constants"
	apierrors "github.com/pricepilot/dynamic-pricing/internal/api/shared/errors"
	"github.com/pricepilot/dynamic-pricing/internal/auth"
	"github.com/pricepilot/dynamic-pricing/internal/domain"
	"github.com/pricepilot/dynamic-pricing/internal/logger"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	PROFILE_ID_KEY contextKey = "profile_id"
	JWT_CLAIMS_KEY contextKey = "jwt_claims"
)

// TokenValidator validates access tokens
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// Auth returns a gin middleware that requires a valid bearer access token.
// Expired tokens answer TOKEN_EXPIRED so the dashboard knows to refresh.
func Auth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authenticate(c.GetHeader("Authorization"), tokens)
		if err != nil {
			logger.WarnCtx(c.Request.Context(), "Authentication failed",
				zap.Error(err),
				zap.String("client_ip", c.ClientIP()),
			)
			code := apierrors.ErrCodeUnauthorized
			message := "Authentication credentials were not provided or are invalid."
			if errors.Is(err, domain.ErrTokenExpired) {
				code = apierrors.ErrCodeTokenExpired
				message = "Access token has expired."
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierrors.NewUnauthorizedError(code, message))
			return
		}

		profileID, err := claims.ProfileID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierrors.NewUnauthorizedError(apierrors.ErrCodeUnauthorized, "Invalid token subject."))
			return
		}

		c.Set(string(JWT_CLAIMS_KEY), claims)
		c.Set(string(PROFILE_ID_KEY), profileID)
		c.Request = c.Request.WithContext(logger.WithFields(c.Request.Context(), zap.String("profile_id", profileID.String())))

		c.Next()
	}
}

func authenticate(header string, tokens TokenValidator) (*auth.Claims, error) {
	if header == "" {
		return nil, errors.New("missing Authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return nil, errors.New("invalid Authorization header format")
	}
	return tokens.Validate(parts[1])
}

// CSRF rejects requests whose X-CSRFToken header does not match the CSRF cookie
func CSRF(cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := c.Cookie(cookieName)
		if !auth.CSRFMatches(cookie, c.GetHeader(constants.CSRF_HEADER)) {
			logger.WarnCtx(c.Request.Context(), "CSRF check failed", zap.String("client_ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusForbidden, apierrors.NewForbiddenError(apierrors.ErrCodeCSRFFailed, "CSRF token missing or incorrect."))
			return
		}
		c.Next()
	}
}

// ProfileID returns the authenticated profile id set by Auth
func ProfileID(c *gin.Context) (uuid.UUID, bool) {
	value, ok := c.Get(string(PROFILE_ID_KEY))
	if !ok {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}
