package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	apierrors "github.com/pricepilot/dynamic-pricing/internal/api/shared/errors"
	"github.com/pricepilot/dynamic-pricing/internal/logger"
)

const REQUEST_ID_HEADER = "X-Request-ID"

// Logger returns a gin middleware for structured logging using zap. Each
// request gets a ULID request id that is echoed in the response headers and
// attached to the request context logger.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		requestID := ulid.Make().String()
		c.Header(REQUEST_ID_HEADER, requestID)
		ctx := logger.WithFields(c.Request.Context(),
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
		)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		logger.InfoCtx(c.Request.Context(), "API request",
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		)
	}
}

// Recovery returns a gin middleware for panic recovery with logging
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.ErrorCtx(c.Request.Context(), fmt.Errorf("panic recovered: %v", err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierrors.NewInternalError())
			}
		}()
		c.Next()
	}
}
