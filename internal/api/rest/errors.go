package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pricepilot/dynamic-pricing/internal/api/middleware"
	apierrors "github.com/pricepilot/dynamic-pricing/internal/api/shared/errors"
	"github.com/pricepilot/dynamic-pricing/internal/logger"
)

// respondError writes the API form of err. Unanticipated errors are logged
// and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	if apiErr := apierrors.FromDomain(err); apiErr != nil {
		c.JSON(apiErr.Status, apiErr)
		return
	}

	logger.ErrorCtx(c.Request.Context(), err, zap.String("path", c.FullPath()))
	c.JSON(http.StatusInternalServerError, apierrors.NewInternalError())
}

// respondBindError answers a request whose body or query could not be bound
func (h *handler) respondBindError(c *gin.Context, err error) {
	if apiErr := apierrors.FromDomain(err); apiErr != nil {
		c.JSON(apiErr.Status, apiErr)
		return
	}
	apiErr := apierrors.NewValidationError("", "Malformed request")
	if h.debug {
		apiErr.Errors[0].DebugMessage = err.Error()
	}
	c.JSON(apiErr.Status, apiErr)
}

// bindJSON binds the request body, answering 400 on failure
func (h *handler) bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.respondBindError(c, err)
		return false
	}
	return true
}

// bindQuery binds the query string, answering 400 on failure
func (h *handler) bindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.respondBindError(c, err)
		return false
	}
	return true
}

// validate runs a request's own checks after binding
func validate(c *gin.Context, check func() error) bool {
	if err := check(); err != nil {
		respondError(c, err)
		return false
	}
	return true
}

// profileID returns the authenticated profile or answers 401
func profileID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.ProfileID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apierrors.NewUnauthorizedError(apierrors.ErrCodeUnauthorized, "Authentication credentials were not provided."))
		return uuid.Nil, false
	}
	return id, true
}

// uuidParam parses a uuid path parameter. Malformed ids answer 404 with the
// given code since they cannot name an existing row.
func uuidParam(c *gin.Context, name string, notFound apierrors.ErrorCode) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusNotFound, apierrors.NewNotFoundError(notFound, "Not found."))
		return uuid.Nil, false
	}
	return id, true
}
