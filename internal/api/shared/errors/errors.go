package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pricepilot/dynamic-pricing/internal/domain"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	ErrCodeValidation            ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidDateRange      ErrorCode = "INVALID_DATE_RANGE"
	ErrCodeInvalidCredentials    ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeEmailAlreadyExists    ErrorCode = "EMAIL_ALREADY_EXISTS"
	ErrCodePropertyNotFound      ErrorCode = "PROPERTY_NOT_FOUND"
	ErrCodeCompetitorNotFound    ErrorCode = "COMPETITOR_NOT_FOUND"
	ErrCodeRuleNotFound          ErrorCode = "RULE_NOT_FOUND"
	ErrCodeNotificationNotFound  ErrorCode = "NOTIFICATION_NOT_FOUND"
	ErrCodeOnboardingCompleted   ErrorCode = "ONBOARDING_COMPLETED"
	ErrCodeUnauthorized          ErrorCode = "UNAUTHORIZED"
	ErrCodeTokenExpired          ErrorCode = "TOKEN_EXPIRED"
	ErrCodeCSRFFailed            ErrorCode = "CSRF_FAILED"
	ErrCodeInvalidSignature      ErrorCode = "INVALID_SIGNATURE"
	ErrCodeNotFound              ErrorCode = "NOT_FOUND"

	// Server errors (5xx)
	ErrCodeUpstreamTimeout     ErrorCode = "UPSTREAM_TIMEOUT"
	ErrCodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// FieldError describes one problem with a request
type FieldError struct {
	Field        string    `json:"field"`
	Code         ErrorCode `json:"code"`
	DebugMessage string    `json:"debug_message"`
}

// APIError is the error envelope returned by every endpoint
type APIError struct {
	Status  int          `json:"-"`
	Success bool         `json:"success"`
	Summary string       `json:"error"`
	Errors  []FieldError `json:"errors"`
}

func (e *APIError) Error() string {
	jsonErr, _ := json.Marshal(e)
	return string(jsonErr)
}

// Code returns the code of the first field error
func (e *APIError) Code() ErrorCode {
	if len(e.Errors) == 0 {
		return ErrCodeInternal
	}
	return e.Errors[0].Code
}

// New builds a single-error APIError
func New(status int, code ErrorCode, field, message string) *APIError {
	return &APIError{
		Status:  status,
		Summary: message,
		Errors:  []FieldError{{Field: field, Code: code, DebugMessage: message}},
	}
}

func NewValidationError(field, message string) *APIError {
	return New(http.StatusBadRequest, ErrCodeValidation, field, message)
}

func NewInvalidDateRangeError(field string) *APIError {
	return New(http.StatusBadRequest, ErrCodeInvalidDateRange, field, domain.ErrInvalidDateRange.Error())
}

func NewUnauthorizedError(code ErrorCode, message string) *APIError {
	return New(http.StatusUnauthorized, code, "", message)
}

func NewForbiddenError(code ErrorCode, message string) *APIError {
	return New(http.StatusForbidden, code, "", message)
}

func NewNotFoundError(code ErrorCode, message string) *APIError {
	return New(http.StatusNotFound, code, "", message)
}

func NewInternalError() *APIError {
	return New(http.StatusInternalServerError, ErrCodeInternal, "", "Internal server error")
}

// sentinels maps domain errors to their API form
var sentinels = []struct {
	err    error
	status int
	code   ErrorCode
	field  string
}{
	{domain.ErrInvalidDateRange, http.StatusBadRequest, ErrCodeInvalidDateRange, "valid_until"},
	{domain.ErrInvalidDate, http.StatusBadRequest, ErrCodeValidation, "date"},
	{domain.ErrEmailAlreadyExists, http.StatusBadRequest, ErrCodeEmailAlreadyExists, "email"},
	{domain.ErrDuplicateRule, http.StatusBadRequest, ErrCodeValidation, ""},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeInvalidCredentials, ""},
	{domain.ErrInvalidRefreshToken, http.StatusUnauthorized, ErrCodeUnauthorized, ""},
	{domain.ErrTokenExpired, http.StatusUnauthorized, ErrCodeTokenExpired, ""},
	{domain.ErrInvalidToken, http.StatusUnauthorized, ErrCodeUnauthorized, ""},
	{domain.ErrProfileNotFound, http.StatusUnauthorized, ErrCodeUnauthorized, ""},
	{domain.ErrPropertyNotFound, http.StatusNotFound, ErrCodePropertyNotFound, ""},
	{domain.ErrCompetitorNotFound, http.StatusNotFound, ErrCodeCompetitorNotFound, ""},
	{domain.ErrRuleNotFound, http.StatusNotFound, ErrCodeRuleNotFound, ""},
	{domain.ErrNotificationNotFound, http.StatusNotFound, ErrCodeNotificationNotFound, ""},
	{domain.ErrOnboardingCompleted, http.StatusConflict, ErrCodeOnboardingCompleted, ""},
	{domain.ErrInvalidSignature, http.StatusBadRequest, ErrCodeInvalidSignature, ""},
	{domain.ErrUpstreamTimeout, http.StatusGatewayTimeout, ErrCodeUpstreamTimeout, ""},
	{domain.ErrUpstreamUnavailable, http.StatusServiceUnavailable, ErrCodeUpstreamUnavailable, ""},
	{domain.ErrNotConfigured, http.StatusServiceUnavailable, ErrCodeUpstreamUnavailable, ""},
}

// FromDomain converts a known error into an APIError. It returns nil for
// errors that were not anticipated; callers log those and answer 500.
func FromDomain(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	var validationErrs validator.ValidationErrors
	if stderrors.As(err, &validationErrs) {
		return FromValidation(validationErrs)
	}

	var syntaxErr *json.SyntaxError
	if stderrors.As(err, &syntaxErr) {
		return NewValidationError("", "Malformed JSON body")
	}
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		return NewValidationError(typeErr.Field, fmt.Sprintf("expected %s", typeErr.Type.String()))
	}

	for _, s := range sentinels {
		if stderrors.Is(err, s.err) {
			return New(s.status, s.code, s.field, err.Error())
		}
	}
	return nil
}

// FromValidation converts validator errors into one FieldError per field
func FromValidation(errs validator.ValidationErrors) *APIError {
	apiErr := &APIError{Status: http.StatusBadRequest, Summary: "Validation failed"}
	for _, fe := range errs {
		apiErr.Errors = append(apiErr.Errors, FieldError{
			Field:        fieldPath(fe),
			Code:         ErrCodeValidation,
			DebugMessage: describe(fe),
		})
	}
	return apiErr
}

// fieldPath drops the root struct name from the namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Must be at least %s.", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s.", fe.Param())
	case "len":
		return fmt.Sprintf("Must be exactly %s characters.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", fe.Param())
	case "date":
		return "Use the YYYY-MM-DD format."
	case "isoweek":
		return "Use the YYYY-Www format."
	default:
		return fmt.Sprintf("Failed the %q check.", fe.Tag())
	}
}
