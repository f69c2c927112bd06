package domain

import "errors"

var (
	// ErrInvalidDateRange is returned when valid_from is after valid_until
	ErrInvalidDateRange = errors.New("valid_from must not be after valid_until")

	// ErrInvalidDate is returned when a date cannot be parsed
	ErrInvalidDate = errors.New("invalid date")

	// ErrEmailAlreadyExists is returned when registering an email that is taken
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned when login fails
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrProfileNotFound is returned when a profile does not exist or is inactive
	ErrProfileNotFound = errors.New("profile not found")

	// ErrPropertyNotFound is returned when a property does not exist or is not visible to the caller
	ErrPropertyNotFound = errors.New("property not found")

	// ErrCompetitorNotFound is returned when a competitor link does not exist
	ErrCompetitorNotFound = errors.New("competitor not found")

	// ErrRuleNotFound is returned when a pricing rule row does not exist
	ErrRuleNotFound = errors.New("rule not found")

	// ErrNotificationNotFound is returned when a notification does not exist
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrDuplicateRule is returned when a rule violates a uniqueness constraint
	ErrDuplicateRule = errors.New("rule already exists")

	// ErrOnboardingCompleted is returned when onboarding endpoints are called after completion
	ErrOnboardingCompleted = errors.New("onboarding already completed")

	// ErrInvalidRefreshToken is returned when a refresh token is unknown, revoked or expired
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrTokenExpired is returned when an access token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidToken is returned when an access token fails validation
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidSignature is returned when a webhook signature does not verify
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrUpstreamTimeout is returned when a third-party call times out
	ErrUpstreamTimeout = errors.New("upstream service timed out")

	// ErrUpstreamUnavailable is returned when a third-party call fails
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// ErrNotConfigured is returned when an optional integration has no credentials
	ErrNotConfigured = errors.New("integration not configured")
)
