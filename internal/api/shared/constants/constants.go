package constants

const (
	DEFAULT_NOTIFICATIONS_LIMIT = 20
	MAX_PAGE_SIZE               = 100
	DEFAULT_HISTORY_LIMIT       = 50
	DEFAULT_SEARCH_LIMIT        = 10
	MAX_SEARCH_LIMIT            = 50
	DEFAULT_NEARBY_RADIUS_KM    = 5.0
	MAX_NEARBY_RADIUS_KM        = 50.0
	DEFAULT_PRICES_DAYS         = 30
	MAX_RECALCULATE_DAYS        = 730

	CSRF_HEADER = "X-CSRFToken"
)
