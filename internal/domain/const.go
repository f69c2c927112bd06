package domain

const (
	// Competitor price filtering
	NOT_PARSABLE_HOTEL_NAME = "NOT PARSABLE"
	MIN_MAX_PERSONS         = 0
	MAX_MAX_PERSONS         = 2

	// MAX_PRICE_RANGE_DAYS caps date-range queries on competitor prices
	MAX_PRICE_RANGE_DAYS = 62

	// MAX_LOS_NIGHTS caps the LOS price map
	MAX_LOS_NIGHTS = 14

	// PRICE_SCALE is the number of decimals recommended prices are rounded to
	PRICE_SCALE = 2
)
