package pricing

import "github.com/bradfitz/latlong"

// TimezoneFor returns the IANA zone at the given coordinates, or UTC when
// coordinates are missing or fall outside every zone
func TimezoneFor(lat, lng *float64) string {
	if lat == nil || lng == nil {
		return "UTC"
	}
	if zone := latlong.LookupZoneName(*lat, *lng); zone != "" {
		return zone
	}
	return "UTC"
}
