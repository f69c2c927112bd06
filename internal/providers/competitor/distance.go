package competitor

import (
	"sort"

	"github.com/umahmood/haversine"
)

// NearbyHotel is a hotel with its distance from a property
type NearbyHotel struct {
	Hotel
	DistanceKm float64
}

// DistanceKm returns the great-circle distance between two points
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	_, km := haversine.Distance(
		haversine.Coord{Lat: lat1, Lon: lng1},
		haversine.Coord{Lat: lat2, Lon: lng2},
	)
	return km
}

// SortByDistance drops hotels without coordinates or farther than radiusKm
// and orders the rest nearest first
func SortByDistance(latitude, longitude, radiusKm float64, hotels []Hotel) []NearbyHotel {
	nearby := make([]NearbyHotel, 0, len(hotels))
	for _, h := range hotels {
		if h.Latitude == nil || h.Longitude == nil {
			continue
		}
		d := DistanceKm(latitude, longitude, *h.Latitude, *h.Longitude)
		if radiusKm > 0 && d > radiusKm {
			continue
		}
		nearby = append(nearby, NearbyHotel{Hotel: h, DistanceKm: d})
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})
	return nearby
}
