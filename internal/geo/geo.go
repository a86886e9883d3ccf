package geo

import (
	"fmt"
	"math"
)

const (
	earthRadiusMeters = 6371000
	// metersPerDegree is the planar scaling used by the live geofence check.
	metersPerDegree = 111000
)

// HaversineMeters returns the great-circle distance between two coordinates.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// PlanarApproxMeters is the cheap degree-delta distance used at check-in/out
// time. It is intentionally less accurate than HaversineMeters and the two
// are not interchangeable: the geofence decision is defined on this one.
func PlanarApproxMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * metersPerDegree
	dLon := (lon2 - lon1) * metersPerDegree
	return math.Sqrt(dLat*dLat + dLon*dLon)
}

// FormatDistance renders meters below 1000 as whole meters and anything
// larger as kilometers with one decimal.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f meters", meters)
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
