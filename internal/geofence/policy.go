package geofence

import (
	"shiftmark/internal/geo"
	"shiftmark/internal/model"
)

type Verdict int

const (
	// Allowed: within the radius, submit without operator involvement.
	Allowed Verdict = iota
	// Warn: outside the radius; the operator must force-mark or cancel.
	Warn
	// Skipped: no station or no registered coordinates, distance check waived.
	Skipped
)

// Decision is the outcome of one geofence check. DistanceMeters and
// StationName are set for Warn; Reason is set for Skipped.
type Decision struct {
	Verdict        Verdict
	DistanceMeters float64
	StationName    string
	Reason         string
}

// DistanceLabel is the operator-facing rendering of the warn distance.
func (d Decision) DistanceLabel() string {
	return geo.FormatDistance(d.DistanceMeters)
}

// Policy validates physical presence against a station's registered
// coordinates. The default radius is 100 meters; the boundary is inclusive.
type Policy struct {
	RadiusMeters float64
}

func New(radiusMeters float64) *Policy {
	if radiusMeters <= 0 {
		radiusMeters = 100
	}
	return &Policy{RadiusMeters: radiusMeters}
}

// Check computes the planar-approximation distance from current to the
// station. The live check deliberately uses the cheap planar figure, not
// haversine.
func (p *Policy) Check(current model.Coordinates, stationID int, stations []model.Station) Decision {
	if stationID == 0 {
		return Decision{Verdict: Skipped, Reason: "no station on shift"}
	}

	var station *model.Station
	for i := range stations {
		if stations[i].ID == stationID {
			station = &stations[i]
			break
		}
	}
	if station == nil {
		return Decision{Verdict: Skipped, Reason: "station not in reference list"}
	}
	if station.Latitude == nil || station.Longitude == nil {
		return Decision{Verdict: Skipped, Reason: "station has no registered coordinates"}
	}

	dist := geo.PlanarApproxMeters(current.Latitude, current.Longitude, *station.Latitude, *station.Longitude)
	if dist > p.RadiusMeters {
		return Decision{Verdict: Warn, DistanceMeters: dist, StationName: station.Name}
	}
	return Decision{Verdict: Allowed, DistanceMeters: dist, StationName: station.Name}
}
