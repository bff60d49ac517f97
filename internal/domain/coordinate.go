package domain

import "time"

// Coordinate represents a WGS84 geographic point
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LocationSample is a single point of live location telemetry.
// Samples are never mutated after creation.
type LocationSample struct {
	Coordinate
	Timestamp time.Time `json:"timestamp"`
	Speed     float64   `json:"speed_kmh"`
	Accuracy  float64   `json:"accuracy_m"`
}

// Zone classification thresholds and radius parameters
const (
	ZoneSafe     = "safe"
	ZoneModerate = "moderate"
	ZoneHighRisk = "high_risk"

	SafeScoreThreshold     = 70.0
	ModerateScoreThreshold = 40.0

	ZoneBaseRadiusMeters = 50.0
	ZoneRadiusSpanMeters = 100.0
)

// SafetyZone is a circular zone derived from one planned-route waypoint.
// Zones are created once when a route is set and immutable afterward.
type SafetyZone struct {
	Center      Coordinate `json:"center"`
	RadiusM     float64    `json:"radius_m"`
	SafetyScore float64    `json:"safety_score"`
	ZoneType    string     `json:"zone_type"`
}

// NewSafetyZone derives a zone from a waypoint and its safety score.
// Safer waypoints get larger zones, high-risk waypoints smaller ones.
func NewSafetyZone(center Coordinate, score float64) SafetyZone {
	return SafetyZone{
		Center:      center,
		RadiusM:     ZoneBaseRadiusMeters + (score/100)*ZoneRadiusSpanMeters,
		SafetyScore: score,
		ZoneType:    ClassifyZone(score),
	}
}

// ClassifyZone maps a safety score to a zone category
func ClassifyZone(score float64) string {
	switch {
	case score >= SafeScoreThreshold:
		return ZoneSafe
	case score >= ModerateScoreThreshold:
		return ZoneModerate
	default:
		return ZoneHighRisk
	}
}
