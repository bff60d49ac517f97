package domain

import "time"

// RouteLeg is one segment of a candidate route geometry as returned by
// the directions provider
type RouteLeg struct {
	Start           Coordinate `json:"start"`
	DurationSeconds float64    `json:"duration_seconds"`
}

// CandidateRoute is an unscored route alternative from the directions provider
type CandidateRoute struct {
	Legs    []RouteLeg `json:"legs"`
	Summary string     `json:"summary,omitempty"`
}

// RoutePoint is one safety-scored waypoint of an optimized route.
// Timestamp is the projected arrival time at the point.
type RoutePoint struct {
	Coordinate
	SafetyScore   float64   `json:"safety_score"`
	Timestamp     time.Time `json:"timestamp"`
	TravelMinutes float64   `json:"estimated_time"`
}

// OptimizedRoute is the result of safety-aware route planning.
// Instances are immutable once constructed; re-planning supersedes
// rather than mutates.
type OptimizedRoute struct {
	Points           []RoutePoint `json:"waypoints"`
	TotalSafetyScore float64      `json:"total_safety_score"`
	TotalTravelTime  float64      `json:"total_travel_time"`
	RouteConfidence  float64      `json:"route_confidence"`
}

// Coordinates returns the ordered waypoint coordinates of the route
func (r OptimizedRoute) Coordinates() []Coordinate {
	coords := make([]Coordinate, len(r.Points))
	for i, p := range r.Points {
		coords[i] = p.Coordinate
	}
	return coords
}

// Safety trend labels for the remaining portion of a route
const (
	TrendImproving     = "improving"
	TrendDeteriorating = "deteriorating"
	TrendStable        = "stable"
)

// SafetyUpdate is a live assessment of the traveler's position against
// the planned route
type SafetyUpdate struct {
	CurrentSafetyScore float64  `json:"current_safety_score"`
	PlannedSafetyScore float64  `json:"planned_safety_score"`
	SafetyTrend        string   `json:"safety_trend"`
	DistanceFromRouteM float64  `json:"distance_from_route"`
	Recommendations    []string `json:"recommendations"`
}

// PlannedRoute wraps an optimized route with its session-facing metadata
type PlannedRoute struct {
	RouteID         string         `json:"route_id"`
	UserID          string         `json:"user_id"`
	Route           OptimizedRoute `json:"route"`
	StartTime       time.Time      `json:"start_time"`
	Recommendations []string       `json:"safety_recommendations"`
}

// RouteResponse wraps route data with metadata
type RouteResponse struct {
	Data    PlannedRoute `json:"data"`
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
}
