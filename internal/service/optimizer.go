package service

import (
	"context"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/saferoute/backend/internal/domain"
	"github.com/saferoute/backend/pkg/utils"
)

// Route selection and trend parameters
const (
	defaultMaxAlternatives = 3

	// composite score weights: safety dominates, travel time breaks the rest
	safetyWeight = 0.7
	timeWeight   = 0.3

	// travel times at or beyond this ceiling contribute nothing
	timeCeilingMinutes = 60.0

	// remaining-route mean must differ from the current score by more
	// than this band to count as a trend
	trendBand = 10.0

	fallbackTravelMinutes = 30.0
)

// RouteOptimizer scores candidate route geometries with the safety
// predictor and selects the best alternative
type RouteOptimizer struct {
	predictor       SafetyPredictor
	directions      DirectionsProvider
	maxAlternatives int
}

// NewRouteOptimizer creates a new route optimizer
func NewRouteOptimizer(predictor SafetyPredictor, directions DirectionsProvider) *RouteOptimizer {
	return &RouteOptimizer{
		predictor:       predictor,
		directions:      directions,
		maxAlternatives: defaultMaxAlternatives,
	}
}

// PlanRoute produces an optimized route between start and end. It never
// fails: when the directions provider yields nothing a straight-line
// fallback route is synthesized.
func (o *RouteOptimizer) PlanRoute(ctx context.Context, start, end domain.Coordinate, departure time.Time) domain.OptimizedRoute {
	if departure.IsZero() {
		departure = time.Now()
	}

	var candidates []domain.CandidateRoute
	if o.directions != nil {
		fetched, err := o.directions.Alternatives(ctx, start, end, o.maxAlternatives)
		if err == nil {
			candidates = fetched
		}
	}
	if len(candidates) == 0 {
		return o.fallbackRoute(start, end, departure)
	}

	// Score alternatives concurrently; each goroutine owns its slot
	scored := make([]domain.OptimizedRoute, len(candidates))
	var wg sync.WaitGroup
	for i, candidate := range candidates {
		wg.Add(1)
		go func(i int, candidate domain.CandidateRoute) {
			defer wg.Done()
			scored[i] = o.scoreCandidate(ctx, candidate, departure)
		}(i, candidate)
	}
	wg.Wait()

	return o.selectBest(scored)
}

// scoreCandidate walks a candidate's legs in travel order, accumulating
// a running clock and querying the predictor at each leg start
func (o *RouteOptimizer) scoreCandidate(ctx context.Context, candidate domain.CandidateRoute, departure time.Time) domain.OptimizedRoute {
	points := make([]domain.RoutePoint, 0, len(candidate.Legs))
	clock := departure
	var totalScore, totalMinutes float64

	for _, leg := range candidate.Legs {
		score := predictScore(ctx, o.predictor, leg.Start, clock)
		minutes := leg.DurationSeconds / 60

		points = append(points, domain.RoutePoint{
			Coordinate:    leg.Start,
			SafetyScore:   score,
			Timestamp:     clock,
			TravelMinutes: minutes,
		})

		totalScore += score
		totalMinutes += minutes
		clock = clock.Add(time.Duration(leg.DurationSeconds * float64(time.Second)))
	}

	return domain.OptimizedRoute{
		Points:           points,
		TotalSafetyScore: totalScore,
		TotalTravelTime:  totalMinutes,
		RouteConfidence:  routeConfidence(points),
	}
}

// routeConfidence expresses trust in a route's safety estimate. Routes
// with uniformly high scores rate above routes whose average is high
// but whose segments are volatile.
func routeConfidence(points []domain.RoutePoint) float64 {
	if len(points) == 0 {
		return 0
	}

	scores := make([]float64, len(points))
	for i, p := range points {
		scores[i] = p.SafetyScore
	}

	mean := stat.Mean(scores, nil)
	sigma := stat.PopStdDev(scores, nil)

	consistency := 1 - sigma/50
	if consistency < 0 {
		consistency = 0
	}
	scoreFactor := mean / 100

	confidence := (consistency + scoreFactor) / 2
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}

// selectBest ranks scored alternatives by composite score. Ties keep
// the earliest candidate in input order.
func (o *RouteOptimizer) selectBest(routes []domain.OptimizedRoute) domain.OptimizedRoute {
	best := routes[0]
	bestComposite := compositeScore(best)

	for _, route := range routes[1:] {
		if c := compositeScore(route); c > bestComposite {
			best = route
			bestComposite = c
		}
	}
	return best
}

// compositeScore blends normalized safety and normalized travel time
func compositeScore(route domain.OptimizedRoute) float64 {
	if len(route.Points) == 0 {
		return 0
	}

	normalizedSafety := route.TotalSafetyScore / (float64(len(route.Points)) * 100)

	normalizedTime := 1 - route.TotalTravelTime/timeCeilingMinutes
	if normalizedTime < 0 {
		normalizedTime = 0
	}

	return safetyWeight*normalizedSafety + timeWeight*normalizedTime
}

// fallbackRoute synthesizes a straight interpolation between the
// endpoints with default scores and a fixed travel time
func (o *RouteOptimizer) fallbackRoute(start, end domain.Coordinate, departure time.Time) domain.OptimizedRoute {
	points := []domain.RoutePoint{
		{
			Coordinate:    start,
			SafetyScore:   DefaultSafetyScore,
			Timestamp:     departure,
			TravelMinutes: 0,
		},
		{
			Coordinate:    end,
			SafetyScore:   DefaultSafetyScore,
			Timestamp:     departure.Add(fallbackTravelMinutes * time.Minute),
			TravelMinutes: fallbackTravelMinutes,
		},
	}

	return domain.OptimizedRoute{
		Points:           points,
		TotalSafetyScore: 2 * DefaultSafetyScore,
		TotalTravelTime:  fallbackTravelMinutes,
		RouteConfidence:  0.5,
	}
}

// RealTimeSafetyUpdates assesses the traveler's live position against
// the selected route: current score, nearest planned score, trend over
// the remaining waypoints, and short advisories.
func (o *RouteOptimizer) RealTimeSafetyUpdates(ctx context.Context, route domain.OptimizedRoute, current domain.Coordinate) domain.SafetyUpdate {
	nearestIdx := -1
	minDistance := 0.0
	for i, point := range route.Points {
		d := utils.HaversineMeters(current.Lat, current.Lng, point.Lat, point.Lng)
		if nearestIdx < 0 || d < minDistance {
			minDistance = d
			nearestIdx = i
		}
	}

	currentScore := predictScore(ctx, o.predictor, current, time.Now())

	plannedScore := DefaultSafetyScore
	if nearestIdx >= 0 {
		plannedScore = route.Points[nearestIdx].SafetyScore
	}

	trend := safetyTrend(route.Points, nearestIdx)

	return domain.SafetyUpdate{
		CurrentSafetyScore: currentScore,
		PlannedSafetyScore: plannedScore,
		SafetyTrend:        trend,
		DistanceFromRouteM: minDistance,
		Recommendations:    safetyRecommendations(currentScore, trend),
	}
}

// safetyTrend compares the mean score of the remaining waypoints
// against the score at the traveler's nearest waypoint
func safetyTrend(points []domain.RoutePoint, nearestIdx int) string {
	if nearestIdx < 0 {
		return domain.TrendStable
	}

	remaining := points[nearestIdx:]
	if len(remaining) < 2 {
		return domain.TrendStable
	}

	scores := make([]float64, len(remaining))
	for i, p := range remaining {
		scores[i] = p.SafetyScore
	}
	mean := stat.Mean(scores, nil)
	current := scores[0]

	switch {
	case mean > current+trendBand:
		return domain.TrendImproving
	case mean < current-trendBand:
		return domain.TrendDeteriorating
	default:
		return domain.TrendStable
	}
}

// safetyRecommendations emits advisory strings keyed off score bands
// and trend; both sets are independent and may appear together
func safetyRecommendations(currentScore float64, trend string) []string {
	var recommendations []string

	if currentScore < 30 {
		recommendations = append(recommendations,
			"High risk area - consider alternative route",
			"Stay alert and avoid isolated areas",
		)
	} else if currentScore < 50 {
		recommendations = append(recommendations, "Moderate risk - stay aware of surroundings")
	}

	switch trend {
	case domain.TrendDeteriorating:
		recommendations = append(recommendations, "Safety conditions worsening ahead")
	case domain.TrendImproving:
		recommendations = append(recommendations, "Safety conditions improving ahead")
	}

	if currentScore >= 70 {
		recommendations = append(recommendations, "Safe area - good lighting and activity")
	}

	return recommendations
}

// RouteRecommendations summarizes safety concerns for a freshly
// planned route
func RouteRecommendations(route domain.OptimizedRoute, at time.Time) []string {
	var recommendations []string

	if len(route.Points) > 0 {
		minScore := route.Points[0].SafetyScore
		var sum float64
		for _, p := range route.Points {
			if p.SafetyScore < minScore {
				minScore = p.SafetyScore
			}
			sum += p.SafetyScore
		}
		avg := sum / float64(len(route.Points))

		if minScore < 30 {
			recommendations = append(recommendations, "Route contains high-risk areas - stay alert")
		}
		if avg < 50 {
			recommendations = append(recommendations, "Overall route has moderate safety concerns")
		}
	}

	if route.RouteConfidence < 0.7 {
		recommendations = append(recommendations, "Route safety predictions have lower confidence")
	}

	hour := at.Hour()
	if hour >= 22 || hour <= 5 {
		recommendations = append(recommendations, "Night travel - ensure good lighting and company")
	}

	return recommendations
}
