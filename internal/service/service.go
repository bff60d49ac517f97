package service

import (
	"context"
	"time"

	"github.com/saferoute/backend/internal/domain"
	"github.com/saferoute/backend/pkg/utils"
)

// EventRepository is re-exported from domain for convenience
type EventRepository = domain.EventRepository

// DefaultSafetyScore is substituted whenever the predictor is
// unavailable or fails. Availability over precision: scoring outages
// must never block the alert path.
const DefaultSafetyScore = 50.0

// predictScore queries the predictor and degrades to the default score
// on any failure. A nil predictor is treated as unavailable.
func predictScore(ctx context.Context, p SafetyPredictor, coord domain.Coordinate, at time.Time) float64 {
	if p == nil {
		return DefaultSafetyScore
	}
	score, err := p.Predict(ctx, coord, at)
	if err != nil {
		return DefaultSafetyScore
	}
	return utils.Clamp(score, 0, 100)
}
