package domain

import (
	"context"
	"time"
)

// EventRepository defines the interface for journey event persistence.
// This follows the Dependency Inversion Principle - domain defines the interface
type EventRepository interface {
	// SavePlannedRoute persists a planned route
	SavePlannedRoute(ctx context.Context, route PlannedRoute) error

	// SaveAlert persists an emitted escalation alert
	SaveAlert(ctx context.Context, userID string, alert Alert) error

	// SavePredictionLog persists a safety-score prediction
	SavePredictionLog(ctx context.Context, coord Coordinate, score float64, at time.Time) error

	// GetAlertHistory retrieves alerts for a user within a time range
	GetAlertHistory(ctx context.Context, userID string, from, to time.Time) ([]Alert, error)

	// Health checks storage connectivity
	Health(ctx context.Context) error
}
