package postgres

import (
	"context"
	"time"

	"github.com/saferoute/backend/internal/domain"
)

// MockRepository implements domain.EventRepository for testing/demo mode
type MockRepository struct{}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

// SavePlannedRoute is a no-op in mock mode
func (r *MockRepository) SavePlannedRoute(ctx context.Context, route domain.PlannedRoute) error {
	return nil
}

// SaveAlert is a no-op in mock mode
func (r *MockRepository) SaveAlert(ctx context.Context, userID string, alert domain.Alert) error {
	return nil
}

// SavePredictionLog is a no-op in mock mode
func (r *MockRepository) SavePredictionLog(ctx context.Context, coord domain.Coordinate, score float64, at time.Time) error {
	return nil
}

// GetAlertHistory returns mock historical data
func (r *MockRepository) GetAlertHistory(ctx context.Context, userID string, from, to time.Time) ([]domain.Alert, error) {
	return []domain.Alert{
		{
			Phase:     domain.PhaseSoftCheck,
			Message:   "It looks like you've paused in a low-safety area. Are you okay?",
			Location:  domain.Coordinate{Lat: 28.6139, Lng: 77.2090},
			Timestamp: time.Now().Add(-24 * time.Hour),
		},
	}, nil
}

// Health always returns nil in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}
