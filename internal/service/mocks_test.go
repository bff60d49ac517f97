package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/saferoute/backend/internal/domain"
)

// mockPredictor scores coordinates from a fixture map, falling back to
// a fixed score for unknown points. The optimizer queries it from
// concurrent goroutines, so the call counter is mutex-guarded.
type mockPredictor struct {
	mu       sync.Mutex
	scores   map[string]float64
	fallback float64
	err      error
	calls    int
}

func newMockPredictor(fallback float64) *mockPredictor {
	return &mockPredictor{
		scores:   make(map[string]float64),
		fallback: fallback,
	}
}

func scoreKey(coord domain.Coordinate) string {
	return fmt.Sprintf("%.4f,%.4f", coord.Lat, coord.Lng)
}

func (m *mockPredictor) setScore(coord domain.Coordinate, score float64) {
	m.scores[scoreKey(coord)] = score
}

func (m *mockPredictor) Predict(ctx context.Context, coord domain.Coordinate, at time.Time) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return 0, m.err
	}
	if score, ok := m.scores[scoreKey(coord)]; ok {
		return score, nil
	}
	return m.fallback, nil
}

// mockDirections returns canned candidate routes
type mockDirections struct {
	candidates []domain.CandidateRoute
	err        error
}

func (m *mockDirections) Alternatives(ctx context.Context, start, end domain.Coordinate, maxCount int) ([]domain.CandidateRoute, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.candidates, nil
}

// recordingRepo captures persisted routes and alerts for assertions.
// Saves happen on background goroutines, so access is mutex-guarded.
type recordingRepo struct {
	mu     sync.Mutex
	routes []domain.PlannedRoute
	alerts []domain.Alert
}

func (r *recordingRepo) SavePlannedRoute(ctx context.Context, route domain.PlannedRoute) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
	return nil
}

func (r *recordingRepo) SaveAlert(ctx context.Context, userID string, alert domain.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, alert)
	return nil
}

func (r *recordingRepo) SavePredictionLog(ctx context.Context, coord domain.Coordinate, score float64, at time.Time) error {
	return nil
}

func (r *recordingRepo) GetAlertHistory(ctx context.Context, userID string, from, to time.Time) ([]domain.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Alert(nil), r.alerts...), nil
}

func (r *recordingRepo) Health(ctx context.Context) error {
	return nil
}

func (r *recordingRepo) savedAlerts() []domain.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Alert(nil), r.alerts...)
}

// recordingNotifier captures contact notifications
type recordingNotifier struct {
	mu            sync.Mutex
	notifications []domain.Alert
}

func (n *recordingNotifier) Notify(ctx context.Context, contacts []domain.EmergencyContact, alert domain.Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, alert)
	return nil
}

func (n *recordingNotifier) sent() []domain.Alert {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Alert(nil), n.notifications...)
}

// legsAlong builds equal-duration legs through the given coordinates
func legsAlong(durationSeconds float64, coords ...domain.Coordinate) []domain.RouteLeg {
	legs := make([]domain.RouteLeg, len(coords))
	for i, c := range coords {
		legs[i] = domain.RouteLeg{Start: c, DurationSeconds: durationSeconds}
	}
	return legs
}
