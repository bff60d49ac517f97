package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saferoute/backend/internal/domain"
)

// ErrSessionNotFound is returned for operations on unknown travelers
var ErrSessionNotFound = errors.New("session not found")

// Session holds all mutable state for one traveler's active journey.
// Each session exclusively owns its monitor, escalator, route, and
// contact list; sessions never share these.
type Session struct {
	mu sync.Mutex

	userID    string
	routeID   string
	route     domain.OptimizedRoute
	hasRoute  bool
	monitor   *GeofenceMonitor
	escalator *Escalator
	contacts  []domain.EmergencyContact

	lastUpdate time.Time
}

// SessionManager is the registry of active traveler sessions. The
// predictor is shared read-only across sessions; everything else is
// single-owner per session.
type SessionManager struct {
	predictor SafetyPredictor
	optimizer *RouteOptimizer
	assistant AssistantActivator
	notifier  ContactNotifier
	repo      EventRepository

	mu       sync.RWMutex
	sessions map[string]*Session

	wgBg      sync.WaitGroup // tracks background persistence for graceful shutdown
	startedAt time.Time
}

// NewSessionManager creates a new session registry
func NewSessionManager(
	predictor SafetyPredictor,
	optimizer *RouteOptimizer,
	assistant AssistantActivator,
	notifier ContactNotifier,
	repo EventRepository,
) *SessionManager {
	return &SessionManager{
		predictor: predictor,
		optimizer: optimizer,
		assistant: assistant,
		notifier:  notifier,
		repo:      repo,
		sessions:  make(map[string]*Session),
		startedAt: time.Now(),
	}
}

// WaitBackground blocks until all background save goroutines complete.
// Call during graceful shutdown to avoid dropped writes.
func (m *SessionManager) WaitBackground() {
	m.wgBg.Wait()
}

// session returns the live session for a user, or ErrSessionNotFound
func (m *SessionManager) session(userID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, userID)
	}
	return s, nil
}

// getOrCreate returns the session for a user, creating it if needed
func (m *SessionManager) getOrCreate(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		s = &Session{
			userID:    userID,
			monitor:   NewGeofenceMonitor(m.predictor),
			escalator: NewEscalator(m.predictor),
		}
		m.sessions[userID] = s
	}
	return s
}

// PlanRoute plans an optimized safe route for a traveler and arms the
// geofence monitor with it. Planning never fails; an existing route on
// the session is fully superseded and anomaly history is reset.
func (m *SessionManager) PlanRoute(ctx context.Context, userID string, start, end domain.Coordinate, departure time.Time) (domain.PlannedRoute, error) {
	if userID == "" {
		return domain.PlannedRoute{}, errors.New("session: user id is required")
	}
	if departure.IsZero() {
		departure = time.Now()
	}

	route := m.optimizer.PlanRoute(ctx, start, end, departure)

	s := m.getOrCreate(userID)
	s.mu.Lock()
	s.routeID = fmt.Sprintf("route_%s", uuid.NewString())
	s.route = route
	s.hasRoute = true
	s.monitor.SetPlannedRoute(ctx, route.Coordinates())
	s.monitor.ResetHistory()
	s.lastUpdate = time.Now()
	planned := domain.PlannedRoute{
		RouteID:         s.routeID,
		UserID:          userID,
		Route:           route,
		StartTime:       departure,
		Recommendations: RouteRecommendations(route, departure),
	}
	s.mu.Unlock()

	// Persist asynchronously; route planning never waits on storage
	m.wgBg.Add(1)
	go func() {
		defer m.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.repo.SavePlannedRoute(bgCtx, planned); err != nil {
			log.Printf("Failed to save planned route: %v", err)
		}
	}()

	return planned, nil
}

// UpdateLocation processes one live location update for a traveler:
// feeds the geofence monitor, drives escalation on anomaly, and hands
// emitted alerts to the assistant and contact collaborators.
func (m *SessionManager) UpdateLocation(ctx context.Context, userID string, coord domain.Coordinate, speed, accuracy float64) (domain.LocationUpdateResult, error) {
	s, err := m.session(userID)
	if err != nil {
		return domain.LocationUpdateResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	anomaly := s.monitor.UpdateLocation(ctx, coord, speed, accuracy)
	s.lastUpdate = time.Now()

	result := domain.LocationUpdateResult{
		LocationUpdated: true,
		AnomalyDetected: anomaly,
		Phase:           s.escalator.Phase(),
	}

	if !anomaly {
		return result, nil
	}

	if s.hasRoute {
		updates := m.optimizer.RealTimeSafetyUpdates(ctx, s.route, coord)
		result.SafetyUpdates = &updates
	}

	alert := s.escalator.OnAnomaly(ctx, coord)
	result.Phase = s.escalator.Phase()
	if alert == nil {
		return result, nil
	}
	result.Alert = alert

	score := DefaultSafetyScore
	if result.SafetyUpdates != nil {
		score = result.SafetyUpdates.CurrentSafetyScore
	}
	intervention := m.assistant.Activate(alert.Phase, coord, score)
	result.Intervention = &intervention

	m.dispatchAlert(s.userID, *alert, s.contacts)

	return result, nil
}

// dispatchAlert fans the alert out to persistence and, from escalation
// onward, the contact notifier. Fire-and-forget: neither can roll back
// a phase transition.
func (m *SessionManager) dispatchAlert(userID string, alert domain.Alert, contacts []domain.EmergencyContact) {
	m.wgBg.Add(1)
	go func() {
		defer m.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := m.repo.SaveAlert(bgCtx, userID, alert); err != nil {
			log.Printf("Failed to save alert: %v", err)
		}

		if domain.PhaseSoftCheck.Before(alert.Phase) && len(contacts) > 0 {
			if err := m.notifier.Notify(bgCtx, contacts, alert); err != nil {
				log.Printf("Failed to notify contacts: %v", err)
			}
		}
	}()
}

// Acknowledge records an external acknowledgement for the traveler's
// current alert phase
func (m *SessionManager) Acknowledge(userID string) error {
	s, err := m.session(userID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.escalator.Acknowledge()
	s.mu.Unlock()
	return nil
}

// SafetyStatus reports the traveler's live safety state
func (m *SessionManager) SafetyStatus(ctx context.Context, userID string) (domain.SafetyStatus, error) {
	s, err := m.session(userID)
	if err != nil {
		return domain.SafetyStatus{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	status := s.monitor.Status(ctx)
	status.Phase = s.escalator.Phase()
	return status, nil
}

// SetContacts stores the traveler's emergency contacts, creating the
// session if the traveler has not planned a route yet
func (m *SessionManager) SetContacts(userID string, contacts []domain.EmergencyContact) error {
	if userID == "" {
		return errors.New("session: user id is required")
	}
	s := m.getOrCreate(userID)
	s.mu.Lock()
	s.contacts = append([]domain.EmergencyContact(nil), contacts...)
	s.mu.Unlock()
	return nil
}

// EndSession discards the traveler's session state and resets the
// escalation ladder
func (m *SessionManager) EndSession(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, userID)
	}
	s.mu.Lock()
	s.escalator.Reset()
	s.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

// SystemStatus reports process-wide counters
func (m *SessionManager) SystemStatus() domain.SystemStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	routes := 0
	for _, s := range m.sessions {
		s.mu.Lock()
		if s.hasRoute {
			routes++
		}
		s.mu.Unlock()
	}

	return domain.SystemStatus{
		ActiveSessions: len(m.sessions),
		ActiveRoutes:   routes,
		UptimeSince:    m.startedAt,
	}
}
