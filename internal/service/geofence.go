package service

import (
	"context"
	"time"

	"github.com/saferoute/backend/internal/domain"
	"github.com/saferoute/backend/pkg/utils"
)

// Anomaly detection thresholds
const (
	historyCapacity = 100

	// speed at or below which the traveler counts as stopped (km/h)
	stopSpeedThreshold = 1.0

	// stopped this long in an unsafe area raises concern
	stopDurationThreshold = 5 * time.Minute

	// predicted score below this marks an unsafe location
	unsafeScoreCeiling = 30.0

	// distance from the planned route beyond which movement is a deviation
	deviationThresholdMeters = 200.0

	// bearing change above this counts as a significant direction change
	significantBearingChange = 90.0

	// more than this many significant changes in the last erraticWindow
	// samples flags erratic movement
	erraticChangeLimit = 2
	erraticWindow      = 5
)

// GeofenceMonitor ingests one traveler's live location stream and
// detects behavioral anomalies against the planned route. It owns the
// location history and zone list for a single journey; instances must
// not be shared across sessions.
type GeofenceMonitor struct {
	predictor SafetyPredictor

	history      []domain.LocationSample
	plannedRoute []domain.Coordinate
	zones        []domain.SafetyZone

	now func() time.Time
}

// NewGeofenceMonitor creates a monitor for one journey
func NewGeofenceMonitor(predictor SafetyPredictor) *GeofenceMonitor {
	return &GeofenceMonitor{
		predictor: predictor,
		now:       time.Now,
	}
}

// SetPlannedRoute replaces the planned route and regenerates its safety
// zones. The zone list is replaced atomically, never mutated in place.
func (m *GeofenceMonitor) SetPlannedRoute(ctx context.Context, coords []domain.Coordinate) {
	route := make([]domain.Coordinate, len(coords))
	copy(route, coords)

	zones := make([]domain.SafetyZone, len(route))
	for i, c := range route {
		score := predictScore(ctx, m.predictor, c, m.now())
		zones[i] = domain.NewSafetyZone(c, score)
	}

	m.plannedRoute = route
	m.zones = zones
}

// ResetHistory discards the location history, e.g. when a new route is
// assigned to the journey
func (m *GeofenceMonitor) ResetHistory() {
	m.history = nil
}

// Zones returns the zones derived from the current planned route
func (m *GeofenceMonitor) Zones() []domain.SafetyZone {
	return m.zones
}

// History returns the bounded location history, oldest first
func (m *GeofenceMonitor) History() []domain.LocationSample {
	return m.history
}

// UpdateLocation appends a sample to the history and reports whether
// the update looks anomalous. Checks run in fixed order and
// short-circuit on the first hit: unsafe stop, route deviation, erratic
// movement. The monitor only signals anomalies; phase transitions are
// the escalator's job.
func (m *GeofenceMonitor) UpdateLocation(ctx context.Context, coord domain.Coordinate, speed, accuracy float64) bool {
	sample := domain.LocationSample{
		Coordinate: coord,
		Timestamp:  m.now(),
		Speed:      speed,
		Accuracy:   accuracy,
	}

	m.history = append(m.history, sample)
	if len(m.history) > historyCapacity {
		m.history = m.history[len(m.history)-historyCapacity:]
	}

	if m.stoppedInUnsafeArea(ctx, sample) {
		return true
	}
	if m.deviatedFromRoute(sample) {
		return true
	}
	if m.erraticMovement() {
		return true
	}
	return false
}

// stoppedInUnsafeArea reports whether the traveler has been stopped in
// a low-safety location for longer than the concern threshold
func (m *GeofenceMonitor) stoppedInUnsafeArea(ctx context.Context, sample domain.LocationSample) bool {
	if sample.Speed > stopSpeedThreshold {
		return false
	}

	score := predictScore(ctx, m.predictor, sample.Coordinate, sample.Timestamp)
	if score >= unsafeScoreCeiling {
		return false
	}

	return m.stoppedDuration() > stopDurationThreshold
}

// stoppedDuration measures the contiguous trailing run of stopped
// samples by wall-clock timestamps. Zero when the newest sample is
// moving or the history is empty.
func (m *GeofenceMonitor) stoppedDuration() time.Duration {
	var stoppedStart time.Time
	for i := len(m.history) - 1; i >= 0; i-- {
		if m.history[i].Speed > stopSpeedThreshold {
			break
		}
		stoppedStart = m.history[i].Timestamp
	}

	if stoppedStart.IsZero() {
		return 0
	}
	return m.now().Sub(stoppedStart)
}

// deviatedFromRoute reports whether the sample is further than the
// deviation threshold from every planned-route coordinate. With no
// planned route the check has no opinion.
func (m *GeofenceMonitor) deviatedFromRoute(sample domain.LocationSample) bool {
	if len(m.plannedRoute) == 0 {
		return false
	}

	minDistance := -1.0
	for _, c := range m.plannedRoute {
		d := utils.HaversineMeters(sample.Lat, sample.Lng, c.Lat, c.Lng)
		if minDistance < 0 || d < minDistance {
			minDistance = d
		}
	}

	return minDistance > deviationThresholdMeters
}

// erraticMovement counts significant bearing changes across consecutive
// triples of the last erraticWindow samples
func (m *GeofenceMonitor) erraticMovement() bool {
	if len(m.history) < erraticWindow {
		return false
	}

	recent := m.history[len(m.history)-erraticWindow:]
	changes := 0

	for i := 1; i < len(recent)-1; i++ {
		prevBearing := utils.BearingDegrees(recent[i-1].Lat, recent[i-1].Lng, recent[i].Lat, recent[i].Lng)
		currBearing := utils.BearingDegrees(recent[i].Lat, recent[i].Lng, recent[i+1].Lat, recent[i+1].Lng)

		if utils.BearingChange(prevBearing, currBearing) > significantBearingChange {
			changes++
		}
	}

	return changes > erraticChangeLimit
}

// Status reports the live state of the journey. The escalation phase
// is owned elsewhere and filled in by the caller.
func (m *GeofenceMonitor) Status(ctx context.Context) domain.SafetyStatus {
	if len(m.history) == 0 {
		return domain.SafetyStatus{SafetyScore: DefaultSafetyScore}
	}

	latest := m.history[len(m.history)-1]
	score := predictScore(ctx, m.predictor, latest.Coordinate, latest.Timestamp)

	loc := latest.Coordinate
	ts := latest.Timestamp
	return domain.SafetyStatus{
		SafetyScore:    score,
		Location:       &loc,
		Timestamp:      &ts,
		Speed:          latest.Speed,
		StoppedMinutes: m.stoppedDuration().Minutes(),
		HasLocation:    true,
	}
}
