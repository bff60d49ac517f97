package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saferoute/backend/internal/domain"
)

// monitorClock pins a monitor to a controllable clock
type monitorClock struct {
	current time.Time
}

func newTestMonitor(predictor SafetyPredictor) (*GeofenceMonitor, *monitorClock) {
	clock := &monitorClock{current: time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)}
	m := NewGeofenceMonitor(predictor)
	m.now = func() time.Time { return clock.current }
	return m, clock
}

func (c *monitorClock) advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func TestUnsafeStopAnomaly(t *testing.T) {
	predictor := newMockPredictor(10) // well below the unsafe ceiling
	m, clock := newTestMonitor(predictor)
	coord := domain.Coordinate{Lat: 28.6139, Lng: 77.2090}

	// stopped, but not yet long enough
	assert.False(t, m.UpdateLocation(context.Background(), coord, 0, 10))
	clock.advance(3 * time.Minute)
	assert.False(t, m.UpdateLocation(context.Background(), coord, 0, 10))

	// trailing stopped run now spans six minutes
	clock.advance(3 * time.Minute)
	assert.True(t, m.UpdateLocation(context.Background(), coord, 0, 10))
}

func TestStopInSafeAreaIsNotAnomalous(t *testing.T) {
	predictor := newMockPredictor(80)
	m, clock := newTestMonitor(predictor)
	coord := domain.Coordinate{Lat: 28.6139, Lng: 77.2090}

	assert.False(t, m.UpdateLocation(context.Background(), coord, 0, 10))
	clock.advance(10 * time.Minute)
	assert.False(t, m.UpdateLocation(context.Background(), coord, 0, 10))
}

func TestMovingSampleBreaksStopRun(t *testing.T) {
	predictor := newMockPredictor(10)
	m, clock := newTestMonitor(predictor)
	coord := domain.Coordinate{Lat: 28.6139, Lng: 77.2090}

	m.UpdateLocation(context.Background(), coord, 0, 10)
	clock.advance(6 * time.Minute)
	// brisk movement resets the trailing run
	m.UpdateLocation(context.Background(), coord, 15, 10)
	clock.advance(2 * time.Minute)
	assert.False(t, m.UpdateLocation(context.Background(), coord, 0, 10))
	assert.Less(t, m.stoppedDuration(), stopDurationThreshold)
}

func TestRouteDeviationAnomaly(t *testing.T) {
	predictor := newMockPredictor(80)
	m, _ := newTestMonitor(predictor)

	m.SetPlannedRoute(context.Background(), []domain.Coordinate{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 0.01},
	})

	// ~157 km from the planned route
	assert.True(t, m.UpdateLocation(context.Background(), domain.Coordinate{Lat: 1, Lng: 1}, 5, 10))
}

func TestOnRouteIsNotDeviation(t *testing.T) {
	predictor := newMockPredictor(80)
	m, _ := newTestMonitor(predictor)

	m.SetPlannedRoute(context.Background(), []domain.Coordinate{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 0.01},
	})

	// ~55 m east of the first waypoint
	assert.False(t, m.UpdateLocation(context.Background(), domain.Coordinate{Lat: 0, Lng: 0.0005}, 5, 10))
}

func TestDeviationCheckSkippedWithoutRoute(t *testing.T) {
	predictor := newMockPredictor(80)
	m, _ := newTestMonitor(predictor)

	assert.False(t, m.UpdateLocation(context.Background(), domain.Coordinate{Lat: 1, Lng: 1}, 5, 10))
}

func TestErraticMovementAnomaly(t *testing.T) {
	predictor := newMockPredictor(80)
	m, clock := newTestMonitor(predictor)

	// zigzag north/south: every consecutive triple reverses direction
	path := []domain.Coordinate{
		{Lat: 0, Lng: 0},
		{Lat: 0.001, Lng: 0},
		{Lat: 0, Lng: 0},
		{Lat: 0.001, Lng: 0},
		{Lat: 0, Lng: 0},
	}

	var anomaly bool
	for _, c := range path {
		anomaly = m.UpdateLocation(context.Background(), c, 10, 10)
		clock.advance(30 * time.Second)
	}
	assert.True(t, anomaly)
}

func TestStraightLineIsNotErratic(t *testing.T) {
	predictor := newMockPredictor(80)
	m, clock := newTestMonitor(predictor)

	var anomaly bool
	for i := 0; i < 5; i++ {
		c := domain.Coordinate{Lat: float64(i) * 0.001, Lng: 0}
		anomaly = m.UpdateLocation(context.Background(), c, 10, 10)
		clock.advance(30 * time.Second)
	}
	assert.False(t, anomaly)
}

func TestErraticNeedsFiveSamples(t *testing.T) {
	predictor := newMockPredictor(80)
	m, clock := newTestMonitor(predictor)

	path := []domain.Coordinate{
		{Lat: 0, Lng: 0},
		{Lat: 0.001, Lng: 0},
		{Lat: 0, Lng: 0},
		{Lat: 0.001, Lng: 0},
	}

	var anomaly bool
	for _, c := range path {
		anomaly = m.UpdateLocation(context.Background(), c, 10, 10)
		clock.advance(30 * time.Second)
	}
	assert.False(t, anomaly)
}

func TestHistoryCapacityEvictsOldest(t *testing.T) {
	predictor := newMockPredictor(80)
	m, clock := newTestMonitor(predictor)

	first := clock.current
	for i := 0; i < historyCapacity+5; i++ {
		m.UpdateLocation(context.Background(), domain.Coordinate{Lat: float64(i) * 0.001, Lng: 0}, 10, 10)
		clock.advance(time.Second)
	}

	history := m.History()
	require.Len(t, history, historyCapacity)
	// the five oldest samples are gone
	assert.Equal(t, first.Add(5*time.Second), history[0].Timestamp)
}

func TestSetPlannedRouteDerivesZones(t *testing.T) {
	predictor := newMockPredictor(0)
	safe := domain.Coordinate{Lat: 0.01, Lng: 0}
	moderate := domain.Coordinate{Lat: 0.02, Lng: 0}
	risky := domain.Coordinate{Lat: 0.03, Lng: 0}
	predictor.setScore(safe, 80)
	predictor.setScore(moderate, 50)
	predictor.setScore(risky, 20)

	m, _ := newTestMonitor(predictor)
	m.SetPlannedRoute(context.Background(), []domain.Coordinate{safe, moderate, risky})

	zones := m.Zones()
	require.Len(t, zones, 3)

	assert.Equal(t, domain.ZoneSafe, zones[0].ZoneType)
	assert.InDelta(t, 130, zones[0].RadiusM, 1e-9)

	assert.Equal(t, domain.ZoneModerate, zones[1].ZoneType)
	assert.InDelta(t, 100, zones[1].RadiusM, 1e-9)

	assert.Equal(t, domain.ZoneHighRisk, zones[2].ZoneType)
	assert.InDelta(t, 70, zones[2].RadiusM, 1e-9)
}

func TestSetPlannedRouteReplacesZones(t *testing.T) {
	predictor := newMockPredictor(50)
	m, _ := newTestMonitor(predictor)

	m.SetPlannedRoute(context.Background(), []domain.Coordinate{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 0.01}, {Lat: 0, Lng: 0.02}})
	require.Len(t, m.Zones(), 3)

	m.SetPlannedRoute(context.Background(), []domain.Coordinate{{Lat: 1, Lng: 1}})
	require.Len(t, m.Zones(), 1)
	assert.Equal(t, domain.Coordinate{Lat: 1, Lng: 1}, m.Zones()[0].Center)
}

func TestStatusReportsLatestSample(t *testing.T) {
	predictor := newMockPredictor(35)
	m, clock := newTestMonitor(predictor)

	empty := m.Status(context.Background())
	assert.False(t, empty.HasLocation)
	assert.InDelta(t, DefaultSafetyScore, empty.SafetyScore, 1e-9)

	coord := domain.Coordinate{Lat: 28.6139, Lng: 77.2090}
	m.UpdateLocation(context.Background(), coord, 0, 10)
	clock.advance(2 * time.Minute)
	m.UpdateLocation(context.Background(), coord, 0, 10)

	status := m.Status(context.Background())
	require.True(t, status.HasLocation)
	assert.Equal(t, coord, *status.Location)
	assert.InDelta(t, 35, status.SafetyScore, 1e-9)
	assert.InDelta(t, 2, status.StoppedMinutes, 1e-9)
	assert.Equal(t, 0.0, status.Speed)
}
