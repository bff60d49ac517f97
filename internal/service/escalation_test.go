package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saferoute/backend/internal/domain"
)

func TestEscalationLadderProgression(t *testing.T) {
	e := NewEscalator(newMockPredictor(15))
	coord := domain.Coordinate{Lat: 28.6139, Lng: 77.2090}

	require.Equal(t, domain.PhaseNormal, e.Phase())

	// one transition per anomaly-positive update, no phase skipping
	first := e.OnAnomaly(context.Background(), coord)
	require.NotNil(t, first)
	assert.Equal(t, domain.PhaseSoftCheck, first.Phase)
	assert.Equal(t, domain.PhaseSoftCheck, e.Phase())
	assert.Len(t, first.Actions, 2)

	second := e.OnAnomaly(context.Background(), coord)
	require.NotNil(t, second)
	assert.Equal(t, domain.PhaseEscalation, second.Phase)
	assert.True(t, second.AssistantReady)
	assert.True(t, second.ContactsPrepared)

	third := e.OnAnomaly(context.Background(), coord)
	require.NotNil(t, third)
	assert.Equal(t, domain.PhaseEmergency, third.Phase)
	assert.True(t, third.ContactsNotified)
	assert.True(t, third.RespondersAlerted)
	assert.InDelta(t, 15, third.SafetyScore, 1e-9)
}

func TestEmergencyIsTerminal(t *testing.T) {
	e := NewEscalator(newMockPredictor(15))
	coord := domain.Coordinate{Lat: 0, Lng: 0}

	for i := 0; i < 3; i++ {
		require.NotNil(t, e.OnAnomaly(context.Background(), coord))
	}
	require.Equal(t, domain.PhaseEmergency, e.Phase())

	// further anomalies emit nothing and hold the phase
	assert.Nil(t, e.OnAnomaly(context.Background(), coord))
	assert.Equal(t, domain.PhaseEmergency, e.Phase())
}

func TestAcknowledgementHoldsPhaseOnce(t *testing.T) {
	e := NewEscalator(newMockPredictor(15))
	coord := domain.Coordinate{Lat: 0, Lng: 0}

	e.OnAnomaly(context.Background(), coord)
	require.Equal(t, domain.PhaseSoftCheck, e.Phase())

	e.Acknowledge()
	assert.Nil(t, e.OnAnomaly(context.Background(), coord))
	assert.Equal(t, domain.PhaseSoftCheck, e.Phase())

	// acknowledgement was consumed; next anomaly escalates
	alert := e.OnAnomaly(context.Background(), coord)
	require.NotNil(t, alert)
	assert.Equal(t, domain.PhaseEscalation, alert.Phase)
}

func TestAcknowledgementHoldsEscalation(t *testing.T) {
	e := NewEscalator(newMockPredictor(15))
	coord := domain.Coordinate{Lat: 0, Lng: 0}

	e.OnAnomaly(context.Background(), coord)
	e.OnAnomaly(context.Background(), coord)
	require.Equal(t, domain.PhaseEscalation, e.Phase())

	e.Acknowledge()
	assert.Nil(t, e.OnAnomaly(context.Background(), coord))
	assert.Equal(t, domain.PhaseEscalation, e.Phase())
}

func TestResetReturnsToNormal(t *testing.T) {
	e := NewEscalator(newMockPredictor(15))
	coord := domain.Coordinate{Lat: 0, Lng: 0}

	e.OnAnomaly(context.Background(), coord)
	e.OnAnomaly(context.Background(), coord)
	e.Acknowledge()

	e.Reset()
	assert.Equal(t, domain.PhaseNormal, e.Phase())

	// ladder restarts from the bottom, pending ack discarded
	alert := e.OnAnomaly(context.Background(), coord)
	require.NotNil(t, alert)
	assert.Equal(t, domain.PhaseSoftCheck, alert.Phase)
}

func TestPhaseOrdering(t *testing.T) {
	assert.True(t, domain.PhaseNormal.Before(domain.PhaseSoftCheck))
	assert.True(t, domain.PhaseSoftCheck.Before(domain.PhaseEmergency))
	assert.False(t, domain.PhaseEmergency.Before(domain.PhaseEscalation))
	assert.False(t, domain.PhaseNormal.Before(domain.PhaseNormal))
}

func TestTemplateAssistantPerPhase(t *testing.T) {
	assistant := NewTemplateAssistant()
	coord := domain.Coordinate{Lat: 0, Lng: 0}

	soft := assistant.Activate(domain.PhaseSoftCheck, coord, 40)
	assert.Equal(t, "soft_check", soft.Type)
	assert.True(t, soft.AssistantReady)
	assert.False(t, soft.ContactsPrepared)

	escalation := assistant.Activate(domain.PhaseEscalation, coord, 30)
	assert.Equal(t, "escalation", escalation.Type)
	assert.True(t, escalation.ContactsPrepared)

	emergency := assistant.Activate(domain.PhaseEmergency, coord, 10)
	assert.Equal(t, "emergency", emergency.Type)

	none := assistant.Activate(domain.PhaseNormal, coord, 90)
	assert.Equal(t, "none", none.Type)
}
