package service

import (
	"context"
	"time"

	"github.com/saferoute/backend/internal/domain"
)

// Escalator owns the alert phase for one traveler and the transition
// policy driven by anomaly-positive location updates. The ladder is
// strictly forward-only; Reset is the only way back to normal.
type Escalator struct {
	predictor SafetyPredictor

	phase        domain.AlertPhase
	acknowledged bool

	now func() time.Time
}

// NewEscalator creates an escalator starting at the normal phase
func NewEscalator(predictor SafetyPredictor) *Escalator {
	return &Escalator{
		predictor: predictor,
		phase:     domain.PhaseNormal,
		now:       time.Now,
	}
}

// Phase returns the current alert phase
func (e *Escalator) Phase() domain.AlertPhase {
	return e.phase
}

// Acknowledge records an external acknowledgement signal for the
// current phase. The next anomaly at this phase holds instead of
// escalating, consuming the acknowledgement.
func (e *Escalator) Acknowledge() {
	e.acknowledged = true
}

// Reset returns the ladder to normal and clears any pending
// acknowledgement. Called when a session ends or a journey restarts.
func (e *Escalator) Reset() {
	e.phase = domain.PhaseNormal
	e.acknowledged = false
}

// OnAnomaly advances the ladder by at most one phase and returns the
// alert payload for the transition, or nil when the phase holds.
func (e *Escalator) OnAnomaly(ctx context.Context, coord domain.Coordinate) *domain.Alert {
	switch e.phase {
	case domain.PhaseNormal:
		e.phase = domain.PhaseSoftCheck
		e.acknowledged = false
		return e.softCheckAlert(coord)

	case domain.PhaseSoftCheck:
		if e.acknowledged {
			e.acknowledged = false
			return nil
		}
		e.phase = domain.PhaseEscalation
		return e.escalationAlert(coord)

	case domain.PhaseEscalation:
		if e.acknowledged {
			e.acknowledged = false
			return nil
		}
		e.phase = domain.PhaseEmergency
		return e.emergencyAlert(ctx, coord)

	default:
		// emergency is terminal; further anomalies emit nothing
		return nil
	}
}

func (e *Escalator) softCheckAlert(coord domain.Coordinate) *domain.Alert {
	return &domain.Alert{
		Phase:     domain.PhaseSoftCheck,
		Message:   "It looks like you've paused in a low-safety area. Are you okay?",
		Location:  coord,
		Timestamp: e.now(),
		Actions: []string{
			"Tap to confirm you're okay",
			"Hold for 3 seconds to alert emergency contacts",
		},
	}
}

func (e *Escalator) escalationAlert(coord domain.Coordinate) *domain.Alert {
	return &domain.Alert{
		Phase:            domain.PhaseEscalation,
		Message:          "We're concerned about your safety. Your safety assistant is here to help.",
		Location:         coord,
		Timestamp:        e.now(),
		AssistantReady:   true,
		ContactsPrepared: true,
	}
}

func (e *Escalator) emergencyAlert(ctx context.Context, coord domain.Coordinate) *domain.Alert {
	return &domain.Alert{
		Phase:             domain.PhaseEmergency,
		Message:           "EMERGENCY ALERT ACTIVATED",
		Location:          coord,
		Timestamp:         e.now(),
		ContactsNotified:  true,
		RespondersAlerted: true,
		SafetyScore:       predictScore(ctx, e.predictor, coord, e.now()),
	}
}
