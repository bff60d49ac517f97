package domain

import "time"

// AlertPhase is one rung of the four-level escalation ladder
type AlertPhase string

const (
	PhaseNormal     AlertPhase = "normal"
	PhaseSoftCheck  AlertPhase = "soft_check"
	PhaseEscalation AlertPhase = "escalation"
	PhaseEmergency  AlertPhase = "emergency"
)

// rank orders phases for forward-only comparison
func (p AlertPhase) rank() int {
	switch p {
	case PhaseSoftCheck:
		return 1
	case PhaseEscalation:
		return 2
	case PhaseEmergency:
		return 3
	default:
		return 0
	}
}

// Before reports whether p is strictly lower on the ladder than other
func (p AlertPhase) Before(other AlertPhase) bool {
	return p.rank() < other.rank()
}

// Alert is the payload emitted on a phase transition, handed to the
// assistant-activation and contact-notification collaborators
type Alert struct {
	Phase             AlertPhase `json:"phase"`
	Message           string     `json:"message"`
	Location          Coordinate `json:"location"`
	Timestamp         time.Time  `json:"timestamp"`
	Actions           []string   `json:"actions,omitempty"`
	AssistantReady    bool       `json:"assistant_ready,omitempty"`
	ContactsPrepared  bool       `json:"emergency_contacts_prepared,omitempty"`
	ContactsNotified  bool       `json:"emergency_contacts_notified,omitempty"`
	RespondersAlerted bool       `json:"responders_alerted,omitempty"`
	SafetyScore       float64    `json:"safety_score,omitempty"`
}

// Intervention is the opaque-to-us payload the assistant produces when
// activated for a phase
type Intervention struct {
	Type             string   `json:"intervention_type"`
	Message          string   `json:"message"`
	FollowUp         string   `json:"follow_up,omitempty"`
	Actions          []string `json:"actions,omitempty"`
	AssistantReady   bool     `json:"assistant_ready"`
	ContactsPrepared bool     `json:"emergency_contacts_prepared"`
}

// EmergencyContact is a person to notify during escalation
type EmergencyContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// SafetyStatus reports the live state of one traveler's session
type SafetyStatus struct {
	Phase          AlertPhase  `json:"current_phase"`
	SafetyScore    float64     `json:"safety_score"`
	Location       *Coordinate `json:"location,omitempty"`
	Timestamp      *time.Time  `json:"timestamp,omitempty"`
	Speed          float64     `json:"speed"`
	StoppedMinutes float64     `json:"stopped_duration"`
	HasLocation    bool        `json:"has_location"`
}

// StatusResponse wraps a safety status with metadata
type StatusResponse struct {
	Data    SafetyStatus `json:"data"`
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
}

// LocationUpdateResult is returned for every processed location update
type LocationUpdateResult struct {
	LocationUpdated bool          `json:"location_updated"`
	AnomalyDetected bool          `json:"anomaly_detected"`
	Phase           AlertPhase    `json:"alert_phase"`
	SafetyUpdates   *SafetyUpdate `json:"safety_updates,omitempty"`
	Alert           *Alert        `json:"alert,omitempty"`
	Intervention    *Intervention `json:"intervention,omitempty"`
}

// SystemStatus reports process-wide counters
type SystemStatus struct {
	ActiveSessions int       `json:"active_sessions"`
	ActiveRoutes   int       `json:"active_routes"`
	UptimeSince    time.Time `json:"uptime_since"`
}
