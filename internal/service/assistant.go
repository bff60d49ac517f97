package service

import (
	"context"
	"log"

	"github.com/saferoute/backend/internal/domain"
)

// AssistantActivator reacts to alert phases with an intervention
// payload. The conversational side of the assistant lives outside this
// service; only the activation contract is modeled here.
type AssistantActivator interface {
	Activate(phase domain.AlertPhase, coord domain.Coordinate, score float64) domain.Intervention
}

// ContactNotifier delivers alerts to a traveler's emergency contacts.
// Fire-and-forget: failures are logged, never propagated back into the
// escalation path.
type ContactNotifier interface {
	Notify(ctx context.Context, contacts []domain.EmergencyContact, alert domain.Alert) error
}

// TemplateAssistant is a canned-response activator used until a real
// conversational backend is attached
type TemplateAssistant struct{}

// NewTemplateAssistant creates a template-based assistant activator
func NewTemplateAssistant() *TemplateAssistant {
	return &TemplateAssistant{}
}

// Activate builds the phase-appropriate intervention payload
func (a *TemplateAssistant) Activate(phase domain.AlertPhase, coord domain.Coordinate, score float64) domain.Intervention {
	switch phase {
	case domain.PhaseSoftCheck:
		return domain.Intervention{
			Type:           "soft_check",
			Message:        "Hi! I'm your safety companion. I'm here to help you stay safe.",
			FollowUp:       "Are you feeling safe right now? Please let me know if you need any help.",
			Actions:        []string{"Tap to confirm you're okay", "Hold for 3 seconds to get immediate help", "Chat for support"},
			AssistantReady: true,
		}
	case domain.PhaseEscalation:
		return domain.Intervention{
			Type:             "escalation",
			Message:          "I'm here with you. You're not alone. What's happening right now?",
			Actions:          []string{"Immediate safety tips", "Emotional support", "Emergency contact activation"},
			AssistantReady:   true,
			ContactsPrepared: true,
		}
	case domain.PhaseEmergency:
		return domain.Intervention{
			Type:             "emergency",
			Message:          "I'm activating emergency protocols. Help is on the way. Stay safe.",
			AssistantReady:   true,
			ContactsPrepared: true,
		}
	default:
		return domain.Intervention{Type: "none"}
	}
}

// LogNotifier logs contact notifications instead of sending them.
// Stands in for an SMS or push gateway.
type LogNotifier struct{}

// NewLogNotifier creates a logging contact notifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify logs the alert delivery for each contact
func (n *LogNotifier) Notify(ctx context.Context, contacts []domain.EmergencyContact, alert domain.Alert) error {
	for _, contact := range contacts {
		log.Printf("[NOTIFY] contact=%s phone=%s phase=%s location=(%.6f,%.6f)",
			contact.Name, contact.Phone, alert.Phase, alert.Location.Lat, alert.Location.Lng)
	}
	return nil
}
