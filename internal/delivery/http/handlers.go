package http

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saferoute/backend/internal/domain"
	"github.com/saferoute/backend/internal/service"
)

// Handler contains all HTTP handlers
type Handler struct {
	sessions *service.SessionManager
	mlBridge *service.MLBridge
	repo     service.EventRepository
}

// NewHandler creates a new handler
func NewHandler(sessions *service.SessionManager, mlBridge *service.MLBridge, repo service.EventRepository) *Handler {
	return &Handler{
		sessions: sessions,
		mlBridge: mlBridge,
		repo:     repo,
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "saferoute-backend",
		"version": "1.0.0",
	})
}

type planRouteRequest struct {
	Source        *domain.Coordinate `json:"source"`
	Destination   *domain.Coordinate `json:"destination"`
	UserID        string             `json:"user_id"`
	DepartureTime string             `json:"departure_time,omitempty"`
}

// PlanSafeRoute plans an optimized safe route for a traveler
func (h *Handler) PlanSafeRoute(c *fiber.Ctx) error {
	var req planRouteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Source == nil || req.Destination == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing required fields: source, destination")
	}
	if req.UserID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Missing required field: user_id")
	}

	var departure time.Time
	if req.DepartureTime != "" {
		parsed, err := time.Parse(time.RFC3339, req.DepartureTime)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "departure_time must be ISO-8601")
		}
		departure = parsed
	}

	planned, err := h.sessions.PlanRoute(c.Context(), req.UserID, *req.Source, *req.Destination, departure)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    planned,
	})
}

type updateLocationRequest struct {
	UserID   string             `json:"user_id"`
	Location *domain.Coordinate `json:"location"`
	Speed    float64            `json:"speed"`
	Accuracy float64            `json:"accuracy"`
}

// UpdateLocation ingests a live location sample and reports anomaly and
// escalation state
func (h *Handler) UpdateLocation(c *fiber.Ctx) error {
	var req updateLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.UserID == "" || req.Location == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing required fields: user_id, location")
	}
	if req.Accuracy == 0 {
		req.Accuracy = 10.0
	}

	result, err := h.sessions.UpdateLocation(c.Context(), req.UserID, *req.Location, req.Speed, req.Accuracy)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User session not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to process location update")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

type acknowledgeRequest struct {
	UserID string `json:"user_id"`
}

// Acknowledge records an external acknowledgement of the current alert
func (h *Handler) Acknowledge(c *fiber.Ctx) error {
	var req acknowledgeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.UserID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Missing required field: user_id")
	}

	if err := h.sessions.Acknowledge(req.UserID); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User session not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to acknowledge")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"acknowledged": true},
	})
}

// GetSafetyStatus returns the live safety state for a traveler
func (h *Handler) GetSafetyStatus(c *fiber.Ctx) error {
	userID := c.Params("user_id")

	status, err := h.sessions.SafetyStatus(c.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User session not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch safety status")
	}

	return c.JSON(domain.StatusResponse{
		Data:    status,
		Success: true,
	})
}

type contactsRequest struct {
	UserID   string                    `json:"user_id"`
	Contacts []domain.EmergencyContact `json:"contacts"`
}

// SetEmergencyContacts stores a traveler's emergency contacts
func (h *Handler) SetEmergencyContacts(c *fiber.Ctx) error {
	var req contactsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.UserID == "" || req.Contacts == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing required fields: user_id, contacts")
	}
	for _, contact := range req.Contacts {
		if contact.Name == "" || contact.Phone == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Each contact must have 'name' and 'phone' fields")
		}
	}

	if err := h.sessions.SetContacts(req.UserID, req.Contacts); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"status": "emergency_contacts_set",
			"count":  len(req.Contacts),
		},
	})
}

// EndSession ends a traveler's session and discards its state
func (h *Handler) EndSession(c *fiber.Ctx) error {
	userID := c.Params("user_id")

	if err := h.sessions.EndSession(userID); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User session not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to end session")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"status":  "session_ended",
			"user_id": userID,
		},
	})
}

type predictRequest struct {
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	Timestamp string   `json:"timestamp,omitempty"`
}

// PredictSafetyScore proxies a score request to the Python ML service
func (h *Handler) PredictSafetyScore(c *fiber.Ctx) error {
	var req predictRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Lat == nil || req.Lng == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing required fields: lat, lng")
	}

	at := time.Now()
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "timestamp must be ISO-8601")
		}
		at = parsed
	}

	coord := domain.Coordinate{Lat: *req.Lat, Lng: *req.Lng}
	score, err := h.mlBridge.Predict(c.Context(), coord, at)
	if err != nil {
		// Availability over precision: degrade to the default score
		score = service.DefaultSafetyScore
	}

	// Log prediction to database asynchronously
	go func() {
		bgCtx := context.Background()
		if saveErr := h.repo.SavePredictionLog(bgCtx, coord, score, at); saveErr != nil {
			log.Printf("Failed to save prediction log: %v", saveErr)
		}
	}()

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"lat":          coord.Lat,
			"lng":          coord.Lng,
			"safety_score": score,
			"timestamp":    time.Now().Format(time.RFC3339),
		},
	})
}

// GetAlertHistory returns alerts for a user within a time range
func (h *Handler) GetAlertHistory(c *fiber.Ctx) error {
	userID := c.Params("user_id")

	hours := c.QueryInt("hours", 24)
	if hours < 1 || hours > 720 { // max 30 days
		hours = 24
	}

	to := time.Now()
	from := to.Add(-time.Duration(hours) * time.Hour)

	data, err := h.repo.GetAlertHistory(c.Context(), userID, from, to)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch alert history")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
		"count":   len(data),
	})
}

// GetSystemStatus returns process-wide counters
func (h *Handler) GetSystemStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.sessions.SystemStatus(),
	})
}
