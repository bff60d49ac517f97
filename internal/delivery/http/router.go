package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/saferoute/backend/internal/service"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, sessions *service.SessionManager, mlBridge *service.MLBridge, repo service.EventRepository) {
	handler := NewHandler(sessions, mlBridge, repo)

	// Health check
	app.Get("/health", handler.HealthCheck)

	// API v1 routes
	api := app.Group("/api/v1")
	{
		// Journey lifecycle
		api.Post("/plan-safe-route", handler.PlanSafeRoute)
		api.Post("/update-location", handler.UpdateLocation)
		api.Post("/acknowledge", handler.Acknowledge)
		api.Get("/safety-status/:user_id", handler.GetSafetyStatus)
		api.Post("/emergency-contacts", handler.SetEmergencyContacts)
		api.Post("/end-session/:user_id", handler.EndSession)

		// Prediction endpoint (proxies to Python ML service)
		api.Post("/predict-safety-score", handler.PredictSafetyScore)

		// Monitoring
		api.Get("/alert-history/:user_id", handler.GetAlertHistory)
		api.Get("/system-status", handler.GetSystemStatus)
	}
}
