package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saferoute/backend/internal/domain"
)

// PostgresRepository implements domain.EventRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// SavePlannedRoute persists a planned route to PostgreSQL
func (r *PostgresRepository) SavePlannedRoute(ctx context.Context, route domain.PlannedRoute) error {
	waypoints, err := json.Marshal(route.Route.Points)
	if err != nil {
		return fmt.Errorf("postgres: failed to marshal waypoints: %w", err)
	}

	query := `
		INSERT INTO planned_routes (
			route_id, user_id, total_safety_score, total_travel_time,
			route_confidence, waypoints, start_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.pool.Exec(ctx, query,
		route.RouteID, route.UserID,
		route.Route.TotalSafetyScore, route.Route.TotalTravelTime, route.Route.RouteConfidence,
		waypoints, route.StartTime,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save planned route: %w", err)
	}

	return nil
}

// SaveAlert persists an escalation alert to PostgreSQL
func (r *PostgresRepository) SaveAlert(ctx context.Context, userID string, alert domain.Alert) error {
	query := `
		INSERT INTO alerts (
			user_id, phase, message, lat, lng, safety_score,
			contacts_notified, responders_alerted, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		userID, string(alert.Phase), alert.Message,
		alert.Location.Lat, alert.Location.Lng, alert.SafetyScore,
		alert.ContactsNotified, alert.RespondersAlerted, alert.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save alert: %w", err)
	}

	return nil
}

// SavePredictionLog persists a safety-score prediction to PostgreSQL
func (r *PostgresRepository) SavePredictionLog(ctx context.Context, coord domain.Coordinate, score float64, at time.Time) error {
	query := `
		INSERT INTO prediction_logs (lat, lng, safety_score, predicted_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query, coord.Lat, coord.Lng, score, at)
	if err != nil {
		return fmt.Errorf("postgres: failed to save prediction log: %w", err)
	}

	return nil
}

// GetAlertHistory retrieves alerts for a user from PostgreSQL
func (r *PostgresRepository) GetAlertHistory(ctx context.Context, userID string, from, to time.Time) ([]domain.Alert, error) {
	query := `
		SELECT phase, message, lat, lng, safety_score,
			   contacts_notified, responders_alerted, created_at
		FROM alerts
		WHERE user_id = $1 AND created_at BETWEEN $2 AND $3
		ORDER BY created_at DESC
		LIMIT 100
	`

	rows, err := r.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query alerts: %w", err)
	}
	defer rows.Close()

	var results []domain.Alert
	for rows.Next() {
		var a domain.Alert
		var phase string
		err := rows.Scan(
			&phase, &a.Message, &a.Location.Lat, &a.Location.Lng, &a.SafetyScore,
			&a.ContactsNotified, &a.RespondersAlerted, &a.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan alert row: %w", err)
		}
		a.Phase = domain.AlertPhase(phase)
		results = append(results, a)
	}

	return results, nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
