package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/saferoute/backend/internal/domain"
)

// SafetyPredictor scores the safety of a coordinate at a point in time.
// Scores are in [0,100], higher is safer. Implementations may fail;
// callers fall back to DefaultSafetyScore.
type SafetyPredictor interface {
	Predict(ctx context.Context, coord domain.Coordinate, at time.Time) (float64, error)
}

// MLBridge handles communication with the Python safety-scoring service
type MLBridge struct {
	serviceURL string
	httpClient *http.Client
}

// NewMLBridge creates a new ML bridge
func NewMLBridge(serviceURL string) *MLBridge {
	return &MLBridge{
		serviceURL: serviceURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type predictRequest struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Timestamp string  `json:"timestamp,omitempty"`
}

type predictResponse struct {
	Success bool `json:"success"`
	Data    struct {
		SafetyScore float64 `json:"safety_score"`
	} `json:"data"`
}

// Predict calls the Python ML service for a safety score
func (b *MLBridge) Predict(ctx context.Context, coord domain.Coordinate, at time.Time) (float64, error) {
	reqBody := predictRequest{Lat: coord.Lat, Lng: coord.Lng}
	if !at.IsZero() {
		reqBody.Timestamp = at.Format(time.RFC3339)
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return 0, fmt.Errorf("ml_bridge: failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/predict-safety-score", b.serviceURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("ml_bridge: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("ml_bridge: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("ml_bridge: service returned status %d", resp.StatusCode)
	}

	var prediction predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return 0, fmt.Errorf("ml_bridge: failed to decode response: %w", err)
	}

	return prediction.Data.SafetyScore, nil
}

// Health checks ML service connectivity
func (b *MLBridge) Health(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", b.serviceURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("ml_bridge: failed to create health request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ml_bridge: health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ml_bridge: health check returned status %d", resp.StatusCode)
	}

	return nil
}
