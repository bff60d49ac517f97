package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/saferoute/backend/internal/domain"
)

// DirectionsProvider returns candidate route geometries between two
// coordinates. Empty results or errors trigger the optimizer fallback.
type DirectionsProvider interface {
	Alternatives(ctx context.Context, start, end domain.Coordinate, maxCount int) ([]domain.CandidateRoute, error)
}

// ErrNoRoutes is returned when the directions provider has no usable routes
type ErrNoRoutes struct {
	Start  domain.Coordinate
	End    domain.Coordinate
	Reason string
}

func (e *ErrNoRoutes) Error() string {
	return fmt.Sprintf("directions: no routes available: %s", e.Reason)
}

// OSRMDirections fetches route alternatives from an OSRM routing server
type OSRMDirections struct {
	baseURL    string
	httpClient *http.Client
}

// NewOSRMDirections creates a new OSRM directions provider
func NewOSRMDirections(baseURL string) *OSRMDirections {
	if baseURL == "" {
		baseURL = "https://router.project-osrm.org"
	}
	return &OSRMDirections{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type osrmRouteResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Legs []struct {
			Steps []struct {
				Duration float64 `json:"duration"`
				Maneuver struct {
					Location [2]float64 `json:"location"` // lng, lat
				} `json:"maneuver"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

// Alternatives requests up to maxCount route alternatives from OSRM
func (d *OSRMDirections) Alternatives(ctx context.Context, start, end domain.Coordinate, maxCount int) ([]domain.CandidateRoute, error) {
	queryURL := fmt.Sprintf(
		"%s/route/v1/driving/%.6f,%.6f;%.6f,%.6f?alternatives=true&steps=true&overview=false",
		d.baseURL, start.Lng, start.Lat, end.Lng, end.Lat,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, &ErrNoRoutes{Start: start, End: end, Reason: err.Error()}
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		log.Printf("[OSRM] Request failed: start=(%.6f,%.6f) end=(%.6f,%.6f) err=%v", start.Lat, start.Lng, end.Lat, end.Lng, err)
		return nil, &ErrNoRoutes{Start: start, End: end, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Printf("[OSRM] API error: status=%d body=%s", resp.StatusCode, string(body))
		return nil, &ErrNoRoutes{Start: start, End: end, Reason: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	var osrmResp osrmRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&osrmResp); err != nil {
		return nil, &ErrNoRoutes{Start: start, End: end, Reason: err.Error()}
	}

	if osrmResp.Code != "Ok" || len(osrmResp.Routes) == 0 {
		return nil, &ErrNoRoutes{Start: start, End: end, Reason: fmt.Sprintf("OSRM code %q with %d routes", osrmResp.Code, len(osrmResp.Routes))}
	}

	candidates := make([]domain.CandidateRoute, 0, maxCount)
	for _, route := range osrmResp.Routes {
		if len(candidates) >= maxCount {
			break
		}
		var legs []domain.RouteLeg
		for _, leg := range route.Legs {
			for _, step := range leg.Steps {
				legs = append(legs, domain.RouteLeg{
					Start: domain.Coordinate{
						Lat: step.Maneuver.Location[1],
						Lng: step.Maneuver.Location[0],
					},
					DurationSeconds: step.Duration,
				})
			}
		}
		if len(legs) == 0 {
			continue
		}
		candidates = append(candidates, domain.CandidateRoute{Legs: legs})
	}

	if len(candidates) == 0 {
		return nil, &ErrNoRoutes{Start: start, End: end, Reason: "no legs in response"}
	}

	log.Printf("[OSRM] Alternatives fetched: start=(%.6f,%.6f) end=(%.6f,%.6f) count=%d", start.Lat, start.Lng, end.Lat, end.Lng, len(candidates))
	return candidates, nil
}
