package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Resolver turns coordinates into a human-readable place name.
// Consumed as a black box; failures never block ping creation.
type Resolver interface {
	ResolveName(ctx context.Context, lat, lng float64) (string, error)
}

// Default is set at startup. Nil means place names stay empty.
var Default Resolver

// NominatimResolver resolves names through an OSM Nominatim-compatible
// reverse geocoding endpoint.
type NominatimResolver struct {
	baseURL    string
	httpClient *http.Client
}

func NewNominatimResolver() *NominatimResolver {
	baseURL := os.Getenv("GEOCODE_API_URL")
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	return &NominatimResolver{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (r *NominatimResolver) ResolveName(ctx context.Context, lat, lng float64) (string, error) {
	reqURL := fmt.Sprintf("%s/reverse?format=jsonv2&lat=%.6f&lon=%.6f", r.baseURL, lat, lng)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("create geocode request: %w", err)
	}
	req.Header.Set("User-Agent", "pinghunt/1.0")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read geocode response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("geocode API error %d", resp.StatusCode)
	}

	var parsed struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode geocode response: %w", err)
	}
	return parsed.DisplayName, nil
}
