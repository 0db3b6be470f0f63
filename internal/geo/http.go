package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// HTTPProvider resolves coordinates from an IP-geolocation style JSON
// endpoint returning {"lat": ..., "lon": ...}. The request is one-shot
// with a bounded timeout; there is no retry.
type HTTPProvider struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPProvider creates an HTTP geolocation provider for the given
// endpoint with the given request timeout.
func NewHTTPProvider(endpoint string, timeout time.Duration, logger *slog.Logger) *HTTPProvider {
	return &HTTPProvider{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// locateResponse covers the common field spellings of public
// geolocation endpoints
type locateResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (p *HTTPProvider) Locate(ctx context.Context) (Position, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return Position{}, fmt.Errorf("failed to create geolocation request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	startTime := time.Now()

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Position{}, fmt.Errorf("geolocation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Position{}, fmt.Errorf("geolocation request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Position{}, fmt.Errorf("failed to read geolocation response: %w", err)
	}

	var loc locateResponse
	if err := json.Unmarshal(body, &loc); err != nil {
		return Position{}, fmt.Errorf("failed to parse geolocation response: %w", err)
	}

	if loc.Lat < -90 || loc.Lat > 90 || loc.Lon < -180 || loc.Lon > 180 {
		return Position{}, fmt.Errorf("geolocation response out of range: lat=%f lon=%f", loc.Lat, loc.Lon)
	}

	p.logger.Debug("Geolocation resolved",
		"latitude", loc.Lat,
		"longitude", loc.Lon,
		"duration_ms", time.Since(startTime).Milliseconds())

	return Position{Latitude: loc.Lat, Longitude: loc.Lon}, nil
}
