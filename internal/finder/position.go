package finder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pfrederiksen/nearby-events/internal/geo"
)

var (
	// ErrLocationDenied means the position source refused to provide a position
	ErrLocationDenied = errors.New("location access denied")
	// ErrLocationUnavailable means no position could be obtained in time
	ErrLocationUnavailable = errors.New("location unavailable")
)

// DefaultIPLocateURL is an ip-api.com compatible endpoint
const DefaultIPLocateURL = "http://ip-api.com/json/?fields=status,message,lat,lon"

// PositionProvider supplies the device position
type PositionProvider interface {
	Position(ctx context.Context) (geo.Point, error)
}

// StaticPosition is a fixed, user-supplied position
type StaticPosition geo.Point

// Position returns the fixed point
func (p StaticPosition) Position(ctx context.Context) (geo.Point, error) {
	if err := ctx.Err(); err != nil {
		return geo.Point{}, fmt.Errorf("%w: %w", ErrLocationUnavailable, err)
	}
	pt := geo.Point(p)
	if err := pt.Validate(); err != nil {
		return geo.Point{}, fmt.Errorf("%w: %w", ErrLocationUnavailable, err)
	}
	return pt, nil
}

// IPPosition approximates the device position through an IP geolocation service
type IPPosition struct {
	client    *http.Client
	url       string
	userAgent string
}

// NewIPPosition creates an IPPosition. An empty url uses DefaultIPLocateURL.
func NewIPPosition(url string, timeout time.Duration, userAgent string) *IPPosition {
	if url == "" {
		url = DefaultIPLocateURL
	}
	return &IPPosition{
		client:    &http.Client{Timeout: timeout},
		url:       url,
		userAgent: userAgent,
	}
}

type ipResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

// Position queries the geolocation service
func (p *IPPosition) Position(ctx context.Context) (geo.Point, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return geo.Point{}, fmt.Errorf("creating request: %w", err)
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return geo.Point{}, fmt.Errorf("%w: %w", ErrLocationUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return geo.Point{}, fmt.Errorf("%w: status code %d", ErrLocationDenied, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return geo.Point{}, fmt.Errorf("%w: unexpected status code: %d", ErrLocationUnavailable, resp.StatusCode)
	}

	var body ipResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return geo.Point{}, fmt.Errorf("%w: decoding response: %w", ErrLocationUnavailable, err)
	}
	if body.Status != "" && body.Status != "success" {
		return geo.Point{}, fmt.Errorf("%w: %s", ErrLocationUnavailable, body.Message)
	}
	if body.Lat == nil || body.Lon == nil {
		return geo.Point{}, fmt.Errorf("%w: response has no coordinates", ErrLocationUnavailable)
	}

	pt := geo.Point{Lat: *body.Lat, Lon: *body.Lon}
	if err := pt.Validate(); err != nil {
		return geo.Point{}, fmt.Errorf("%w: %w", ErrLocationUnavailable, err)
	}
	return pt, nil
}
