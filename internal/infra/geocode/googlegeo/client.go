package googlegeo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sakaba-labs/shinise-navi/internal/domain/discovery"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// ErrNotFound marks an address string the geocoder could not resolve.
// It is the discovery domain's sentinel so both packages agree on identity.
var ErrNotFound = discovery.ErrNotFound

// Client resolves free-text addresses (station names) into coordinates.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a Geocoding API client.
func NewClient(apiKey, baseURL string) *Client {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: trimmed,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Resolve returns the first matching coordinate for the address, or
// ErrNotFound when the geocoder knows nothing about it.
func (c *Client) Resolve(ctx context.Context, address string) (discovery.LatLng, error) {
	endpoint := fmt.Sprintf("%s?address=%s&key=%s", c.baseURL, url.QueryEscape(address), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return discovery.LatLng{}, fmt.Errorf("build geocode request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return discovery.LatLng{}, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return discovery.LatLng{}, fmt.Errorf("geocode request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return discovery.LatLng{}, fmt.Errorf("read geocode response: %w", err)
	}

	var raw geocodeResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return discovery.LatLng{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(raw.Results) == 0 {
		return discovery.LatLng{}, ErrNotFound
	}

	loc := raw.Results[0].Geometry.Location
	return discovery.LatLng{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}

type geocodeResponse struct {
	Status  string          `json:"status"`
	Results []geocodeResult `json:"results"`
}

type geocodeResult struct {
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}
