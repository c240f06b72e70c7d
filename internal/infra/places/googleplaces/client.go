package googleplaces

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sakaba-labs/shinise-navi/internal/domain/discovery"
)

const defaultBaseURL = "https://places.googleapis.com/v1"

// Field masks keep payload size and billing down. The search mask covers
// the card grid; the detail mask adds what the evaluator and detail view
// need, reviews above all.
const (
	searchFieldMask = "places.id,places.displayName,places.formattedAddress,places.location,places.types,places.rating,places.userRatingCount,places.primaryType,places.businessStatus,places.photos"
	detailFieldMask = "id,displayName,formattedAddress,location,types,rating,userRatingCount,primaryType,businessStatus,photos,websiteUri,googleMapsUri,regularOpeningHours,editorialSummary,reviews"
)

// Client wraps the Places API (New) v1 surface used by the pipeline.
type Client struct {
	apiKey       string
	baseURL      string
	languageCode string
	httpClient   *http.Client
}

// NewClient builds a Places API client.
func NewClient(apiKey, baseURL, languageCode string) *Client {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if strings.TrimSpace(languageCode) == "" {
		languageCode = "ja"
	}
	return &Client{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(trimmed, "/"),
		languageCode: languageCode,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SearchNearby runs a radius search around the coordinate, capped at 20
// results. The circle is a hard restriction.
func (c *Client) SearchNearby(ctx context.Context, lat, lng float64, radiusMeters int, includedTypes []string) ([]discovery.Place, error) {
	body := nearbyRequest{
		IncludedTypes:  includedTypes,
		MaxResultCount: 20,
		LanguageCode:   c.languageCode,
		LocationRestriction: circleArea{
			Circle: circle{
				Center: latLngWire{Latitude: lat, Longitude: lng},
				Radius: float64(radiusMeters),
			},
		},
	}
	return c.search(ctx, "/places:searchNearby", body)
}

// SearchByText runs a free-text search with a location bias (not a hard
// restriction) of the given radius around the coordinate.
func (c *Client) SearchByText(ctx context.Context, query string, lat, lng float64, radiusMeters int) ([]discovery.Place, error) {
	body := textRequest{
		TextQuery:      query,
		MaxResultCount: 20,
		LanguageCode:   c.languageCode,
		LocationBias: circleArea{
			Circle: circle{
				Center: latLngWire{Latitude: lat, Longitude: lng},
				Radius: float64(radiusMeters),
			},
		},
	}
	return c.search(ctx, "/places:searchText", body)
}

func (c *Client) search(ctx context.Context, path string, body any) ([]discovery.Place, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode places request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build places request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", searchFieldMask)

	data, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var raw searchResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode places response: %w", err)
	}

	places := make([]discovery.Place, 0, len(raw.Places))
	for _, p := range raw.Places {
		places = append(places, p.toPlace())
	}
	return places, nil
}

// GetPlaceDetails fetches the expanded record for a single place.
func (c *Client) GetPlaceDetails(ctx context.Context, placeID string) (*discovery.PlaceDetails, error) {
	endpoint := fmt.Sprintf("%s/places/%s?languageCode=%s", c.baseURL, placeID, c.languageCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build place details request: %w", err)
	}
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", detailFieldMask)

	data, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var raw detailsWire
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode place details: %w", err)
	}

	details := raw.toDetails()
	return &details, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("places request error: status=%d body=%s", resp.StatusCode, string(payload))
	}
	return io.ReadAll(resp.Body)
}

type nearbyRequest struct {
	IncludedTypes       []string   `json:"includedTypes,omitempty"`
	MaxResultCount      int        `json:"maxResultCount"`
	LanguageCode        string     `json:"languageCode"`
	LocationRestriction circleArea `json:"locationRestriction"`
}

type textRequest struct {
	TextQuery      string     `json:"textQuery"`
	MaxResultCount int        `json:"maxResultCount"`
	LanguageCode   string     `json:"languageCode"`
	LocationBias   circleArea `json:"locationBias"`
}

type circleArea struct {
	Circle circle `json:"circle"`
}

type circle struct {
	Center latLngWire `json:"center"`
	Radius float64    `json:"radius"`
}

type latLngWire struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type searchResponse struct {
	Places []placeWire `json:"places"`
}

type placeWire struct {
	ID               string        `json:"id"`
	DisplayName      localizedText `json:"displayName"`
	FormattedAddress string        `json:"formattedAddress"`
	Location         latLngWire    `json:"location"`
	Types            []string      `json:"types"`
	Rating           float64       `json:"rating"`
	UserRatingCount  int           `json:"userRatingCount"`
	PrimaryType      string        `json:"primaryType"`
	BusinessStatus   string        `json:"businessStatus"`
	Photos           []photoWire   `json:"photos"`
}

type localizedText struct {
	Text string `json:"text"`
}

type photoWire struct {
	Name string `json:"name"`
}

type detailsWire struct {
	placeWire
	WebsiteURI          string            `json:"websiteUri"`
	GoogleMapsURI       string            `json:"googleMapsUri"`
	RegularOpeningHours openingHoursWire  `json:"regularOpeningHours"`
	EditorialSummary    localizedText     `json:"editorialSummary"`
	Reviews             []reviewWire      `json:"reviews"`
}

type openingHoursWire struct {
	WeekdayDescriptions []string `json:"weekdayDescriptions"`
}

type reviewWire struct {
	Text              localizedText `json:"text"`
	Rating            float64       `json:"rating"`
	AuthorAttribution struct {
		DisplayName string `json:"displayName"`
	} `json:"authorAttribution"`
	PublishTime string `json:"publishTime"`
}

func (w placeWire) toPlace() discovery.Place {
	photos := make([]discovery.Photo, 0, len(w.Photos))
	for _, p := range w.Photos {
		photos = append(photos, discovery.Photo{Name: p.Name})
	}
	return discovery.Place{
		ID:               w.ID,
		DisplayName:      w.DisplayName.Text,
		FormattedAddress: w.FormattedAddress,
		Location: discovery.LatLng{
			Latitude:  w.Location.Latitude,
			Longitude: w.Location.Longitude,
		},
		Types:           w.Types,
		Rating:          w.Rating,
		UserRatingCount: w.UserRatingCount,
		PrimaryType:     w.PrimaryType,
		BusinessStatus:  w.BusinessStatus,
		Photos:          photos,
	}
}

func (w detailsWire) toDetails() discovery.PlaceDetails {
	reviews := make([]discovery.Review, 0, len(w.Reviews))
	for _, r := range w.Reviews {
		reviews = append(reviews, discovery.Review{
			Text:        r.Text.Text,
			Rating:      r.Rating,
			AuthorName:  r.AuthorAttribution.DisplayName,
			PublishTime: r.PublishTime,
		})
	}
	return discovery.PlaceDetails{
		Place:            w.placeWire.toPlace(),
		WebsiteURI:       w.WebsiteURI,
		GoogleMapsURI:    w.GoogleMapsURI,
		OpeningHours:     w.RegularOpeningHours.WeekdayDescriptions,
		EditorialSummary: w.EditorialSummary.Text,
		Reviews:          reviews,
	}
}
