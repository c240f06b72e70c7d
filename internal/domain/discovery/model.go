package discovery

import "github.com/sakaba-labs/shinise-navi/internal/domain/shinise"

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Photo references a provider hosted image.
type Photo struct {
	Name string `json:"name"`
}

// Place is the normalized record produced from provider search responses.
// Instances are immutable once built and never outlive the request.
type Place struct {
	ID               string   `json:"id"`
	DisplayName      string   `json:"displayName"`
	FormattedAddress string   `json:"formattedAddress"`
	Location         LatLng   `json:"location"`
	Types            []string `json:"types,omitempty"`
	Rating           float64  `json:"rating,omitempty"`
	UserRatingCount  int      `json:"userRatingCount,omitempty"`
	PrimaryType      string   `json:"primaryType,omitempty"`
	BusinessStatus   string   `json:"businessStatus,omitempty"`
	Photos           []Photo  `json:"photos,omitempty"`
}

// Review is a single piece of review text attached to place details.
type Review struct {
	Text        string  `json:"text,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	AuthorName  string  `json:"authorName,omitempty"`
	PublishTime string  `json:"publishTime,omitempty"`
}

// PlaceDetails extends Place with the fields fetched on demand for the
// subset of results selected for scoring and for the detail view.
type PlaceDetails struct {
	Place
	WebsiteURI       string   `json:"websiteUri,omitempty"`
	GoogleMapsURI    string   `json:"googleMapsUri,omitempty"`
	OpeningHours     []string `json:"openingHours,omitempty"`
	EditorialSummary string   `json:"editorialSummary,omitempty"`
	Reviews          []Review `json:"reviews,omitempty"`
}

// ReviewTexts extracts non empty review bodies for the evaluator prompt.
func (d *PlaceDetails) ReviewTexts() []string {
	texts := make([]string, 0, len(d.Reviews))
	for _, r := range d.Reviews {
		if r.Text != "" {
			texts = append(texts, r.Text)
		}
	}
	return texts
}

// ScoredShop pairs a place with its evaluation and is the unit returned to
// the presentation layer. Every returned shop carries exactly one score,
// computed or sentinel.
type ScoredShop struct {
	Place
	AIAnalysis shinise.ShopScore `json:"aiAnalysis"`
}

// Request captures the search endpoint inputs.
type Request struct {
	Lat          float64
	Lng          float64
	RadiusMeters int
	Station      string
	Genre        string
}

// Response is serialized back to API consumers.
type Response struct {
	Shops []ScoredShop `json:"shops"`
}

// Config tunes the pipeline limits.
type Config struct {
	DefaultRadiusMeters   int
	HydrationRadiusMeters int
	AIScoreLimit          int
	LegacyScoreLimit      int
	MaxConcurrentCalls    int
	IncludedTypes         []string
}
