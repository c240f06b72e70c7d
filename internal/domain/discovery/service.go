package discovery

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sakaba-labs/shinise-navi/internal/domain/shinise"
	apperrors "github.com/sakaba-labs/shinise-navi/pkg/errors"
)

// ErrNotFound marks an address string the geocoder could not resolve.
var ErrNotFound = errors.New("address not found")

// Service exposes shop discovery capabilities.
type Service interface {
	Search(ctx context.Context, req Request) (Response, error)
	ShopDetails(ctx context.Context, placeID string) (*PlaceDetails, error)
	ShopGuide(ctx context.Context, placeID string) (shinise.ShopGuide, error)
}

// PlaceSearcher is the provider surface the pipeline depends on.
type PlaceSearcher interface {
	SearchNearby(ctx context.Context, lat, lng float64, radiusMeters int, includedTypes []string) ([]Place, error)
	SearchByText(ctx context.Context, query string, lat, lng float64, radiusMeters int) ([]Place, error)
	GetPlaceDetails(ctx context.Context, placeID string) (*PlaceDetails, error)
}

// Geocoder resolves a station name to a coordinate.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (LatLng, error)
}

type service struct {
	cfg       Config
	places    PlaceSearcher
	geocoder  Geocoder
	evaluator shinise.Evaluator
	logger    *slog.Logger
}

// NewService wires up the discovery domain.
func NewService(cfg Config, places PlaceSearcher, geocoder Geocoder, evaluator shinise.Evaluator, logger *slog.Logger) Service {
	return &service{
		cfg:       cfg,
		places:    places,
		geocoder:  geocoder,
		evaluator: evaluator,
		logger:    logger.With("component", "discovery.service"),
	}
}

// Search runs the full pipeline: resolve the target coordinate, try
// AI-driven candidate discovery, fall back to a direct provider search,
// score a bounded subset and return everything sorted by score descending.
// Upstream failures degrade to empty or sentinel values; only input and
// geocoding problems surface as errors.
func (s *service) Search(ctx context.Context, req Request) (Response, error) {
	station := strings.TrimSpace(req.Station)
	genre := strings.TrimSpace(req.Genre)

	target := LatLng{Latitude: req.Lat, Longitude: req.Lng}
	if (target.Latitude == 0 || target.Longitude == 0) && station != "" {
		resolved, err := s.geocoder.Resolve(ctx, station)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return Response{}, apperrors.Wrap("station_not_found", "station not found", err)
			}
			return Response{}, apperrors.Wrap("geocode_error", "geocoding failed", err)
		}
		target = resolved
		s.logger.Info("station resolved", "station", station, "lat", target.Latitude, "lng", target.Longitude)
	}
	if target.Latitude == 0 || target.Longitude == 0 {
		return Response{}, apperrors.Wrap("invalid_input", "missing lat/lng or valid station", nil)
	}

	radius := req.RadiusMeters
	if radius <= 0 {
		radius = s.cfg.DefaultRadiusMeters
	}

	var (
		places    []Place
		aiSourced bool
	)

	if station != "" {
		candidates := s.evaluator.FindShiniseCandidates(ctx, station, genre)
		if len(candidates) > 0 {
			aiSourced = true
			places = s.hydrateCandidates(ctx, candidates, target)
			s.logger.Info("ai candidates hydrated", "station", station, "candidates", len(candidates), "hydrated", len(places))
		} else {
			s.logger.Warn("ai discovery returned no candidates, falling back to direct search", "station", station)
		}
	}

	if len(places) == 0 {
		aiSourced = false
		places = s.directSearch(ctx, target, radius, genre)
	}

	if len(places) == 0 {
		return Response{Shops: []ScoredShop{}}, nil
	}

	shops := s.scoreShops(ctx, places, aiSourced)
	sort.SliceStable(shops, func(i, j int) bool {
		return shops[i].AIAnalysis.Score > shops[j].AIAnalysis.Score
	})

	return Response{Shops: shops}, nil
}

// hydrateCandidates resolves each bare shop name into a place via a text
// search biased around the target. Candidates that resolve to nothing are
// dropped; input order is preserved for the survivors.
func (s *service) hydrateCandidates(ctx context.Context, candidates []string, target LatLng) []Place {
	hydrated := make([]*Place, len(candidates))

	var eg errgroup.Group
	eg.SetLimit(s.cfg.MaxConcurrentCalls)
	for i, name := range candidates {
		i, name := i, name
		eg.Go(func() error {
			results, err := s.places.SearchByText(ctx, name, target.Latitude, target.Longitude, s.cfg.HydrationRadiusMeters)
			if err != nil {
				s.logger.Error("candidate hydration failed", "candidate", name, "error", err)
				return nil
			}
			if len(results) > 0 {
				hydrated[i] = &results[0]
			}
			return nil
		})
	}
	_ = eg.Wait()

	places := make([]Place, 0, len(candidates))
	for _, p := range hydrated {
		if p != nil {
			places = append(places, *p)
		}
	}
	return places
}

func (s *service) directSearch(ctx context.Context, target LatLng, radius int, genre string) []Place {
	var (
		places []Place
		err    error
	)
	if genre != "" {
		places, err = s.places.SearchByText(ctx, genre, target.Latitude, target.Longitude, radius)
	} else {
		places, err = s.places.SearchNearby(ctx, target.Latitude, target.Longitude, radius, s.cfg.IncludedTypes)
	}
	if err != nil {
		s.logger.Error("direct search failed", "genre", genre, "error", err)
		return nil
	}
	return places
}

// scoreShops evaluates the first N places and attaches the unjudged
// sentinel to the remainder. AI-sourced lists are already filtered, so more
// of them are worth the scoring cost.
func (s *service) scoreShops(ctx context.Context, places []Place, aiSourced bool) []ScoredShop {
	limit := s.cfg.LegacyScoreLimit
	if aiSourced {
		limit = s.cfg.AIScoreLimit
	}
	if limit > len(places) {
		limit = len(places)
	}

	shops := make([]ScoredShop, len(places))

	var eg errgroup.Group
	eg.SetLimit(s.cfg.MaxConcurrentCalls)
	for i, place := range places[:limit] {
		i, place := i, place
		eg.Go(func() error {
			shops[i] = ScoredShop{Place: place, AIAnalysis: s.scoreOne(ctx, place)}
			return nil
		})
	}
	_ = eg.Wait()

	for i, place := range places[limit:] {
		shops[limit+i] = ScoredShop{Place: place, AIAnalysis: shinise.UnjudgedScore()}
	}
	return shops
}

func (s *service) scoreOne(ctx context.Context, place Place) shinise.ShopScore {
	details, err := s.places.GetPlaceDetails(ctx, place.ID)
	if err != nil || details == nil {
		s.logger.Error("details fetch failed, attaching sentinel score", "place", place.ID, "error", err)
		return shinise.DetailsUnavailableScore()
	}
	return s.evaluator.ScoreShop(ctx, shinise.ShopFacts{
		Name:    place.DisplayName,
		Address: place.FormattedAddress,
		Types:   place.Types,
		Reviews: details.ReviewTexts(),
	})
}

// ShopDetails backs the shop detail view.
func (s *service) ShopDetails(ctx context.Context, placeID string) (*PlaceDetails, error) {
	details, err := s.places.GetPlaceDetails(ctx, placeID)
	if err != nil {
		return nil, apperrors.Wrap("shop_not_found", "shop not found", err)
	}
	return details, nil
}

// ShopGuide generates the narrative guide for one shop.
func (s *service) ShopGuide(ctx context.Context, placeID string) (shinise.ShopGuide, error) {
	details, err := s.places.GetPlaceDetails(ctx, placeID)
	if err != nil {
		return shinise.ShopGuide{}, apperrors.Wrap("shop_not_found", "shop not found", err)
	}
	guide := s.evaluator.GenerateGuide(ctx, shinise.ShopFacts{
		Name:    details.DisplayName,
		Address: details.FormattedAddress,
		Types:   details.Types,
		Reviews: details.ReviewTexts(),
	})
	return guide, nil
}
