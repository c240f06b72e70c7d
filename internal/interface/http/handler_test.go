package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sakaba-labs/shinise-navi/internal/domain/discovery"
	"github.com/sakaba-labs/shinise-navi/internal/domain/shinise"
	"github.com/sakaba-labs/shinise-navi/internal/infra/config"
	apperrors "github.com/sakaba-labs/shinise-navi/pkg/errors"
)

func TestRouter_SearchSuccess(t *testing.T) {
	svc := &stubDiscovery{
		searchFn: func(ctx context.Context, req discovery.Request) (discovery.Response, error) {
			require.Equal(t, "神田", req.Station)
			require.Equal(t, "蕎麦", req.Genre)
			require.Zero(t, req.Lat)
			require.Equal(t, 1000, req.RadiusMeters)
			return discovery.Response{Shops: []discovery.ScoredShop{
				{
					Place:      discovery.Place{ID: "p1", DisplayName: "店A"},
					AIAnalysis: shinise.ShopScore{Score: 90, Reasoning: "r", ShortSummary: "s", IsShinise: true, FoundingYear: "1950年創業"},
				},
			}}, nil
		},
	}

	rec := performRequest(t, newRouterUnderTest(t, svc), "/api/v1/search?station=%E7%A5%9E%E7%94%B0&genre=%E8%95%8E%E9%BA%A6")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Shops []discovery.ScoredShop `json:"shops"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Shops, 1)
	require.Equal(t, "店A", got.Shops[0].DisplayName)
	require.Equal(t, 90, got.Shops[0].AIAnalysis.Score)
}

func TestRouter_SearchQueryParsing(t *testing.T) {
	svc := &stubDiscovery{
		searchFn: func(ctx context.Context, req discovery.Request) (discovery.Response, error) {
			require.Equal(t, 35.69, req.Lat)
			require.Equal(t, 139.77, req.Lng)
			require.Equal(t, 500, req.RadiusMeters)
			return discovery.Response{Shops: []discovery.ScoredShop{}}, nil
		},
	}

	rec := performRequest(t, newRouterUnderTest(t, svc), "/api/v1/search?lat=35.69&lng=139.77&radius=500")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_SearchUnparsableNumbersFallBack(t *testing.T) {
	svc := &stubDiscovery{
		searchFn: func(ctx context.Context, req discovery.Request) (discovery.Response, error) {
			require.Zero(t, req.Lat)
			require.Zero(t, req.Lng)
			require.Equal(t, 1000, req.RadiusMeters)
			return discovery.Response{Shops: []discovery.ScoredShop{}}, nil
		},
	}

	rec := performRequest(t, newRouterUnderTest(t, svc), "/api/v1/search?lat=abc&lng=&radius=xyz&station=%E7%A5%9E%E7%94%B0")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_SearchMissingInput(t *testing.T) {
	svc := &stubDiscovery{
		searchFn: func(ctx context.Context, req discovery.Request) (discovery.Response, error) {
			return discovery.Response{}, apperrors.Wrap("invalid_input", "missing lat/lng or valid station", nil)
		},
	}

	rec := performRequest(t, newRouterUnderTest(t, svc), "/api/v1/search")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decodeError(t, rec.Body.Bytes()), "missing lat/lng")
}

func TestRouter_SearchStationNotFound(t *testing.T) {
	svc := &stubDiscovery{
		searchFn: func(ctx context.Context, req discovery.Request) (discovery.Response, error) {
			return discovery.Response{}, apperrors.Wrap("station_not_found", "station not found", nil)
		},
	}

	rec := performRequest(t, newRouterUnderTest(t, svc), "/api/v1/search?station=NonexistentPlaceXYZ")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, decodeError(t, rec.Body.Bytes()), "station not found")
}

func TestRouter_SearchInternalError(t *testing.T) {
	svc := &stubDiscovery{
		searchFn: func(ctx context.Context, req discovery.Request) (discovery.Response, error) {
			return discovery.Response{}, apperrors.Wrap("geocode_error", "geocoding failed", nil)
		},
	}

	rec := performRequest(t, newRouterUnderTest(t, svc), "/api/v1/search?station=%E7%A5%9E%E7%94%B0")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRouter_ShopDetails(t *testing.T) {
	svc := &stubDiscovery{
		detailsFn: func(ctx context.Context, placeID string) (*discovery.PlaceDetails, error) {
			require.Equal(t, "p1", placeID)
			return &discovery.PlaceDetails{
				Place:      discovery.Place{ID: "p1", DisplayName: "店A"},
				WebsiteURI: "https://example.com",
			}, nil
		},
	}

	rec := performRequest(t, newRouterUnderTest(t, svc), "/api/v1/shops/p1")
	require.Equal(t, http.StatusOK, rec.Code)

	var got discovery.PlaceDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "https://example.com", got.WebsiteURI)
}

func TestRouter_ShopDetailsNotFound(t *testing.T) {
	svc := &stubDiscovery{
		detailsFn: func(ctx context.Context, placeID string) (*discovery.PlaceDetails, error) {
			return nil, apperrors.Wrap("shop_not_found", "shop not found", nil)
		},
	}

	rec := performRequest(t, newRouterUnderTest(t, svc), "/api/v1/shops/missing")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_ShopGuide(t *testing.T) {
	svc := &stubDiscovery{
		guideFn: func(ctx context.Context, placeID string) (shinise.ShopGuide, error) {
			return shinise.ShopGuide{HistoryBackground: "明治創業"}, nil
		},
	}

	rec := performRequest(t, newRouterUnderTest(t, svc), "/api/v1/shops/p1/guide")
	require.Equal(t, http.StatusOK, rec.Code)

	var got shinise.ShopGuide
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "明治創業", got.HistoryBackground)
}

func TestRouter_PhotoRedirect(t *testing.T) {
	rec := performRequest(t, newRouterUnderTest(t, &stubDiscovery{}), "/api/v1/photos/places/p1/photos/ref123")
	require.Equal(t, http.StatusFound, rec.Code)

	location := rec.Header().Get("Location")
	require.Contains(t, location, "https://places.googleapis.com/v1/places/p1/photos/ref123/media")
	require.Contains(t, location, "maxHeightPx=400")
	require.Contains(t, location, "key=pub-key")
}

func TestRouter_Healthz(t *testing.T) {
	rec := performRequest(t, newRouterUnderTest(t, &stubDiscovery{}), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_IndexPage(t *testing.T) {
	rec := performRequest(t, newRouterUnderTest(t, &stubDiscovery{}), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "老舗")
}

func performRequest(t *testing.T, server *http.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, svc discovery.Service) *http.Server {
	t.Helper()
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
		Places: config.PlacesConfig{
			BaseURL:      "https://places.googleapis.com/v1",
			PublicAPIKey: "pub-key",
		},
	}
	handler := NewHandler(svc, cfg, newTestLogger())
	return NewRouter(cfg, handler)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeError(t *testing.T, body []byte) string {
	t.Helper()
	var payload struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NotEmpty(t, payload.Error)
	return payload.Error
}

type stubDiscovery struct {
	searchFn  func(ctx context.Context, req discovery.Request) (discovery.Response, error)
	detailsFn func(ctx context.Context, placeID string) (*discovery.PlaceDetails, error)
	guideFn   func(ctx context.Context, placeID string) (shinise.ShopGuide, error)
}

func (s *stubDiscovery) Search(ctx context.Context, req discovery.Request) (discovery.Response, error) {
	if s.searchFn == nil {
		return discovery.Response{}, nil
	}
	return s.searchFn(ctx, req)
}

func (s *stubDiscovery) ShopDetails(ctx context.Context, placeID string) (*discovery.PlaceDetails, error) {
	if s.detailsFn == nil {
		return nil, apperrors.Wrap("shop_not_found", "shop not found", nil)
	}
	return s.detailsFn(ctx, placeID)
}

func (s *stubDiscovery) ShopGuide(ctx context.Context, placeID string) (shinise.ShopGuide, error) {
	if s.guideFn == nil {
		return shinise.ShopGuide{}, apperrors.Wrap("shop_not_found", "shop not found", nil)
	}
	return s.guideFn(ctx, placeID)
}
