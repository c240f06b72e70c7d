package main

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakaba-labs/shinise-navi/internal/domain/discovery"
	"github.com/sakaba-labs/shinise-navi/internal/domain/shinise"
	"github.com/sakaba-labs/shinise-navi/internal/infra/config"
	"github.com/sakaba-labs/shinise-navi/internal/infra/geocode/googlegeo"
	"github.com/sakaba-labs/shinise-navi/internal/infra/llm/vertex"
	"github.com/sakaba-labs/shinise-navi/internal/infra/places/googleplaces"
)

func provideDiscoveryConfig(cfg *config.Config) discovery.Config {
	return discovery.Config{
		DefaultRadiusMeters:   cfg.Search.DefaultRadiusMeters,
		HydrationRadiusMeters: cfg.Search.HydrationRadiusMeters,
		AIScoreLimit:          cfg.Search.AIScoreLimit,
		LegacyScoreLimit:      cfg.Search.LegacyScoreLimit,
		MaxConcurrentCalls:    cfg.Search.MaxConcurrentCalls,
		IncludedTypes:         cfg.Search.IncludedTypes,
	}
}

func provideShiniseConfig(cfg *config.Config) shinise.Config {
	return shinise.Config{
		DefaultGenre: cfg.Search.DefaultGenre,
	}
}

func providePlacesClient(cfg *config.Config, logger *slog.Logger) *googleplaces.Client {
	if strings.TrimSpace(cfg.Places.APIKey) == "" {
		logger.Warn("GOOGLE_MAPS_API_KEY is not set, provider calls will fail")
	}
	return googleplaces.NewClient(cfg.Places.APIKey, cfg.Places.BaseURL, cfg.Places.LanguageCode)
}

func provideGeocodeClient(cfg *config.Config) *googlegeo.Client {
	return googlegeo.NewClient(cfg.Places.APIKey, cfg.Geocode.BaseURL)
}

// provideTextGenerator returns nil when no project is configured; the
// evaluator then takes its unconfigured fallback path instead of failing
// the whole process at startup.
func provideTextGenerator(cfg *config.Config, logger *slog.Logger) shinise.TextGenerator {
	if strings.TrimSpace(cfg.Vertex.Project) == "" {
		logger.Warn("GOOGLE_CLOUD_PROJECT is not set, AI features disabled")
		return nil
	}
	client, err := vertex.NewClient(context.Background(), cfg.Vertex.Project, cfg.Vertex.Location, cfg.Vertex.Model, cfg.Vertex.MaxOutputTokens, logger)
	if err != nil {
		logger.Error("vertex client unavailable, AI features disabled", "error", err)
		return nil
	}
	logger.Info("vertex client initialized", "project", cfg.Vertex.Project, "location", cfg.Vertex.Location, "model", cfg.Vertex.Model)
	return client
}
