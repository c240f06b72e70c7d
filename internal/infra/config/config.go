package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Places  PlacesConfig  `yaml:"places"`
	Geocode GeocodeConfig `yaml:"geocode"`
	Vertex  VertexConfig  `yaml:"vertex"`
	Search  SearchConfig  `yaml:"search"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

// PlacesConfig holds Places API (New) credentials and defaults.
type PlacesConfig struct {
	APIKey       string `yaml:"apiKey"`
	PublicAPIKey string `yaml:"publicApiKey"`
	BaseURL      string `yaml:"baseUrl"`
	LanguageCode string `yaml:"languageCode"`
}

// GeocodeConfig points at the Geocoding API used for station resolution.
type GeocodeConfig struct {
	BaseURL string `yaml:"baseUrl"`
}

// VertexConfig identifies the generative model deployment.
type VertexConfig struct {
	Project         string `yaml:"project"`
	Location        string `yaml:"location"`
	Model           string `yaml:"model"`
	MaxOutputTokens int    `yaml:"maxOutputTokens"`
}

// SearchConfig drives the discovery pipeline.
type SearchConfig struct {
	DefaultRadiusMeters   int      `yaml:"defaultRadiusMeters"`
	HydrationRadiusMeters int      `yaml:"hydrationRadiusMeters"`
	AIScoreLimit          int      `yaml:"aiScoreLimit"`
	LegacyScoreLimit      int      `yaml:"legacyScoreLimit"`
	MaxConcurrentCalls    int      `yaml:"maxConcurrentCalls"`
	IncludedTypes         []string `yaml:"includedTypes"`
	DefaultGenre          string   `yaml:"defaultGenre"`
}

// Load reads configuration from an optional .env file, a YAML file and
// environment variables, in that order of increasing precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("GOOGLE_MAPS_API_KEY"); v != "" {
		cfg.Places.APIKey = v
	}
	if v := os.Getenv("PUBLIC_GOOGLE_MAPS_API_KEY"); v != "" {
		cfg.Places.PublicAPIKey = v
	}
	if v := os.Getenv("PLACES_BASE_URL"); v != "" {
		cfg.Places.BaseURL = v
	}
	if v := os.Getenv("PLACES_LANGUAGE_CODE"); v != "" {
		cfg.Places.LanguageCode = v
	}
	if v := os.Getenv("GEOCODE_BASE_URL"); v != "" {
		cfg.Geocode.BaseURL = v
	}
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		cfg.Vertex.Project = v
	}
	if v := os.Getenv("GOOGLE_CLOUD_LOCATION"); v != "" {
		cfg.Vertex.Location = v
	}
	if v := os.Getenv("VERTEX_MODEL"); v != "" {
		cfg.Vertex.Model = v
	}
	if v := os.Getenv("VERTEX_MAX_OUTPUT_TOKENS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Vertex.MaxOutputTokens = parsed
		}
	}
	if v := os.Getenv("SEARCH_DEFAULT_RADIUS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Search.DefaultRadiusMeters = parsed
		}
	}
	if v := os.Getenv("SEARCH_HYDRATION_RADIUS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Search.HydrationRadiusMeters = parsed
		}
	}
	if v := os.Getenv("SEARCH_AI_SCORE_LIMIT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Search.AIScoreLimit = parsed
		}
	}
	if v := os.Getenv("SEARCH_LEGACY_SCORE_LIMIT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Search.LegacyScoreLimit = parsed
		}
	}
	if v := os.Getenv("SEARCH_MAX_CONCURRENT_CALLS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Search.MaxConcurrentCalls = parsed
		}
	}
	if v := os.Getenv("SEARCH_INCLUDED_TYPES"); v != "" {
		parts := strings.Split(v, ",")
		types := make([]string, 0, len(parts))
		for _, p := range parts {
			if clean := strings.TrimSpace(p); clean != "" {
				types = append(types, clean)
			}
		}
		if len(types) > 0 {
			cfg.Search.IncludedTypes = types
		}
	}
	if v := os.Getenv("SEARCH_DEFAULT_GENRE"); v != "" {
		cfg.Search.DefaultGenre = v
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
		Places: PlacesConfig{
			BaseURL:      "https://places.googleapis.com/v1",
			LanguageCode: "ja",
		},
		Geocode: GeocodeConfig{
			BaseURL: "https://maps.googleapis.com/maps/api/geocode/json",
		},
		Vertex: VertexConfig{
			Location:        "us-central1",
			Model:           "gemini-2.5-pro",
			MaxOutputTokens: 8192,
		},
		Search: SearchConfig{
			DefaultRadiusMeters:   1000,
			HydrationRadiusMeters: 2000,
			AIScoreLimit:          10,
			LegacyScoreLimit:      5,
			MaxConcurrentCalls:    8,
			IncludedTypes:         []string{"restaurant", "cafe", "bakery", "meal_takeaway"},
			DefaultGenre:          "飲食店、総菜屋、甘味処、和菓子屋",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.Places.BaseURL == "" {
		return errors.New("places.baseUrl cannot be empty")
	}
	if c.Places.LanguageCode == "" {
		return errors.New("places.languageCode cannot be empty")
	}
	if c.Geocode.BaseURL == "" {
		return errors.New("geocode.baseUrl cannot be empty")
	}
	if c.Vertex.Model == "" {
		return errors.New("vertex.model cannot be empty")
	}
	if c.Vertex.MaxOutputTokens <= 0 {
		return errors.New("vertex.maxOutputTokens must be positive")
	}
	if c.Search.DefaultRadiusMeters <= 0 {
		return errors.New("search.defaultRadiusMeters must be positive")
	}
	if c.Search.HydrationRadiusMeters <= 0 {
		return errors.New("search.hydrationRadiusMeters must be positive")
	}
	if c.Search.AIScoreLimit <= 0 {
		return errors.New("search.aiScoreLimit must be positive")
	}
	if c.Search.LegacyScoreLimit <= 0 {
		return errors.New("search.legacyScoreLimit must be positive")
	}
	if c.Search.MaxConcurrentCalls <= 0 {
		return errors.New("search.maxConcurrentCalls must be positive")
	}
	return nil
}

// PhotoKey returns the key embedded into photo media URLs, falling back to
// the server side key when no separate public key is configured.
func (c *Config) PhotoKey() string {
	if strings.TrimSpace(c.Places.PublicAPIKey) != "" {
		return c.Places.PublicAPIKey
	}
	return c.Places.APIKey
}
