package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/i474232898/park-explorer/internal/park/providers"
)

const (
	SettingsBackendMemory = "memory"
	SettingsBackendRedis  = "redis"
)

type AppConfig struct {
	Port      string
	LogLevel  string
	LogFormat string

	NPSAPIKey       string
	WeatherAPIKey   string
	RecGovAPIKey    string
	GeocoderAPIKey  string
	NPSBaseURL      string
	WeatherAPIURL   string
	RecGovBaseURL   string
	HTTPTimeout     time.Duration
	HTTPMaxRetries  int
	HTTPBackoff     time.Duration
	BreakerEnabled  bool
	PartialResults  bool
	TracingEnabled  bool
	SettingsBackend string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	// CanaryParkCode enables the periodic health lookup when set.
	CanaryParkCode string
	CanaryInterval time.Duration
}

// Load reads configuration from the environment (and an optional .env file)
// with sensible defaults.
func Load() (*AppConfig, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("HTTP_TIMEOUT", "8s")
	v.SetDefault("HTTP_MAX_RETRIES", 2)
	v.SetDefault("HTTP_INITIAL_BACKOFF", "800ms")
	v.SetDefault("CIRCUIT_BREAKER_ENABLED", true)
	v.SetDefault("SEARCH_PARTIAL_RESULTS", false)
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("SETTINGS_BACKEND", SettingsBackendMemory)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CANARY_INTERVAL", "15m")
}

func fromViper(v *viper.Viper) (*AppConfig, error) {
	setDefaults(v)

	cfg := &AppConfig{
		Port:            v.GetString("PORT"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       v.GetString("LOG_FORMAT"),
		NPSAPIKey:       v.GetString("NPS_API_KEY"),
		WeatherAPIKey:   v.GetString("WEATHERAPI_API_KEY"),
		RecGovAPIKey:    v.GetString("RECGOV_API_KEY"),
		GeocoderAPIKey:  v.GetString("GEOCODER_API_KEY"),
		NPSBaseURL:      v.GetString("NPS_BASE_URL"),
		WeatherAPIURL:   v.GetString("WEATHERAPI_BASE_URL"),
		RecGovBaseURL:   v.GetString("RECGOV_BASE_URL"),
		HTTPMaxRetries:  v.GetInt("HTTP_MAX_RETRIES"),
		BreakerEnabled:  v.GetBool("CIRCUIT_BREAKER_ENABLED"),
		PartialResults:  v.GetBool("SEARCH_PARTIAL_RESULTS"),
		TracingEnabled:  v.GetBool("TRACING_ENABLED"),
		SettingsBackend: strings.ToLower(strings.TrimSpace(v.GetString("SETTINGS_BACKEND"))),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		RedisDB:         v.GetInt("REDIS_DB"),
		CanaryParkCode:  strings.TrimSpace(v.GetString("CANARY_PARK_CODE")),
	}

	var err error
	if cfg.HTTPTimeout, err = duration(v, "HTTP_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.HTTPBackoff, err = duration(v, "HTTP_INITIAL_BACKOFF"); err != nil {
		return nil, err
	}
	if cfg.CanaryInterval, err = duration(v, "CANARY_INTERVAL"); err != nil {
		return nil, err
	}

	if cfg.HTTPMaxRetries < 0 {
		return nil, fmt.Errorf("invalid HTTP_MAX_RETRIES: must not be negative")
	}
	switch cfg.SettingsBackend {
	case SettingsBackendMemory, SettingsBackendRedis:
	default:
		return nil, fmt.Errorf("invalid SETTINGS_BACKEND %q: want memory or redis", cfg.SettingsBackend)
	}

	return cfg, nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

// Credential implements providers.CredentialProvider.
func (c *AppConfig) Credential(upstream string) string {
	switch upstream {
	case providers.UpstreamNPS:
		return c.NPSAPIKey
	case providers.UpstreamWeatherAPI:
		return c.WeatherAPIKey
	case providers.UpstreamRecGov:
		return c.RecGovAPIKey
	}
	return ""
}

// FetchConfig returns the retry settings shared by all upstream adapters.
func (c *AppConfig) FetchConfig() providers.FetchConfig {
	return providers.FetchConfig{
		Timeout:        c.HTTPTimeout,
		MaxRetries:     c.HTTPMaxRetries,
		InitialBackoff: c.HTTPBackoff,
	}
}
