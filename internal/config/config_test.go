package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/park-explorer/internal/park/providers"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 8*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 2, cfg.HTTPMaxRetries)
	assert.Equal(t, 800*time.Millisecond, cfg.HTTPBackoff)
	assert.True(t, cfg.BreakerEnabled)
	assert.False(t, cfg.PartialResults)
	assert.Equal(t, SettingsBackendMemory, cfg.SettingsBackend)
	assert.Equal(t, 15*time.Minute, cfg.CanaryInterval)
	assert.Equal(t, providers.DefaultFetchConfig(), cfg.FetchConfig())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("NPS_API_KEY", "nps")
	t.Setenv("WEATHERAPI_API_KEY", "weather")
	t.Setenv("RECGOV_API_KEY", "recgov")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("HTTP_MAX_RETRIES", "0")
	t.Setenv("SEARCH_PARTIAL_RESULTS", "true")
	t.Setenv("SETTINGS_BACKEND", "Redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("CANARY_PARK_CODE", " acad ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 0, cfg.HTTPMaxRetries)
	assert.True(t, cfg.PartialResults)
	assert.Equal(t, SettingsBackendRedis, cfg.SettingsBackend)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, "acad", cfg.CanaryParkCode)

	var creds providers.CredentialProvider = cfg
	assert.Equal(t, "nps", creds.Credential(providers.UpstreamNPS))
	assert.Equal(t, "weather", creds.Credential(providers.UpstreamWeatherAPI))
	assert.Equal(t, "recgov", creds.Credential(providers.UpstreamRecGov))
	assert.Empty(t, creds.Credential("unknown"))
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string][2]string{
		"bad timeout":      {"HTTP_TIMEOUT", "soon"},
		"zero backoff":     {"HTTP_INITIAL_BACKOFF", "0s"},
		"negative retries": {"HTTP_MAX_RETRIES", "-1"},
		"unknown backend":  {"SETTINGS_BACKEND", "postgres"},
		"bad interval":     {"CANARY_INTERVAL", "often"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])

			_, err := Load()
			assert.ErrorContains(t, err, kv[0])
		})
	}
}
