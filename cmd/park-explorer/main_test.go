package main

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/i474232898/park-explorer/internal/config"
	"github.com/i474232898/park-explorer/internal/store"
)

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.TracingEnabled = false
	cfg.CanaryParkCode = ""
	return cfg
}

func TestNewPreferencesStore_Memory(t *testing.T) {
	s, closeStore, err := newPreferencesStore(testConfig(t), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer closeStore()

	assert.IsType(t, &store.MemoryStore{}, s)
}

func TestNewPreferencesStore_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.SettingsBackend = config.SettingsBackendRedis
	cfg.RedisAddr = mr.Addr()

	s, closeStore, err := newPreferencesStore(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer closeStore()

	require.IsType(t, &store.RedisStore{}, s)
	_, found, err := s.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRun_ReturnsErrorWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig(t)
	cfg.SettingsBackend = config.SettingsBackendRedis
	cfg.RedisAddr = addr

	err := run(cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not reachable")
}
