package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/park-explorer/internal/api/http"
	"github.com/i474232898/park-explorer/internal/config"
	"github.com/i474232898/park-explorer/internal/geo"
	"github.com/i474232898/park-explorer/internal/logger"
	"github.com/i474232898/park-explorer/internal/obs"
	"github.com/i474232898/park-explorer/internal/park"
	"github.com/i474232898/park-explorer/internal/park/providers"
	"github.com/i474232898/park-explorer/internal/scheduler"
	"github.com/i474232898/park-explorer/internal/settings"
	"github.com/i474232898/park-explorer/internal/store"
)

const serviceName = "park-explorer"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	if err := run(cfg, lg); err != nil {
		lg.Error("park-explorer stopped", zap.Error(err))
		_ = lg.Sync()
		os.Exit(1)
	}
	_ = lg.Sync()
}

// run serves until SIGINT or SIGTERM and releases what it opened on return.
func run(cfg *config.AppConfig, lg *zap.Logger) error {
	if cfg.TracingEnabled {
		shutdown, err := obs.SetupTracing(os.Stdout)
		if err != nil {
			return fmt.Errorf("set up tracing: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	// Per-attempt timeouts come from the fetcher; the client only needs pooling.
	httpClient := &http.Client{}
	fetcher := providers.NewFetcher(httpClient, lg)

	providerConfig := func(upstream, baseURL string) providers.ProviderConfig {
		pc := providers.ProviderConfig{BaseURL: baseURL, Fetch: cfg.FetchConfig()}
		if cfg.BreakerEnabled {
			pc.Breaker = providers.NewBreaker(upstream, lg)
		}
		return pc
	}

	parksProvider := providers.NewNPSProvider(fetcher, cfg, providerConfig(providers.UpstreamNPS, cfg.NPSBaseURL))
	weatherProvider := providers.NewWeatherAPIProvider(fetcher, cfg, providerConfig(providers.UpstreamWeatherAPI, cfg.WeatherAPIURL))
	facilitiesProvider := providers.NewRecGovProvider(fetcher, cfg, providerConfig(providers.UpstreamRecGov, cfg.RecGovBaseURL))

	opts := park.Options{
		Logger:         lg,
		PartialResults: cfg.PartialResults,
	}
	if cfg.GeocoderAPIKey != "" {
		opts.Geocoder = geo.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	}
	service := park.NewService(parksProvider, weatherProvider, facilitiesProvider, opts)

	prefStore, closeStore, err := newPreferencesStore(cfg, lg)
	if err != nil {
		return err
	}
	defer closeStore()

	settingsService, err := settings.NewService(prefStore, lg)
	if err != nil {
		return fmt.Errorf("create settings service: %w", err)
	}

	// Canary that periodically looks up one park end to end.
	sched := scheduler.New(cfg.CanaryParkCode, cfg.CanaryInterval, service, lg)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler(lg),
	})

	app.Use(httpapi.RequestID())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Parks:    service,
		Settings: settingsService,
		Canary:   sched,
		Service:  serviceName,
	})

	go func() {
		lg.Info("listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			lg.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		lg.Error("error during shutdown", zap.Error(err))
	}
	return nil
}

func newPreferencesStore(cfg *config.AppConfig, lg *zap.Logger) (park.PreferencesStore, func(), error) {
	if cfg.SettingsBackend != config.SettingsBackendRedis {
		return store.NewMemoryStore(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	rs := store.NewRedisStore(client)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rs.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis %s is not reachable: %w", cfg.RedisAddr, err)
	}
	lg.Info("using redis settings store", zap.String("addr", cfg.RedisAddr))

	return rs, func() { _ = client.Close() }, nil
}
