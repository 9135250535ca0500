package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/park-explorer/internal/obs"
	"github.com/i474232898/park-explorer/internal/park"
)

const runTimeout = 30 * time.Second

// SiteLooker is the part of park.Service the canary needs.
type SiteLooker interface {
	Site(ctx context.Context, id string) (park.Normalized, error)
}

// Status is the outcome of the latest canary run.
type Status struct {
	ParkCode string    `json:"parkCode"`
	LastRun  time.Time `json:"lastRun"`
	Healthy  bool      `json:"healthy"`
	Error    string    `json:"error,omitempty"`
	Kind     park.Kind `json:"kind,omitempty"`
	Runs     int       `json:"runs"`
}

// Scheduler periodically looks up one known park end to end, so upstream
// outages and expired credentials show up on /health before users hit them.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   SiteLooker
	parkCode  string
	interval  time.Duration
	logger    *zap.Logger

	mu     sync.RWMutex
	status Status
}

// New creates a new Scheduler.
func New(parkCode string, interval time.Duration, service SiteLooker, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		parkCode:  parkCode,
		interval:  interval,
		logger:    logger.With(zap.String("component", "canary")),
		status:    Status{ParkCode: parkCode},
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.parkCode == "" {
		s.logger.Info("no canary park configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce performs a single canary lookup and records its outcome.
func (s *Scheduler) RunOnce(ctx context.Context) Status {
	start := time.Now()
	_, err := s.service.Site(ctx, s.parkCode)

	s.mu.Lock()
	s.status.LastRun = start.UTC()
	s.status.Runs++
	s.status.Healthy = err == nil
	s.status.Error = ""
	s.status.Kind = ""
	if err != nil {
		s.status.Error = err.Error()
		s.status.Kind = park.KindOf(err)
	}
	st := s.status
	s.mu.Unlock()

	if err != nil {
		obs.CanaryRuns.WithLabelValues("failure").Inc()
		s.logger.Warn("canary lookup failed",
			zap.String("park", s.parkCode),
			zap.Duration("took", time.Since(start)),
			zap.Error(err),
		)
	} else {
		obs.CanaryRuns.WithLabelValues("success").Inc()
		s.logger.Debug("canary lookup succeeded", zap.String("park", s.parkCode), zap.Duration("took", time.Since(start)))
	}
	return st
}

// Status returns the latest canary outcome. Runs is zero until the first run.
func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Enabled reports whether a canary park is configured.
func (s *Scheduler) Enabled() bool {
	return s.parkCode != ""
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
