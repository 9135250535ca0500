package providers

import (
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/park-explorer/internal/obs"
	"github.com/i474232898/park-explorer/internal/park"
)

// NewBreaker returns a circuit breaker for one upstream. Only transient
// failures count against it; a 404 or a bad payload says nothing about the
// upstream's health.
func NewBreaker(name string, logger *zap.Logger) *gobreaker.CircuitBreaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	obs.BreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !park.IsKind(err, park.KindTransientUpstream)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			obs.BreakerState.WithLabelValues(name).Set(float64(to))
			logger.Warn("circuit breaker state changed",
				zap.String("upstream", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
	})
}
