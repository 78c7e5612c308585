package stream

import (
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/travel-data/reco-pipeline/pkg/logger"
)

// NewCircuitBreaker trips after threshold consecutive failures and stays open
// for cfg.BreakerTimeout before letting a single request through. It returns
// nil when cfg.FailureThreshold is 0.
func NewCircuitBreaker(cfg PublisherConfig, log logger.Logger) *gobreaker.CircuitBreaker[interface{}] {
	if cfg.FailureThreshold == 0 {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        cfg.BreakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}

	return gobreaker.NewCircuitBreaker[interface{}](settings)
}
