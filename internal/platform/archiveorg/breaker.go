package archiveorg

import (
	"context"
	"errors"
	"time"

	"archiveapi/internal/logging"
	"archiveapi/internal/metrics"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	defaultBreakerFailures = 5
	defaultBreakerTimeout  = 30 * time.Second
)

// newBreaker opens after a run of consecutive upstream failures and fails
// fast until timeout elapses. Calls are never retried; a rejected call is
// reported to the caller like any other transport failure.
func newBreaker(name string, failures uint32, timeout time.Duration) *gobreaker.CircuitBreaker[json.RawMessage] {
	if failures == 0 {
		failures = defaultBreakerFailures
	}
	if timeout <= 0 {
		timeout = defaultBreakerTimeout
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// A 4xx or an undecodable 2xx means archive.org answered; only
		// unreachable or failing upstreams count against the breaker.
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var te *TransportError
			if errors.As(err, &te) {
				return !te.Temporary()
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
