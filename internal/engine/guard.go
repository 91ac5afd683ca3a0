package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Guard throttles calls to a quota-metered upstream and stops calling it
// after repeated failures until the breaker half-opens again.
type Guard struct {
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewGuard builds a Guard allowing rps calls per second (burst 2).
// rps <= 0 disables throttling. The breaker trips after 5 consecutive failures
// and retries after 30s.
func NewGuard(name string, rps float64) *Guard {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Guard{
		limiter: rate.NewLimiter(limit, 2),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("circuit breaker state change",
					slog.String("name", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
			},
		}),
	}
}

// Do waits for a rate token and runs fn through the circuit breaker.
func Do[T any](ctx context.Context, g *Guard, fn func() (T, error)) (T, error) {
	var zero T
	if g == nil {
		return fn()
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return zero, fmt.Errorf("rate limit: %w", err)
	}
	v, err := g.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return zero, err
	}
	out, _ := v.(T)
	return out, nil
}
