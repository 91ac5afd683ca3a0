package engine

import (
	"context"
	"fmt"
	"time"
)

// WithTimeout runs fn under a child context that is cancelled after d.
// If the deadline wins the race, the caller gets a KindTimeout error right away
// and fn's late result is dropped into a buffered channel nobody reads.
func WithTimeout[T any](ctx context.Context, d time.Duration, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if d <= 0 {
		return fn(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		val T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		ch <- result{v, err}
	}()

	select {
	case r := <-ch:
		return r.val, r.err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return zero, NewError(KindTimeout, op, fmt.Errorf("timed out after %s: %w", d, ErrTimeout))
		}
		return zero, ctx.Err()
	}
}
