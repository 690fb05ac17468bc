// Package retry provides a stateless retry combinator with a fixed delay
// between attempts.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/nadzzz/lingua/internal/apierr"
)

// Policy parameterizes Do.
type Policy struct {
	// MaxAttempts is the total number of calls, including the first. Values
	// below 1 are treated as 1.
	MaxAttempts int

	// Delay is the uniform wait between attempts.
	Delay time.Duration

	// Retryable decides whether an error is worth another attempt. Nil retries
	// every error.
	Retryable func(error) bool
}

// Default returns three attempts, one second apart, retrying tagged
// transient failures only.
func Default() Policy {
	return Policy{
		MaxAttempts: 3,
		Delay:       time.Second,
		Retryable:   apierr.IsRetryable,
	}
}

// ExhaustedError is returned when every attempt failed.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed after %s: %v", Attempts(e.Attempts), e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Attempts formats n as "1 attempt" or "n attempts".
func Attempts(n int) string {
	if n == 1 {
		return "1 attempt"
	}
	return fmt.Sprintf("%d attempts", n)
}

// Do calls fn until it succeeds, returns a non-retryable error, or the policy
// runs out of attempts. attempt is 1-based.
//
// A non-retryable error is returned as-is. Exhaustion returns *ExhaustedError.
// ctx only interrupts the wait between attempts; the last error is then
// returned joined with ctx.Err() rather than as an exhaustion.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T
	limit := p.MaxAttempts
	if limit < 1 {
		limit = 1
	}

	var last error
	for attempt := 1; attempt <= limit; attempt++ {
		v, err := fn(ctx, attempt)
		if err == nil {
			return v, nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return zero, err
		}
		last = err
		if attempt == limit {
			break
		}
		if err := sleep(ctx, p.Delay); err != nil {
			return zero, fmt.Errorf("%w (retry interrupted: %w)", last, err)
		}
	}
	return zero, &ExhaustedError{Attempts: limit, Last: last}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
