package httputil

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/matzehuels/treemap/pkg/errors"
)

// maxRetryAfter caps how long a Retry-After header may stall a fetch.
const maxRetryAfter = 30 * time.Second

// RetryableError marks a transient failure (connection error, 5xx, 429)
// that [Retry] may attempt again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as transient. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err's chain contains a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Retry calls fn until it succeeds, returns an error not marked with
// [Retryable], or has been called attempts times. The wait starts at delay
// and doubles; a rate-limit error with a Retry-After longer than the current
// wait stretches it, up to maxRetryAfter. Cancelling ctx aborts the wait and
// returns ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < max(attempts, 1); i++ {
		if i > 0 {
			if werr := wait(ctx, backoff(err, delay<<(i-1))); werr != nil {
				return werr
			}
		}
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
	}
	return err
}

func backoff(err error, d time.Duration) time.Duration {
	var rl *apperrors.RateLimitedError
	if errors.As(err, &rl) && rl.RetryAfter > d {
		return min(rl.RetryAfter, maxRetryAfter)
	}
	return d
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
