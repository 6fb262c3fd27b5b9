package cache

import (
	"context"
	"errors"
	"time"
)

// Retry policy for transient dataset-source failures.
const (
	retryAttempts  = 3
	retryBaseDelay = time.Second
)

// Sentinel errors for dataset fetching and caching.
var (
	// ErrNotFound is returned when a requested dataset or entry does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrCacheMiss is returned when an item is not found in cache.
	ErrCacheMiss = errors.New("cache miss")
)

// RetryableError marks an error as transient: RetryWithBackoff retries it,
// everything else fails fast.
type RetryableError struct{ Err error }

// Retryable wraps an error as a RetryableError. A nil error stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err carries a RetryableError anywhere in its
// chain.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryWithBackoff runs fn up to retryAttempts times, doubling the delay
// between attempts starting from retryBaseDelay. Only retryable errors are
// retried; context cancellation during a backoff wait aborts with ctx.Err().
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	var lastErr error
	delay := retryBaseDelay

	for attempt := 1; ; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) || attempt == retryAttempts {
			return lastErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
}
