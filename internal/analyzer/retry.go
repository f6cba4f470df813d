package analyzer

import (
	"context"
	"time"
)

// RetryConfig bounds the backoff schedule for provider calls.
type RetryConfig struct {
	Attempts   int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

// DefaultRetryConfig mirrors the provider constants: three attempts with
// exponential backoff capped at MaxBackoffMs.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts:   MaxRetries,
		BaseDelay:  time.Duration(InitialBackoffMs) * time.Millisecond,
		MaxDelay:   time.Duration(MaxBackoffMs) * time.Millisecond,
		Multiplier: BackoffMultiplier,
	}
}

// retryWithBackoff runs fn up to cfg.Attempts times, sleeping on the backoff
// schedule before each retry. A canceled context wins over both the sleep
// and any further attempts. When every attempt fails, the last provider
// error comes back, not a retry-specific one.
func retryWithBackoff[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	delay := cfg.BaseDelay

	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * cfg.Multiplier)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
	}

	return zero, lastErr
}
