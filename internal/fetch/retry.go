package fetch

import (
	"context"
	"errors"
	"time"

	apperrors "flagscan/internal/errors"
	"flagscan/internal/models"
)

// RetryConfig controls exponential backoff for transient fetch failures.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2.0,
	}
}

// RetryingFetcher wraps another Fetcher with retries. Validation errors
// and symbol-not-found responses are not retried.
type RetryingFetcher struct {
	inner Fetcher
	cfg   RetryConfig
}

// NewRetryingFetcher wraps inner with the default retry configuration.
func NewRetryingFetcher(inner Fetcher) *RetryingFetcher {
	return &RetryingFetcher{inner: inner, cfg: DefaultRetryConfig()}
}

// NewRetryingFetcherWithConfig wraps inner with a custom retry configuration.
func NewRetryingFetcherWithConfig(inner Fetcher, cfg RetryConfig) *RetryingFetcher {
	return &RetryingFetcher{inner: inner, cfg: cfg}
}

func (r *RetryingFetcher) Name() string { return r.inner.Name() }

func retryable(err error) bool {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		return false
	}
	if errors.Is(err, apperrors.ErrSymbolNotFound) || errors.Is(err, apperrors.ErrDataNotFound) {
		return false
	}
	return true
}

// FetchDailyBars fetches with exponential backoff until the attempt budget
// is exhausted or the context is cancelled.
func (r *RetryingFetcher) FetchDailyBars(ctx context.Context, symbol string, years int) ([]models.PriceBar, error) {
	var lastErr error
	delay := r.cfg.InitialDelay

	for attempt := 0; attempt < r.cfg.MaxAttempts; attempt++ {
		bars, err := r.inner.FetchDailyBars(ctx, symbol, years)
		if err == nil {
			return bars, nil
		}
		lastErr = err

		if !retryable(err) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if attempt < r.cfg.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * r.cfg.BackoffFactor)
			if delay > r.cfg.MaxDelay {
				delay = r.cfg.MaxDelay
			}
		}
	}

	return nil, lastErr
}
