// Package retry provides retry logic with exponential backoff for postalkit
// data acquisition.
package retry

import (
	"context"
	stderr "errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/postalkit/postalkit/pkg/errors"
)

// Config defines retry behavior.
type Config struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	MaxAttempts int `yaml:"max_attempts"`

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration `yaml:"initial_delay"`

	// MaxDelay caps the delay between retries.
	MaxDelay time.Duration `yaml:"max_delay"`

	// Multiplier is the backoff growth factor.
	Multiplier float64 `yaml:"multiplier"`

	// Jitter adds ±20% randomness to each delay.
	Jitter bool `yaml:"jitter"`

	// RetryableCodes lists error codes that trigger a retry in addition to
	// errors carrying an explicit Retryable flag.
	RetryableCodes []errors.ErrorCode `yaml:"retryable_codes"`

	// OnRetry is called before each retry attempt.
	OnRetry func(attempt int, err error, delay time.Duration) `yaml:"-"`
}

// DefaultConfig returns the retry configuration used for chunk downloads.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
		RetryableCodes: []errors.ErrorCode{
			errors.ErrCodeNetworkError,
			errors.ErrCodeNetworkStatus,
		},
	}
}

// Retryer executes functions with exponential backoff.
type Retryer struct {
	config Config
}

// New creates a Retryer, filling zero values with defaults.
func New(config Config) *Retryer {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 500 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	return &Retryer{config: config}
}

// Do executes fn with retry logic.
func (r *Retryer) Do(fn func() error) error {
	return r.DoWithContext(context.Background(), func(ctx context.Context) error {
		return fn()
	})
}

// DoWithContext executes fn with retry logic, honoring ctx between attempts.
func (r *Retryer) DoWithContext(ctx context.Context, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("operation canceled: %w", ctx.Err())
		default:
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !r.isRetryable(err) {
			return err
		}
		if attempt == r.config.MaxAttempts {
			break
		}

		delay := r.calculateDelay(attempt)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("operation canceled after %d attempts: %w", attempt, ctx.Err())
		case <-time.After(delay):
		}
	}

	return errors.Newf(errors.ErrCodeRetryExhausted,
		"max retry attempts (%d) exceeded", r.config.MaxAttempts).WithCause(lastErr)
}

// isRetryable reports whether the error itself warrants another attempt.
// Attempt accounting stays in DoWithContext so exhaustion of a retryable
// error surfaces as ErrCodeRetryExhausted rather than the raw last failure.
func (r *Retryer) isRetryable(err error) bool {
	var pe *errors.PostalError
	if stderr.As(err, &pe) {
		if pe.Retryable {
			return true
		}
		for _, code := range r.config.RetryableCodes {
			if pe.Code == code {
				return true
			}
		}
		return false
	}

	// Unclassified errors from net/http et al. are treated as transient.
	return true
}

// calculateDelay computes initialDelay * multiplier^(attempt-1), capped and
// optionally jittered.
func (r *Retryer) calculateDelay(attempt int) time.Duration {
	delay := float64(r.config.InitialDelay) * math.Pow(r.config.Multiplier, float64(attempt-1))
	if delay > float64(r.config.MaxDelay) {
		delay = float64(r.config.MaxDelay)
	}
	if r.config.Jitter {
		delay += delay * 0.2 * (rand.Float64()*2 - 1)
	}
	return time.Duration(delay)
}

// WithMaxAttempts returns a new Retryer with modified max attempts.
func (r *Retryer) WithMaxAttempts(attempts int) *Retryer {
	cfg := r.config
	cfg.MaxAttempts = attempts
	return New(cfg)
}

// WithOnRetry returns a new Retryer with a retry callback.
func (r *Retryer) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Retryer {
	cfg := r.config
	cfg.OnRetry = callback
	return New(cfg)
}
