package retry

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	mathrand "math/rand"
	"time"

	"github.com/trigg3rX/mining-cli/pkg/logging"
)

// RetryConfig holds the configuration for retry operations
type RetryConfig struct {
	MaxRetries      int                   // Total number of attempts, including the first one
	InitialDelay    time.Duration         // Delay before the second attempt
	MaxDelay        time.Duration         // Upper bound for any single delay
	BackoffFactor   float64               // Multiplier for exponential backoff
	JitterFactor    float64               // Extra random delay as a fraction of the base delay
	LogRetryAttempt bool                  // Whether to log retry attempts
	ShouldRetry     func(error, int) bool // Overrides IsTransient (error, attempt number)
}

// DefaultRetryConfig returns a default configuration for retry operations
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:      5,
		InitialDelay:    time.Second,
		MaxDelay:        30 * time.Second,
		BackoffFactor:   2.0,
		JitterFactor:    0.2,
		LogRetryAttempt: true,
		ShouldRetry:     nil,
	}
}

// Validate checks the configuration for reasonable values
func (c *RetryConfig) Validate() error {
	if c.MaxRetries < 1 {
		return errors.New("MaxRetries must be >= 1")
	}
	if c.InitialDelay < 0 {
		return errors.New("InitialDelay must not be negative")
	}
	if c.MaxDelay < c.InitialDelay {
		return errors.New("MaxDelay must be >= InitialDelay")
	}
	if c.BackoffFactor < 1.0 {
		return errors.New("BackoffFactor must be >= 1.0")
	}
	if c.JitterFactor < 0 || c.JitterFactor > 1.0 {
		return errors.New("JitterFactor must be between 0.0 and 1.0")
	}
	return nil
}

// SecureFloat64 returns a secure random float64 in [0.0,1.0)
func SecureFloat64() float64 {
	var b [8]byte
	_, err := rand.Read(b[:])
	if err != nil {
		// Fallback to math/rand if crypto/rand fails
		return mathrand.Float64()
	}
	return float64(binary.BigEndian.Uint64(b[:])>>11) / (1 << 53)
}

// CalculateDelayWithJitter calculates the sleep duration for the given base delay with jitter applied
func CalculateDelayWithJitter(baseDelay time.Duration, jitterFactor float64) time.Duration {
	sleepDuration := baseDelay
	if jitterFactor > 0 {
		jitter := time.Duration(jitterFactor * float64(baseDelay) * SecureFloat64())
		sleepDuration += jitter
	}
	return sleepDuration
}

// CalculateNextDelay calculates the next delay value using exponential backoff
func CalculateNextDelay(currentDelay time.Duration, backoffFactor float64, maxDelay time.Duration) time.Duration {
	nextDelay := time.Duration(float64(currentDelay) * backoffFactor)
	if nextDelay > maxDelay {
		nextDelay = maxDelay
	}
	return nextDelay
}

// Retry runs operation until it succeeds, fails with an error that must not be
// retried, or MaxRetries attempts have been made. Exhaustion is reported as a
// *PersistentFailure wrapping the last error; a non-retryable error is returned as is.
func Retry[T any](ctx context.Context, operation func() (T, error), retryConfig *RetryConfig, logger logging.Logger) (T, error) {
	var zero T

	if retryConfig == nil {
		retryConfig = DefaultRetryConfig()
	} else if err := retryConfig.Validate(); err != nil {
		return zero, fmt.Errorf("invalid retry config: %w", err)
	}
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}

	shouldRetry := retryConfig.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = func(err error, _ int) bool { return IsTransient(err) }
	}

	delay := retryConfig.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= retryConfig.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := operation()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !shouldRetry(err, attempt) {
			return zero, err
		}
		if attempt == retryConfig.MaxRetries {
			break
		}

		sleepDuration := CalculateDelayWithJitter(delay, retryConfig.JitterFactor)
		if sleepDuration > retryConfig.MaxDelay {
			sleepDuration = retryConfig.MaxDelay
		}

		if retryConfig.LogRetryAttempt {
			logger.Warnf("Attempt %d/%d failed: %v. Retrying in %v...", attempt, retryConfig.MaxRetries, err, sleepDuration)
		}

		timer := time.NewTimer(sleepDuration)
		select {
		case <-timer.C:
			delay = CalculateNextDelay(delay, retryConfig.BackoffFactor, retryConfig.MaxDelay)
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		}
	}

	return zero, &PersistentFailure{Attempts: retryConfig.MaxRetries, Err: lastErr}
}
