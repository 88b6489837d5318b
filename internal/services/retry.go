package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

type retryingInvoker struct {
	base         AnalysisInvoker
	maxAttempts  int
	initialDelay time.Duration
	log          logrus.FieldLogger
}

// NewRetryingInvoker wraps base with a retry policy for transient failures
// (ErrModelUnavailable, ErrModelTimeout). With maxAttempts <= 1 base is
// returned as is.
func NewRetryingInvoker(base AnalysisInvoker, maxAttempts int, initialDelay time.Duration, log logrus.FieldLogger) AnalysisInvoker {
	if maxAttempts <= 1 {
		return base
	}
	return &retryingInvoker{
		base:         base,
		maxAttempts:  maxAttempts,
		initialDelay: initialDelay,
		log:          log,
	}
}

// Invoke implements AnalysisInvoker.
func (r *retryingInvoker) Invoke(ctx context.Context, prompt Prompt) (string, error) {
	var lastErr error
	delay := r.initialDelay

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		result, err := r.base.Invoke(ctx, prompt)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !isTransientModelError(err) {
			return "", err
		}

		if attempt == r.maxAttempts {
			break
		}

		r.log.WithFields(logrus.Fields{
			"attempt":  attempt,
			"delay_ms": delay.Milliseconds(),
		}).WithError(err).Warn("⚠️ Model call failed. Retrying...")

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", errors.Join(ctx.Err(), lastErr))
		case <-time.After(delay):
		}
		delay *= 2
	}

	return "", fmt.Errorf("failed after %d attempts: %w", r.maxAttempts, lastErr)
}

func isTransientModelError(err error) bool {
	return errors.Is(err, ErrModelUnavailable) || errors.Is(err, ErrModelTimeout)
}
