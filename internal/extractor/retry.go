package extractor

import (
	"context"
	"errors"
	"log"
	"time"

	"bookingflow/internal/port"
)

const (
	baseBackoff = 2 * time.Second
	maxBackoff  = 2 * time.Minute
)

// RetryDelay returns the exponential backoff delay for a zero-based attempt,
// capped at maxBackoff. The shift is bounded first so a large retry budget
// cannot overflow into a negative duration.
func RetryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 6 {
		return maxBackoff
	}
	d := baseBackoff << uint(attempt)
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// retryingAnalyzer wraps a PageAnalyzer with bounded retries of transient
// failures. Permanent failures pass through on the first attempt.
type retryingAnalyzer struct {
	inner      port.PageAnalyzer
	maxRetries int
}

// WithRetry decorates an analyzer with up to maxRetries retries of transient
// and rate-limit failures, using exponential backoff or the provider's
// Retry-After hint.
func WithRetry(inner port.PageAnalyzer, maxRetries int) port.PageAnalyzer {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &retryingAnalyzer{inner: inner, maxRetries: maxRetries}
}

func (r *retryingAnalyzer) Analyze(ctx context.Context, input port.AnalyzeInput) (*port.AnalyzeOutput, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		out, err := r.inner.Analyze(ctx, input)
		if err == nil {
			return out, nil
		}
		if !IsRetryable(err) {
			return nil, err
		}
		lastErr = err

		if attempt == r.maxRetries {
			break
		}

		wait := RetryDelay(attempt)
		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			wait = rlErr.RetryAfter
		}
		log.Printf("extractor.WithRetry: attempt %d failed, retrying in %s: %v", attempt+1, wait, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}
