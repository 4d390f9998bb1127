package extractor

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// TransientError indicates a provider failure worth retrying: a timeout, a
// connection error, or a 5xx response. Anything else is a permanent
// extraction failure for the page.
type TransientError struct {
	Err      error
	Provider string
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s transient failure: %v", e.Provider, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError creates a TransientError.
func NewTransientError(provider string, err error) *TransientError {
	return &TransientError{Err: err, Provider: provider}
}

// RateLimitError indicates a provider returned HTTP 429. It is retryable and
// carries the provider's requested backoff.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0,
// defaults to 30s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 30
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// IsRetryable reports whether err is a transient or rate-limit failure.
func IsRetryable(err error) bool {
	var te *TransientError
	var re *RateLimitError
	return errors.As(err, &te) || errors.As(err, &re)
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}
