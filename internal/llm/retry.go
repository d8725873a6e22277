package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// retryableError marks a failure that may succeed on a later attempt
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// IsRetryable reports whether err (or anything it wraps) is transient
func IsRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// StatusError carries the HTTP status of a failed provider call
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// statusError wraps 429 and 5xx responses as retryable
func statusError(code int, msg string) error {
	err := &StatusError{StatusCode: code, Message: msg}
	if code == 429 || code >= 500 {
		return &retryableError{err: err}
	}
	return err
}

type retryPolicy struct {
	maxRetries  int
	baseBackoff time.Duration
}

// do runs call until it succeeds, fails permanently, or retries run out.
// The wait before attempt n is baseBackoff * 2^(n-1).
func (p retryPolicy) do(ctx context.Context, call func(context.Context) (string, error)) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := p.baseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		out, err := call(ctx)
		if err == nil {
			return out, nil
		}

		lastErr = err
		if !IsRetryable(err) {
			return "", err
		}
	}

	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}
