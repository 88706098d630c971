package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoProfiles is returned when a ranker is built without candidate profiles.
	ErrNoProfiles = errors.New("no candidate profiles configured")

	// ErrProviderUnavailable is returned when the search provider keeps failing
	// past the configured consecutive-failure threshold.
	ErrProviderUnavailable = errors.New("search provider unavailable")

	// ErrDimensionMismatch is returned when two vectors of different length are compared.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrQuotaExhausted marks a provider refusal because the account quota is
	// used up. Retrying does not help.
	ErrQuotaExhausted = errors.New("provider quota exhausted")
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
