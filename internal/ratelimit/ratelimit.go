package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amishk599/jobdigest/internal/model"
)

// Clock abstracts time so pacing can be tested without real delays.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IntervalLimiter enforces a minimum delay between consecutive calls sharing a key.
type IntervalLimiter struct {
	mu        sync.Mutex
	lastCall  map[string]time.Time
	minDelay  time.Duration
	overrides map[string]time.Duration
	clock     Clock
}

// NewIntervalLimiter creates a limiter that enforces minDelay between calls
// with the same key. overrides sets a different delay for specific keys.
func NewIntervalLimiter(minDelay time.Duration, overrides map[string]time.Duration) *IntervalLimiter {
	return &IntervalLimiter{
		lastCall:  make(map[string]time.Time),
		minDelay:  minDelay,
		overrides: overrides,
		clock:     realClock{},
	}
}

// WithClock replaces the limiter's clock. Intended for tests.
func (r *IntervalLimiter) WithClock(c Clock) *IntervalLimiter {
	r.clock = c
	return r
}

// DelayFor returns the configured delay for key, falling back to the default.
func (r *IntervalLimiter) DelayFor(key string) time.Duration {
	if d, ok := r.overrides[key]; ok {
		return d
	}
	return r.minDelay
}

// Wait blocks until enough time has passed since the last call with the same key.
// Returns an error if the context is cancelled while waiting.
func (r *IntervalLimiter) Wait(ctx context.Context, key string) error {
	delay := r.DelayFor(key)

	r.mu.Lock()
	last, ok := r.lastCall[key]
	now := r.clock.Now()

	if !ok || now.Sub(last) >= delay {
		r.lastCall[key] = now
		r.mu.Unlock()
		return nil
	}

	remaining := delay - now.Sub(last)
	r.mu.Unlock()

	if err := r.clock.Sleep(ctx, remaining); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", key, err)
	}

	r.mu.Lock()
	r.lastCall[key] = r.clock.Now()
	r.mu.Unlock()

	return nil
}

// Pause blocks for d unconditionally, e.g. between roles.
func (r *IntervalLimiter) Pause(ctx context.Context, d time.Duration) error {
	if err := r.clock.Sleep(ctx, d); err != nil {
		return fmt.Errorf("rate limiter pause: %w", err)
	}
	return nil
}

// EmbeddingKey is the limiter key shared by all embedding backend calls.
const EmbeddingKey = "embedding"

// RateLimitedEmbedder is a decorator that spaces out embedding calls before
// delegating to the wrapped Embedder.
type RateLimitedEmbedder struct {
	inner   model.Embedder
	limiter *IntervalLimiter
}

// NewRateLimitedEmbedder wraps an Embedder with EmbeddingKey pacing.
func NewRateLimitedEmbedder(inner model.Embedder, limiter *IntervalLimiter) *RateLimitedEmbedder {
	return &RateLimitedEmbedder{inner: inner, limiter: limiter}
}

func (e *RateLimitedEmbedder) Model() string { return e.inner.Model() }

// Embed waits for the limiter, then delegates.
func (e *RateLimitedEmbedder) Embed(ctx context.Context, text string) (model.Vector, error) {
	if err := e.limiter.Wait(ctx, EmbeddingKey); err != nil {
		return nil, err
	}
	return e.inner.Embed(ctx, text)
}

// EmbedBatch waits for the limiter once per batch, then delegates.
func (e *RateLimitedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]model.Vector, error) {
	if err := e.limiter.Wait(ctx, EmbeddingKey); err != nil {
		return nil, err
	}
	return e.inner.EmbedBatch(ctx, texts)
}
