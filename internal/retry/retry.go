package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/amishk599/jobdigest/internal/model"
)

// Policy holds the shared backoff settings.
// MaxRetries is the number of additional attempts after the first failure.
// BaseDelay is the delay before the first retry, doubled on each subsequent retry.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// do runs call until it succeeds, fails permanently or runs out of retries.
// attrs are added to every retry log line.
func do[T any](ctx context.Context, p Policy, logger *slog.Logger, msg string, call func() (T, error), attrs ...any) (T, error) {
	out, err := call()
	if err == nil || !isRetryable(err) {
		return out, err
	}

	var zero T
	for attempt := 1; attempt <= p.MaxRetries; attempt++ {
		delay := p.backoffDelay(attempt, err)
		logger.Warn(msg, append(attrs,
			"attempt", attempt,
			"max_retries", p.MaxRetries,
			"delay", delay,
			"error", err,
		)...)

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return zero, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-t.C:
		}

		out, err = call()
		if err == nil || !isRetryable(err) {
			return out, err
		}
	}
	return zero, err
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// A Retry-After duration on the error takes precedence.
func (p Policy) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

// isRetryable reports whether err is a transient failure. An exhausted
// account quota comes back as 429 but will not clear by waiting.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, model.ErrQuotaExhausted) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}

	// Network, DNS, decode errors.
	return true
}

// RetrySearcher is a decorator that retries transient search failures
// before giving up on a single page.
type RetrySearcher struct {
	inner  model.Searcher
	policy Policy
	logger *slog.Logger
}

// NewRetrySearcher wraps a Searcher with retry logic.
func NewRetrySearcher(inner model.Searcher, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *RetrySearcher {
	return &RetrySearcher{
		inner:  inner,
		policy: Policy{MaxRetries: maxRetries, BaseDelay: baseDelay},
		logger: logger,
	}
}

// Search attempts the query, retrying on transient errors.
func (s *RetrySearcher) Search(ctx context.Context, query string, offset, pageSize int) ([]model.Posting, error) {
	return do(ctx, s.policy, s.logger, "retrying search after transient error",
		func() ([]model.Posting, error) { return s.inner.Search(ctx, query, offset, pageSize) },
		"query", query, "offset", offset)
}

// RetryEmbedder retries transient embedding failures so a single throttled
// batch does not fail the whole run.
type RetryEmbedder struct {
	inner  model.Embedder
	policy Policy
	logger *slog.Logger
}

// NewRetryEmbedder wraps an Embedder with retry logic.
func NewRetryEmbedder(inner model.Embedder, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *RetryEmbedder {
	return &RetryEmbedder{
		inner:  inner,
		policy: Policy{MaxRetries: maxRetries, BaseDelay: baseDelay},
		logger: logger,
	}
}

func (e *RetryEmbedder) Model() string { return e.inner.Model() }

// Embed embeds one text, retrying on transient errors.
func (e *RetryEmbedder) Embed(ctx context.Context, text string) (model.Vector, error) {
	return do(ctx, e.policy, e.logger, "retrying embedding after transient error",
		func() (model.Vector, error) { return e.inner.Embed(ctx, text) },
		"model", e.inner.Model(), "texts", 1)
}

// EmbedBatch embeds texts as one batch, retrying the whole batch on transient errors.
func (e *RetryEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]model.Vector, error) {
	return do(ctx, e.policy, e.logger, "retrying embedding after transient error",
		func() ([]model.Vector, error) { return e.inner.EmbedBatch(ctx, texts) },
		"model", e.inner.Model(), "texts", len(texts))
}
