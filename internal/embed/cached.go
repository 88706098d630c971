package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/amishk599/jobdigest/internal/model"
)

// CachedEmbedder serves embeddings from a cache and only sends misses to the
// wrapped embedder. Cache failures degrade to cache misses.
type CachedEmbedder struct {
	inner  model.Embedder
	cache  model.EmbeddingCache
	logger *slog.Logger
}

// NewCachedEmbedder wraps inner with cache.
func NewCachedEmbedder(inner model.Embedder, cache model.EmbeddingCache, logger *slog.Logger) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: cache, logger: logger}
}

// CacheKey identifies text embedded by a specific model.
func CacheKey(modelName, text string) string {
	sum := sha256.Sum256([]byte(modelName + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// Model returns the wrapped embedder's model.
func (c *CachedEmbedder) Model() string { return c.inner.Model() }

// Embed returns the embedding of a single text.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (model.Vector, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch returns one vector per text, in order.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]model.Vector, error) {
	modelName := c.inner.Model()
	out := make([]model.Vector, len(texts))

	var missTexts []string
	var missIdx []int
	for i, t := range texts {
		v, ok, err := c.cache.Get(CacheKey(modelName, t))
		if err != nil {
			c.logger.Warn("embedding cache read failed", "error", err)
		}
		if ok {
			out[i] = v
			continue
		}
		missTexts = append(missTexts, t)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := c.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d inputs", len(vecs), len(missTexts))
	}

	for j, v := range vecs {
		out[missIdx[j]] = v
		if err := c.cache.Put(CacheKey(modelName, missTexts[j]), modelName, v); err != nil {
			c.logger.Warn("embedding cache write failed", "error", err)
		}
	}

	c.logger.Debug("embedded batch", "requested", len(texts), "cache_hits", len(texts)-len(missTexts))
	return out, nil
}
