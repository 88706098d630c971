package ranker

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/amishk599/jobdigest/internal/model"
)

const (
	DefaultTopK      = 15
	DefaultBatchSize = 64
)

// Options tunes ranking. TopK <= 0 disables truncation; BatchSize <= 0 uses
// DefaultBatchSize.
type Options struct {
	TopK      int
	BatchSize int
}

// Ranker scores postings against every registered profile.
type Ranker struct {
	registry *Registry
	embedder model.Embedder
	opts     Options
	logger   *slog.Logger
}

// New creates a ranker over the given registry.
func New(registry *Registry, embedder model.Embedder, opts Options, logger *slog.Logger) *Ranker {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Ranker{
		registry: registry,
		embedder: embedder,
		opts:     opts,
		logger:   logger,
	}
}

// CompositeText is the text embedded for a posting: the non-empty of title,
// company and description joined by a space.
func CompositeText(p model.Posting) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Title, p.Company, p.Description} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Rank embeds the postings and returns, for each profile in registry order,
// the postings sorted by descending similarity and truncated to TopK.
// Postings with no text are skipped. Ties keep discovery order.
func (r *Ranker) Rank(ctx context.Context, postings []model.Posting) (model.RunResult, error) {
	var (
		texts   []string
		indices []int
	)
	for i, p := range postings {
		if t := CompositeText(p); t != "" {
			texts = append(texts, t)
			indices = append(indices, i)
		}
	}
	if skipped := len(postings) - len(texts); skipped > 0 {
		r.logger.Debug("skipped postings without text", "count", skipped)
	}

	vecs, err := r.embed(ctx, texts)
	if err != nil {
		return model.RunResult{}, err
	}

	profiles := r.registry.Profiles()
	result := model.RunResult{Profiles: make([]model.ProfileMatches, len(profiles))}
	for pi, prof := range profiles {
		matches := make([]model.ScoredMatch, 0, len(vecs))
		for j, v := range vecs {
			if len(v) != len(prof.Embedding) {
				return model.RunResult{}, fmt.Errorf("profile %q vs posting %d: %w (%d != %d)",
					prof.Name, indices[j], model.ErrDimensionMismatch, len(prof.Embedding), len(v))
			}
			matches = append(matches, model.ScoredMatch{
				Score:   Cosine(prof.Embedding, v),
				Posting: postings[indices[j]],
				Index:   indices[j],
			})
		}

		slices.SortStableFunc(matches, func(a, b model.ScoredMatch) int {
			if c := cmp.Compare(b.Score, a.Score); c != 0 {
				return c
			}
			return cmp.Compare(a.Index, b.Index)
		})
		if r.opts.TopK > 0 && len(matches) > r.opts.TopK {
			matches = matches[:r.opts.TopK]
		}

		result.Profiles[pi] = model.ProfileMatches{Profile: prof.Name, Matches: matches}
		r.logger.Debug("ranked profile", "profile", prof.Name, "matches", len(matches))
	}

	return result, nil
}

// embed sends texts to the embedder in chunks of BatchSize.
func (r *Ranker) embed(ctx context.Context, texts []string) ([]model.Vector, error) {
	out := make([]model.Vector, 0, len(texts))
	for start := 0; start < len(texts); start += r.opts.BatchSize {
		end := min(start+r.opts.BatchSize, len(texts))
		vecs, err := r.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedding postings %d-%d: %w", start, end-1, err)
		}
		if len(vecs) != end-start {
			return nil, fmt.Errorf("embedding postings %d-%d: got %d vectors", start, end-1, len(vecs))
		}
		out = append(out, vecs...)
	}
	return out, nil
}
