package ranker

import (
	"context"
	"fmt"
	"strings"

	"github.com/amishk599/jobdigest/internal/model"
)

// ProfileSource is a named profile text before embedding.
type ProfileSource struct {
	Name string
	Text string
}

// Registry holds the embedded candidate profiles for one run.
// It is read-only after NewRegistry returns.
type Registry struct {
	profiles []model.CandidateProfile
}

// NewRegistry embeds every profile text in one batch call.
func NewRegistry(ctx context.Context, embedder model.Embedder, sources []ProfileSource) (*Registry, error) {
	if len(sources) == 0 {
		return nil, model.ErrNoProfiles
	}

	seen := make(map[string]bool, len(sources))
	texts := make([]string, len(sources))
	for i, s := range sources {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return nil, fmt.Errorf("profile %d: name is required", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("profile %q: duplicate name", name)
		}
		seen[name] = true

		text := strings.TrimSpace(s.Text)
		if text == "" {
			return nil, fmt.Errorf("profile %q: text is empty", name)
		}
		texts[i] = text
	}

	vecs, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding profiles: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedding profiles: got %d vectors for %d profiles", len(vecs), len(texts))
	}

	profiles := make([]model.CandidateProfile, len(sources))
	for i, s := range sources {
		if len(vecs[i]) == 0 {
			return nil, fmt.Errorf("profile %q: empty embedding", s.Name)
		}
		profiles[i] = model.CandidateProfile{
			Name:      strings.TrimSpace(s.Name),
			Text:      texts[i],
			Embedding: vecs[i],
		}
	}
	return &Registry{profiles: profiles}, nil
}

// Profiles returns the registered profiles in configuration order.
func (r *Registry) Profiles() []model.CandidateProfile {
	return append([]model.CandidateProfile(nil), r.profiles...)
}

// Len returns the number of profiles.
func (r *Registry) Len() int { return len(r.profiles) }
