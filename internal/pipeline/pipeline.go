package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amishk599/jobdigest/internal/collector"
	"github.com/amishk599/jobdigest/internal/dedup"
	"github.com/amishk599/jobdigest/internal/digest"
	"github.com/amishk599/jobdigest/internal/model"
)

// RoleCollector gathers fresh postings for one role.
type RoleCollector interface {
	Collect(ctx context.Context, role string) (collector.Result, error)
}

// Ranker scores postings against the candidate profiles.
type Ranker interface {
	Rank(ctx context.Context, postings []model.Posting) (model.RunResult, error)
}

// Pauser blocks for a fixed duration or until ctx is done.
type Pauser interface {
	Pause(ctx context.Context, d time.Duration) error
}

// Runner owns the full run: collect → dedup → rank → assemble.
type Runner struct {
	collector RoleCollector
	ranker    Ranker
	pauser    Pauser
	rolePause time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewRunner creates a runner wired with all its dependencies. pauser may be
// nil when no pause between roles is wanted.
func NewRunner(c RoleCollector, r Ranker, pauser Pauser, rolePause time.Duration, logger *slog.Logger) *Runner {
	return &Runner{
		collector: c,
		ranker:    r,
		pauser:    pauser,
		rolePause: rolePause,
		now:       time.Now,
		logger:    logger,
	}
}

// UniqueRoles trims roles, drops blanks and removes case-insensitive
// duplicates, keeping the first spelling.
func UniqueRoles(roles []string) []string {
	seen := make(map[string]bool, len(roles))
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(r)
		key := strings.ToLower(r)
		if r == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

// Run collects every role in order, merges and deduplicates the postings,
// ranks them and assembles the digest.
func (r *Runner) Run(ctx context.Context, roles []string) (model.Digest, error) {
	roles = UniqueRoles(roles)
	start := r.now()

	var all []model.Posting
	for i, role := range roles {
		if i > 0 && r.pauser != nil {
			if err := r.pauser.Pause(ctx, r.rolePause); err != nil {
				return model.Digest{}, fmt.Errorf("pausing between roles: %w", err)
			}
		}

		res, err := r.collector.Collect(ctx, role)
		if err != nil {
			return model.Digest{}, err
		}
		r.logger.Info(fmt.Sprintf("%s: collected %d fresh jobs", role, len(res.Postings)),
			"role", role,
			"collected", len(res.Postings),
			"state", res.Stats.State.String(),
		)
		all = append(all, res.Postings...)
	}

	unique := dedup.Deduplicate(all)
	if dropped := len(all) - len(unique); dropped > 0 {
		r.logger.Debug("removed cross-role duplicates", "count", dropped)
	}

	result, err := r.ranker.Rank(ctx, unique)
	if err != nil {
		return model.Digest{}, fmt.Errorf("ranking postings: %w", err)
	}

	d := digest.Assemble(result, roles, r.now())
	r.logger.Info("run complete",
		"roles", len(roles),
		"postings", len(unique),
		"profiles", len(d.Sections),
		"entries", digest.TotalEntries(d),
		"elapsed", r.now().Sub(start).Round(time.Millisecond),
	)
	return d, nil
}
