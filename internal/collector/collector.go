package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amishk599/jobdigest/internal/dedup"
	"github.com/amishk599/jobdigest/internal/model"
)

const (
	DefaultMinJobs           = 10
	DefaultBroadenAfterRound = 2
	DefaultMaxRounds         = 8
	DefaultPageSize          = 20

	// LimiterKey is the rate limiter key shared by all provider calls.
	LimiterKey = "search"
)

// Limiter paces provider calls.
type Limiter interface {
	Wait(ctx context.Context, key string) error
}

// Options controls how hard the collector tries for a single role.
type Options struct {
	Locations              []string
	MinJobs                int
	BroadenTo              string
	BroadenAfterRound      int
	MaxRounds              int
	PageSize               int
	MaxConsecutiveFailures int // 0 disables the fatal threshold
}

// withDefaults fills zero values and normalizes the location list.
func (o Options) withDefaults() Options {
	if o.MinJobs == 0 {
		o.MinJobs = DefaultMinJobs
	}
	if o.BroadenAfterRound == 0 {
		o.BroadenAfterRound = DefaultBroadenAfterRound
	}
	if o.MaxRounds == 0 {
		o.MaxRounds = DefaultMaxRounds
	}
	if o.PageSize == 0 {
		o.PageSize = DefaultPageSize
	}
	o.Locations = uniqueLocations(o.Locations)
	o.BroadenTo = strings.TrimSpace(o.BroadenTo)
	return o
}

func (o Options) validate() error {
	switch {
	case len(o.Locations) == 0:
		return errors.New("collector: at least one location is required")
	case o.MinJobs < 1:
		return fmt.Errorf("collector: min jobs must be >= 1, got %d", o.MinJobs)
	case o.MaxRounds < 1:
		return fmt.Errorf("collector: max rounds must be >= 1, got %d", o.MaxRounds)
	case o.PageSize < 1:
		return fmt.Errorf("collector: page size must be >= 1, got %d", o.PageSize)
	case o.BroadenAfterRound < 1:
		return fmt.Errorf("collector: broaden round must be >= 1, got %d", o.BroadenAfterRound)
	case o.MaxConsecutiveFailures < 0:
		return fmt.Errorf("collector: max consecutive failures must be >= 0, got %d", o.MaxConsecutiveFailures)
	}
	return nil
}

// uniqueLocations trims, drops blanks and removes duplicates, keeping order.
func uniqueLocations(locs []string) []string {
	seen := make(map[string]bool, len(locs))
	out := make([]string, 0, len(locs))
	for _, l := range locs {
		l = strings.TrimSpace(l)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

// Stats summarizes one Collect call.
type Stats struct {
	Rounds    int
	Calls     int
	Failures  int
	Fresh     int // fresh postings accumulated before dedup
	Unique    int
	State     State
	Locations []string // locations queried, including any broaden target
}

// Result is the outcome of collecting one role.
type Result struct {
	Postings []model.Posting
	Stats    Stats
}

// Collector gathers fresh postings for one role at a time.
type Collector struct {
	searcher model.Searcher
	filter   model.PostingFilter
	limiter  Limiter
	opts     Options
	logger   *slog.Logger
}

// New creates a collector. Zero option values take their defaults; invalid
// values are reported as errors.
func New(searcher model.Searcher, filter model.PostingFilter, limiter Limiter, opts Options, logger *slog.Logger) (*Collector, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Collector{
		searcher: searcher,
		filter:   filter,
		limiter:  limiter,
		opts:     opts,
		logger:   logger,
	}, nil
}

// Collect queries every location round by round, paginating each location,
// until MinJobs fresh postings are accumulated or MaxRounds is reached. The
// returned postings are deduplicated. Individual provider failures are skipped.
func (c *Collector) Collect(ctx context.Context, role string) (Result, error) {
	locs := append([]string(nil), c.opts.Locations...)
	offsets := make(map[string]int, len(locs)+1)

	var (
		collected   []model.Posting
		stats       Stats
		consecutive int
		state       = Collecting
	)

	for round := 1; !state.terminal(); round++ {
		stats.Rounds = round

		for _, loc := range locs {
			query := role + " " + loc
			offset := offsets[loc]
			offsets[loc] += c.opts.PageSize

			if c.limiter != nil {
				if err := c.limiter.Wait(ctx, LimiterKey); err != nil {
					return Result{}, fmt.Errorf("collecting %q: %w", role, err)
				}
			}

			stats.Calls++
			page, err := c.searcher.Search(ctx, query, offset, c.opts.PageSize)
			if err != nil {
				if ctx.Err() != nil {
					return Result{}, fmt.Errorf("collecting %q: %w", role, ctx.Err())
				}
				stats.Failures++
				consecutive++
				c.logger.Warn("search failed, skipping page",
					"role", role,
					"location", loc,
					"offset", offset,
					"error", err,
				)
				if c.opts.MaxConsecutiveFailures > 0 && consecutive >= c.opts.MaxConsecutiveFailures {
					return Result{}, fmt.Errorf("collecting %q: %d consecutive failures: %w: %w",
						role, consecutive, model.ErrProviderUnavailable, err)
				}
				continue
			}
			consecutive = 0

			fresh := 0
			for _, p := range page {
				if c.filter != nil && !c.filter.Match(p) {
					continue
				}
				p.Role = role
				collected = append(collected, p)
				fresh++
			}

			c.logger.Debug("searched",
				"query", query,
				"offset", offset,
				"returned", len(page),
				"fresh", fresh,
				"accumulated", len(collected),
			)

			if len(collected) >= c.opts.MinJobs {
				break
			}
		}

		canBroaden := c.opts.BroadenTo != "" && !contains(locs, c.opts.BroadenTo)
		next := transition(state, round, len(collected), c.opts, canBroaden)
		if next == Broadened && state != Broadened {
			locs = append(locs, c.opts.BroadenTo)
			c.logger.Info("broadening search", "role", role, "location", c.opts.BroadenTo, "after_round", round)
		}
		state = next
	}

	unique := dedup.Deduplicate(collected)

	stats.Fresh = len(collected)
	stats.Unique = len(unique)
	stats.State = state
	stats.Locations = locs

	c.logger.Info("collected role",
		"role", role,
		"rounds", stats.Rounds,
		"calls", stats.Calls,
		"failures", stats.Failures,
		"fresh", stats.Fresh,
		"unique", stats.Unique,
		"state", state.String(),
	)

	return Result{Postings: unique, Stats: stats}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
