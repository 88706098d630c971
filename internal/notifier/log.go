package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/jobdigest/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes the digest to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each digest entry via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs one line per profile and one per entry.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(_ context.Context, d model.Digest) error {
	for _, s := range d.Sections {
		n.logger.Info("profile matches", "profile", s.Profile, "count", len(s.Entries))
		for i, e := range s.Entries {
			n.logger.Info("match",
				"profile", s.Profile,
				"rank", i+1,
				"percent", e.Percent,
				"title", e.Title,
				"company", e.Company,
				"location", e.Location,
				"via", e.Via,
				"url", e.Link,
			)
		}
	}
	return nil
}
