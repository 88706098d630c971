package notifier

import (
	"context"
	"time"

	"github.com/amishk599/jobdigest/internal/model"
)

// SendTestMessage sends a sample digest to verify the integration works.
func SendTestMessage(ctx context.Context, n model.Notifier) error {
	d := model.Digest{
		GeneratedAt: time.Now(),
		Roles:       []string{"Test Role"},
		Sections: []model.DigestSection{
			{
				Profile: "Integration Check",
				Entries: []model.DigestEntry{{
					Title:    "Test Notification: Integration Verified",
					Company:  "jobdigest",
					Location: "Everywhere",
					Link:     "https://serpapi.com/google-jobs-api",
					Score:    1,
					Percent:  100,
				}},
			},
		},
	}
	return n.Notify(ctx, d)
}
