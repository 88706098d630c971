package notifier

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/amishk599/jobdigest/internal/model"
)

func TestLogNotifier_Notify_emptyDigest(t *testing.T) {
	n := NewLogNotifier(discardLogger())
	if err := n.Notify(context.Background(), model.Digest{}); err != nil {
		t.Errorf("Notify = %v, want nil", err)
	}
}

func TestLogNotifier_Notify_logsEntries(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	if err := n.Notify(context.Background(), sampleDigest()); err != nil {
		t.Fatalf("Notify = %v, want nil", err)
	}

	out := buf.String()
	for _, want := range []string{
		"profile=\"Data Analyst\" count=2",
		"title=\"Senior Analyst\"",
		"percent=87",
		"url=https://example.com/apply/1",
		"profile=Engineer count=0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q\n%s", want, out)
		}
	}
}
