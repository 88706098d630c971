package notifier

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/jobdigest/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleDigest() model.Digest {
	return model.Digest{
		GeneratedAt: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		Roles:       []string{"Data Analyst", "BI Analyst"},
		Sections: []model.DigestSection{
			{
				Profile: "Data Analyst",
				Entries: []model.DigestEntry{
					{Title: "Senior Analyst", Company: "Acme Corp", Location: "Toronto, ON", Via: "via LinkedIn", Link: "https://example.com/apply/1", Score: 0.87, Percent: 87},
					{Title: "Analyst <II>", Company: "Beta", Location: "Remote", Link: "#", Score: 0.41, Percent: 41},
				},
			},
			{Profile: "Engineer"},
		},
	}
}

func newTestSlack(url string, client *http.Client) *SlackNotifier {
	n := NewSlackNotifier(url, client, discardLogger())
	n.pause = 0
	return n
}

func TestSlackNotifier_EmptyDigest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestSlack(srv.URL, srv.Client())

	if err := n.Notify(context.Background(), model.Digest{}); err != nil {
		t.Errorf("Notify(empty) = %v, want nil", err)
	}
	if c := calls.Load(); c != 0 {
		t.Errorf("expected 0 HTTP calls, got %d", c)
	}
}

func TestSlackNotifier_OneMessagePerSection(t *testing.T) {
	var bodies [][]byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestSlack(srv.URL, srv.Client())
	if err := n.Notify(context.Background(), sampleDigest()); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}
	if len(bodies) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(bodies))
	}

	var first slackPayload
	if err := json.Unmarshal(bodies[0], &first); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if h := first.Blocks[0].Text.Text; h != "👤 Data Analyst: Jan 15, 2026" {
		t.Errorf("header text = %q", h)
	}

	var second slackPayload
	if err := json.Unmarshal(bodies[1], &second); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if !strings.Contains(string(bodies[1]), "No matches found today.") {
		t.Errorf("empty section payload = %s", bodies[1])
	}
}

func TestSlackNotifier_PayloadFormat(t *testing.T) {
	d := sampleDigest()
	payload := buildPayload(d, d.Sections[0])

	// header, roles context, two entries, divider
	if len(payload.Blocks) != 5 {
		t.Fatalf("expected 5 blocks, got %d", len(payload.Blocks))
	}
	if payload.Blocks[0].Type != "header" {
		t.Errorf("block[0] type = %q, want header", payload.Blocks[0].Type)
	}
	if payload.Blocks[1].Type != "context" || payload.Blocks[1].Elements[0].Text != "*Roles:* Data Analyst, BI Analyst" {
		t.Errorf("block[1] = %+v", payload.Blocks[1])
	}

	entry := payload.Blocks[2]
	if entry.Text.Text != "*Senior Analyst*\nAcme Corp · Toronto, ON · via LinkedIn\n*87%* match" {
		t.Errorf("entry text = %q", entry.Text.Text)
	}
	if entry.Accessory == nil || entry.Accessory.URL != "https://example.com/apply/1" || entry.Accessory.Style != "primary" {
		t.Errorf("entry accessory = %+v", entry.Accessory)
	}

	noLink := payload.Blocks[3]
	if noLink.Accessory != nil {
		t.Errorf("placeholder link should have no button, got %+v", noLink.Accessory)
	}
	if !strings.Contains(noLink.Text.Text, "Analyst &lt;II&gt;") {
		t.Errorf("title not escaped: %q", noLink.Text.Text)
	}

	if payload.Blocks[4].Type != "divider" {
		t.Errorf("block[4] type = %q, want divider", payload.Blocks[4].Type)
	}
	if payload.Text != "Data Analyst: 2 matches (Jan 15, 2026)" {
		t.Errorf("fallback text = %q", payload.Text)
	}
}

func TestSlackNotifier_PayloadCapsEntries(t *testing.T) {
	sec := model.DigestSection{Profile: "P"}
	for range 50 {
		sec.Entries = append(sec.Entries, model.DigestEntry{Title: "t", Link: "https://x"})
	}
	payload := buildPayload(model.Digest{}, sec)

	// header, capped entries, "more" context, divider
	if len(payload.Blocks) != 1+maxSlackEntries+2 {
		t.Errorf("blocks = %d, want %d", len(payload.Blocks), 1+maxSlackEntries+2)
	}
	more := payload.Blocks[len(payload.Blocks)-2]
	if more.Type != "context" || !strings.Contains(more.Elements[0].Text, "5 more") {
		t.Errorf("more block = %+v", more)
	}
}

func TestSlackNotifier_AllFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := newTestSlack(srv.URL, srv.Client())
	if err := n.Notify(context.Background(), sampleDigest()); err == nil {
		t.Error("expected error when all messages fail, got nil")
	}
}

func TestSlackNotifier_PartialFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
		} else {
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	n := newTestSlack(srv.URL, srv.Client())
	if err := n.Notify(context.Background(), sampleDigest()); err != nil {
		t.Errorf("expected nil (partial success), got %v", err)
	}
}

func TestSlackNotifier_RateLimited(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
		} else {
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	n := newTestSlack(srv.URL, srv.Client())
	d := sampleDigest()
	d.Sections = d.Sections[:1]
	if err := n.Notify(context.Background(), d); err != nil {
		t.Fatalf("expected nil after retry, got %v", err)
	}
	if c := calls.Load(); c != 2 {
		t.Errorf("expected 2 HTTP calls (initial + retry), got %d", c)
	}
}

func TestSlackNotifier_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := newTestSlack(srv.URL, srv.Client())
	if err := n.Notify(ctx, sampleDigest()); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestSendTestMessage(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := SendTestMessage(context.Background(), newTestSlack(srv.URL, srv.Client())); err != nil {
		t.Fatalf("SendTestMessage = %v", err)
	}
	if !strings.Contains(string(body), "Integration Verified") {
		t.Errorf("payload = %s", body)
	}
}
