package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/jobdigest/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// maxSlackEntries keeps a section message under Slack's 50-block limit.
const maxSlackEntries = 45

// SlackNotifier sends the digest to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
	pause      time.Duration // between messages
}

// NewSlackNotifier returns a notifier that posts one message per profile section.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
		pause:      500 * time.Millisecond,
	}
}

// Notify sends each profile section as a separate Slack message using Block Kit.
// Returns an error only if ALL messages fail. Individual failures are logged.
func (s *SlackNotifier) Notify(ctx context.Context, d model.Digest) error {
	if len(d.Sections) == 0 {
		return nil
	}

	failures := 0
	for i, sec := range d.Sections {
		if i > 0 {
			if err := sleep(ctx, s.pause); err != nil {
				return err
			}
		}

		if err := s.sendMessage(ctx, buildPayload(d, sec)); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error("slack notification failed", "profile", sec.Profile, "error", err)
			failures++
			continue
		}
		s.logger.Info("slack message sent", "profile", sec.Profile, "entries", len(sec.Entries))
	}

	if failures == len(d.Sections) {
		return fmt.Errorf("all %d slack notifications failed", failures)
	}
	s.logger.Info("slack notifications complete", "sent", len(d.Sections)-failures, "failed", failures)
	return nil
}

func (s *SlackNotifier) sendMessage(ctx context.Context, payload slackPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	status, retryAfter, err := s.post(ctx, body)
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}

	if status == http.StatusTooManyRequests {
		secs, _ := strconv.Atoi(retryAfter)
		if secs <= 0 {
			secs = 1
		}
		s.logger.Warn("slack rate limited, retrying", "retry_after_secs", secs)
		if err := sleep(ctx, time.Duration(secs)*time.Second); err != nil {
			return err
		}

		status, _, err = s.post(ctx, body)
		if err != nil {
			return fmt.Errorf("post to slack (retry): %w", err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", status)
		}
		return nil
	}

	if status != http.StatusOK {
		return fmt.Errorf("slack returned %d", status)
	}
	return nil
}

func (s *SlackNotifier) post(ctx context.Context, body []byte) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	return resp.StatusCode, resp.Header.Get("Retry-After"), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Block Kit payload types.

type slackPayload struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type      string        `json:"type"`
	Text      *slackText    `json:"text,omitempty"`
	Fields    []slackText   `json:"fields,omitempty"`
	Elements  []slackText   `json:"elements,omitempty"`
	Accessory *slackElement `json:"accessory,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style,omitempty"`
}

// escapeMrkdwn escapes the characters Slack treats as control sequences.
func escapeMrkdwn(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

func buildPayload(d model.Digest, sec model.DigestSection) slackPayload {
	date := d.GeneratedAt.Format("Jan 02, 2006")

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "👤 " + sec.Profile + ": " + date},
		},
	}
	if len(d.Roles) > 0 {
		blocks = append(blocks, slackBlock{
			Type:     "context",
			Elements: []slackText{{Type: "mrkdwn", Text: "*Roles:* " + escapeMrkdwn(strings.Join(d.Roles, ", "))}},
		})
	}

	if len(sec.Entries) == 0 {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: "_No matches found today._"},
		})
	}

	entries := sec.Entries
	if len(entries) > maxSlackEntries {
		entries = entries[:maxSlackEntries]
	}
	for _, e := range entries {
		meta := escapeMrkdwn(e.Company) + " · " + escapeMrkdwn(e.Location)
		if e.Via != "" {
			meta += " · " + escapeMrkdwn(e.Via)
		}
		block := slackBlock{
			Type: "section",
			Text: &slackText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("*%s*\n%s\n*%d%%* match", escapeMrkdwn(e.Title), meta, e.Percent),
			},
		}
		if e.Link != "" && e.Link != "#" {
			block.Accessory = &slackElement{
				Type:  "button",
				Text:  slackText{Type: "plain_text", Text: "View Job"},
				URL:   e.Link,
				Style: "primary",
			}
		}
		blocks = append(blocks, block)
	}
	if extra := len(sec.Entries) - len(entries); extra > 0 {
		blocks = append(blocks, slackBlock{
			Type:     "context",
			Elements: []slackText{{Type: "mrkdwn", Text: fmt.Sprintf("…and %d more", extra)}},
		})
	}

	blocks = append(blocks, slackBlock{Type: "divider"})

	return slackPayload{
		Text:   fmt.Sprintf("%s: %d matches (%s)", sec.Profile, len(sec.Entries), date),
		Blocks: blocks,
	}
}
