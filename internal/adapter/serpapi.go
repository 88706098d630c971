package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/amishk599/jobdigest/internal/model"
)

// DefaultSerpAPIBaseURL is the public SerpAPI endpoint.
const DefaultSerpAPIBaseURL = "https://serpapi.com"

// noResultsMarker is the substring SerpAPI uses in its "error" field when a
// query simply has no (more) results. That is an empty page, not a failure.
const noResultsMarker = "hasn't returned any results"

// quotaMarker appears when the account has no searches left this month.
const quotaMarker = "run out of searches"

// providerError turns a SerpAPI error message into an error, tagging an
// exhausted quota so it is not retried.
func providerError(msg string) error {
	if strings.Contains(msg, quotaMarker) {
		return fmt.Errorf("%s: %w", msg, model.ErrQuotaExhausted)
	}
	return errors.New(msg)
}

// serpResponse is the top-level Google Jobs response. Job records are kept
// loosely typed and decoded one by one so a malformed record only drops itself.
type serpResponse struct {
	JobsResults []map[string]any `json:"jobs_results"`
	Error       string           `json:"error"`
}

// serpJob is the subset of a Google Jobs record we ingest.
type serpJob struct {
	Title              string         `json:"title"`
	CompanyName        string         `json:"company_name"`
	Location           string         `json:"location"`
	Via                string         `json:"via"`
	Description        string         `json:"description"`
	Link               string         `json:"link"`
	ShareLink          string         `json:"share_link"`
	ApplyOptions       []serpLink     `json:"apply_options"`
	RelatedLinks       []serpLink     `json:"related_links"`
	DetectedExtensions map[string]any `json:"detected_extensions"`
}

type serpLink struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// SerpAPIClient queries the SerpAPI Google Jobs engine.
type SerpAPIClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// NewSerpAPIClient creates a client. An empty baseURL uses DefaultSerpAPIBaseURL.
func NewSerpAPIClient(baseURL, apiKey string, client *http.Client, logger *slog.Logger) *SerpAPIClient {
	if baseURL == "" {
		baseURL = DefaultSerpAPIBaseURL
	}
	return &SerpAPIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		logger:  logger,
	}
}

// Search fetches one page of Google Jobs results starting at offset and
// normalizes each record into a Posting.
func (c *SerpAPIClient) Search(ctx context.Context, query string, offset, pageSize int) ([]model.Posting, error) {
	u, err := url.Parse(c.baseURL + "/search.json")
	if err != nil {
		return nil, fmt.Errorf("serpapi search %q: %w", query, err)
	}
	q := u.Query()
	q.Set("engine", "google_jobs")
	q.Set("q", query)
	q.Set("hl", "en")
	q.Set("api_key", c.apiKey)
	q.Set("date_posted", "past_24_hours")
	q.Set("sort_by", "date")
	q.Set("start", strconv.Itoa(offset))
	q.Set("num", strconv.Itoa(pageSize))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("serpapi search %q: %w", query, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi search %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("serpapi search %q: %w", query, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        providerError(strings.TrimSpace(string(body))),
		})
	}

	var sr serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("serpapi search %q: decode: %w", query, err)
	}

	if sr.Error != "" {
		if strings.Contains(sr.Error, noResultsMarker) {
			return nil, nil
		}
		return nil, fmt.Errorf("serpapi search %q: %w", query, providerError(sr.Error))
	}

	postings := make([]model.Posting, 0, len(sr.JobsResults))
	for i, raw := range sr.JobsResults {
		job, err := decodeJob(raw)
		if err != nil {
			c.logger.Debug("skipping malformed job record", "query", query, "index", i, "error", err)
			continue
		}
		postings = append(postings, job.toPosting())
	}

	return postings, nil
}

// decodeJob converts one loosely-typed record into a serpJob.
func decodeJob(raw map[string]any) (serpJob, error) {
	var job serpJob
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &job,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return job, err
	}
	if err := decoder.Decode(raw); err != nil {
		return job, err
	}
	return job, nil
}

// toPosting applies the ingestion defaults: absent text fields stay empty,
// link lists keep provider order (including empty entries), freshness text
// comes from posted_at, then posted.
func (j serpJob) toPosting() model.Posting {
	p := model.Posting{
		Title:       strings.TrimSpace(j.Title),
		Company:     strings.TrimSpace(j.CompanyName),
		Location:    strings.TrimSpace(j.Location),
		Via:         strings.TrimSpace(j.Via),
		Description: extractText(j.Description),
		PostedText:  postedText(j.DetectedExtensions),
		JobLink:     j.Link,
	}
	if p.JobLink == "" {
		p.JobLink = j.ShareLink
	}
	for _, l := range j.ApplyOptions {
		p.ApplyLinks = append(p.ApplyLinks, l.Link)
	}
	for _, l := range j.RelatedLinks {
		p.RelatedLinks = append(p.RelatedLinks, l.Link)
	}
	return p
}

func postedText(ext map[string]any) string {
	for _, key := range []string{"posted_at", "posted"} {
		v, ok := ext[key]
		if !ok || v == nil {
			continue
		}
		if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
			return s
		}
	}
	return ""
}
