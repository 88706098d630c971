package filter

import (
	"strings"

	"github.com/amishk599/jobdigest/internal/model"
)

// TitleExcludeFilter rejects postings whose title contains any exclude keyword.
// Matching is case-insensitive. An empty keyword list passes everything.
type TitleExcludeFilter struct {
	keywords []string
}

// NewTitleExcludeFilter returns a filter that drops titles containing any keyword.
func NewTitleExcludeFilter(keywords []string) *TitleExcludeFilter {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}
	return &TitleExcludeFilter{keywords: lowered}
}

// Match returns false if the title contains any exclude keyword.
func (f *TitleExcludeFilter) Match(p model.Posting) bool {
	titleLower := strings.ToLower(p.Title)
	for _, kw := range f.keywords {
		if strings.Contains(titleLower, kw) {
			return false
		}
	}
	return true
}

// allFilter matches only when every wrapped filter matches.
type allFilter []model.PostingFilter

func (a allFilter) Match(p model.Posting) bool {
	for _, f := range a {
		if !f.Match(p) {
			return false
		}
	}
	return true
}

// All composes filters; the result matches when every filter matches.
// Nil filters are skipped.
func All(filters ...model.PostingFilter) model.PostingFilter {
	var out allFilter
	for _, f := range filters {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}
