package filter

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/amishk599/jobdigest/internal/model"
)

// DefaultMaxHours is the freshness window used when none is configured.
const DefaultMaxHours = 24.0

var ageRegex = regexp.MustCompile(`(\d+)\s*(minutes|minute|hours|hour|days|day)`)

// ParseAgeHours converts provider text such as "3 hours ago", "45 minutes ago",
// "1 day ago", "today" or "just posted" into an age in hours.
// Text that cannot be understood yields +Inf.
func ParseAgeHours(text string) float64 {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return math.Inf(1)
	}
	if strings.Contains(t, "just") || strings.Contains(t, "today") {
		return 0
	}

	m := ageRegex.FindStringSubmatch(t)
	if m == nil {
		return math.Inf(1)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return math.Inf(1)
	}

	switch {
	case strings.HasPrefix(m[2], "minute"):
		return float64(n) / 60
	case strings.HasPrefix(m[2], "hour"):
		return float64(n)
	case strings.HasPrefix(m[2], "day"):
		return float64(n) * 24
	}
	return math.Inf(1)
}

// IsFresh reports whether the posting's age is within maxHours.
// Postings with unknown age are never fresh.
func IsFresh(p model.Posting, maxHours float64) bool {
	return ParseAgeHours(p.PostedText) <= maxHours
}

// FreshnessFilter keeps postings that are at most MaxHours old.
type FreshnessFilter struct {
	maxHours float64
}

// NewFreshnessFilter returns a filter with the given window.
// A non-positive window falls back to DefaultMaxHours.
func NewFreshnessFilter(maxHours float64) *FreshnessFilter {
	if maxHours <= 0 {
		maxHours = DefaultMaxHours
	}
	return &FreshnessFilter{maxHours: maxHours}
}

// Match implements model.PostingFilter.
func (f *FreshnessFilter) Match(p model.Posting) bool {
	return IsFresh(p, f.maxHours)
}
