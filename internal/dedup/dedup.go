package dedup

import (
	"strings"

	"github.com/amishk599/jobdigest/internal/model"
)

// Key returns the identity of a posting: title, company and location,
// each trimmed, whitespace-collapsed and lowercased.
func Key(p model.Posting) string {
	return normalize(p.Title) + "\x1f" + normalize(p.Company) + "\x1f" + normalize(p.Location)
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Deduplicate returns postings with repeated keys removed. The first
// occurrence of each key is kept and discovery order is preserved.
func Deduplicate(postings []model.Posting) []model.Posting {
	seen := make(map[string]struct{}, len(postings))
	out := make([]model.Posting, 0, len(postings))
	for _, p := range postings {
		k := Key(p)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	return out
}
