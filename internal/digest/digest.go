package digest

import (
	"fmt"
	"strings"
	"time"

	"github.com/amishk599/jobdigest/internal/model"
)

const (
	// NoLink is used when a posting carries no usable link.
	NoLink = "#"

	untitled = "No title"
	unknown  = "Unknown"
)

// BestLink picks the link shown for a posting: the first apply link, then the
// first related link, then the provider's job link. Empty entries do not
// fall through to later entries of the same list.
func BestLink(p model.Posting) string {
	if len(p.ApplyLinks) > 0 && strings.TrimSpace(p.ApplyLinks[0]) != "" {
		return strings.TrimSpace(p.ApplyLinks[0])
	}
	if len(p.RelatedLinks) > 0 && strings.TrimSpace(p.RelatedLinks[0]) != "" {
		return strings.TrimSpace(p.RelatedLinks[0])
	}
	if link := strings.TrimSpace(p.JobLink); link != "" {
		return link
	}
	return NoLink
}

// Assemble builds a digest with one section per profile, in result order.
func Assemble(result model.RunResult, roles []string, now time.Time) model.Digest {
	d := model.Digest{
		GeneratedAt: now,
		Roles:       append([]string(nil), roles...),
		Sections:    make([]model.DigestSection, 0, len(result.Profiles)),
	}
	for _, pm := range result.Profiles {
		section := model.DigestSection{
			Profile: pm.Profile,
			Entries: make([]model.DigestEntry, 0, len(pm.Matches)),
		}
		for _, m := range pm.Matches {
			section.Entries = append(section.Entries, model.DigestEntry{
				Title:    orDefault(m.Posting.Title, untitled),
				Company:  orDefault(m.Posting.Company, unknown),
				Location: orDefault(m.Posting.Location, unknown),
				Via:      strings.TrimSpace(m.Posting.Via),
				Link:     BestLink(m.Posting),
				Score:    m.Score,
				Percent:  int(m.Score * 100),
			})
		}
		d.Sections = append(d.Sections, section)
	}
	return d
}

// Subject returns the email subject line for d.
func Subject(d model.Digest) string {
	return fmt.Sprintf("🧭 %d-Role Job Digest – %s", len(d.Roles), d.GeneratedAt.Format("Jan 02, 2006"))
}

// TotalEntries counts entries across all sections.
func TotalEntries(d model.Digest) int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Entries)
	}
	return n
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
