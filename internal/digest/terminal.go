package digest

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobdigest/internal/model"
)

var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")) // bright blue

	profileStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1).
			Foreground(lipgloss.Color("15"))

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Underline(true)

	emptyStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("240"))
)

// scoreStyle colors a match percentage: green for strong, yellow for fair,
// gray otherwise.
func scoreStyle(percent int) lipgloss.Style {
	switch {
	case percent >= 60:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	case percent >= 40:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	}
}

// RenderTerminal renders d for display in a terminal.
func RenderTerminal(d model.Digest) string {
	var b strings.Builder

	b.WriteString(headingStyle.Render(fmt.Sprintf("Job Digest (%s)", d.GeneratedAt.Format("Jan 02, 2006"))))
	b.WriteString("\n")
	if len(d.Roles) > 0 {
		b.WriteString(subtitleStyle.Render("Roles: " + strings.Join(d.Roles, ", ")))
		b.WriteString("\n")
	}

	for _, s := range d.Sections {
		b.WriteString(profileStyle.Render(s.Profile))
		b.WriteString("\n")
		if len(s.Entries) == 0 {
			b.WriteString("  " + emptyStyle.Render("No matches found today."))
			b.WriteString("\n")
			continue
		}
		for i, e := range s.Entries {
			score := scoreStyle(e.Percent).Render(fmt.Sprintf("%3d%%", e.Percent))
			fmt.Fprintf(&b, "  %2d. %s  %s\n", i+1, score, titleStyle.Render(e.Title))
			meta := e.Company + " · " + e.Location
			if e.Via != "" {
				meta += " · " + e.Via
			}
			fmt.Fprintf(&b, "           %s\n", subtitleStyle.Render(meta))
			fmt.Fprintf(&b, "           %s\n", linkStyle.Render(e.Link))
		}
	}
	return b.String()
}
