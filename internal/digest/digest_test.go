package digest

import (
	"strings"
	"testing"
	"time"

	"github.com/amishk599/jobdigest/internal/model"
)

func TestBestLink(t *testing.T) {
	tests := []struct {
		name string
		p    model.Posting
		want string
	}{
		{
			name: "apply link wins",
			p: model.Posting{
				ApplyLinks:   []string{"https://apply/1", "https://apply/2"},
				RelatedLinks: []string{"https://related"},
				JobLink:      "https://job",
			},
			want: "https://apply/1",
		},
		{
			name: "empty first apply link falls to related",
			p: model.Posting{
				ApplyLinks:   []string{"", "https://apply/2"},
				RelatedLinks: []string{"https://related"},
				JobLink:      "https://job",
			},
			want: "https://related",
		},
		{
			name: "related link when no apply options",
			p:    model.Posting{RelatedLinks: []string{"https://related"}, JobLink: "https://job"},
			want: "https://related",
		},
		{
			name: "job link last",
			p:    model.Posting{ApplyLinks: []string{""}, RelatedLinks: []string{" "}, JobLink: "https://job"},
			want: "https://job",
		},
		{
			name: "nothing usable",
			p:    model.Posting{},
			want: NoLink,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BestLink(tt.p); got != tt.want {
				t.Errorf("BestLink = %q, want %q", got, tt.want)
			}
		})
	}
}

func sampleResult() model.RunResult {
	return model.RunResult{Profiles: []model.ProfileMatches{
		{
			Profile: "Data Analyst",
			Matches: []model.ScoredMatch{
				{Score: 0.876, Posting: model.Posting{Title: "Analyst", Company: "Acme", Location: "Toronto", Via: " via LinkedIn ", JobLink: "https://job/1"}},
				{Score: 0.3, Posting: model.Posting{ApplyLinks: []string{"https://apply/2"}}, Index: 1},
			},
		},
		{Profile: "Engineer"},
	}}
}

func TestAssemble(t *testing.T) {
	now := time.Date(2025, time.March, 7, 9, 0, 0, 0, time.UTC)
	d := Assemble(sampleResult(), []string{"Data Analyst", "BI Analyst"}, now)

	if !d.GeneratedAt.Equal(now) || len(d.Roles) != 2 {
		t.Fatalf("header = %v %v", d.GeneratedAt, d.Roles)
	}
	if len(d.Sections) != 2 || d.Sections[0].Profile != "Data Analyst" || d.Sections[1].Profile != "Engineer" {
		t.Fatalf("sections = %+v", d.Sections)
	}

	first := d.Sections[0].Entries[0]
	if first.Percent != 87 {
		t.Errorf("Percent = %d, want 87 (truncated)", first.Percent)
	}
	if first.Link != "https://job/1" {
		t.Errorf("Link = %q", first.Link)
	}
	if first.Via != "via LinkedIn" {
		t.Errorf("Via = %q, want trimmed source", first.Via)
	}

	second := d.Sections[0].Entries[1]
	if second.Title != "No title" || second.Company != "Unknown" || second.Location != "Unknown" {
		t.Errorf("placeholders = %+v", second)
	}
	if second.Via != "" {
		t.Errorf("Via = %q, want empty without a source", second.Via)
	}
	if second.Link != "https://apply/2" {
		t.Errorf("Link = %q", second.Link)
	}

	if len(d.Sections[1].Entries) != 0 {
		t.Errorf("empty profile should have no entries, got %d", len(d.Sections[1].Entries))
	}
	if TotalEntries(d) != 2 {
		t.Errorf("TotalEntries = %d, want 2", TotalEntries(d))
	}
}

func TestSubject(t *testing.T) {
	d := model.Digest{
		GeneratedAt: time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC),
		Roles:       []string{"a", "b", "c"},
	}
	if got, want := Subject(d), "🧭 3-Role Job Digest – Jan 02, 2025"; got != want {
		t.Errorf("Subject = %q, want %q", got, want)
	}
}

func TestRenderHTML(t *testing.T) {
	now := time.Date(2025, time.March, 7, 9, 0, 0, 0, time.UTC)
	d := Assemble(sampleResult(), []string{"Data Analyst"}, now)

	html, err := RenderHTML(d)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}

	for _, want := range []string{
		"AI-Powered Job Digest (Mar 07, 2025)",
		"<h3>👤 Data Analyst</h3>",
		"<b>Analyst</b> at Acme (Toronto)",
		"<b>87%</b> match",
		`href="https://job/1"`,
		"View Job",
		"<h3>👤 Engineer</h3>",
		"No matches found today.",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q\n%s", want, html)
		}
	}
	if strings.Count(html, "No matches found today.") != 1 {
		t.Error("only the empty section should say no matches")
	}
}

func TestRenderHTML_EscapesText(t *testing.T) {
	d := Assemble(model.RunResult{Profiles: []model.ProfileMatches{{
		Profile: "P",
		Matches: []model.ScoredMatch{{Score: 0.5, Posting: model.Posting{Title: "<script>alert(1)</script>", Company: "A&B"}}},
	}}}, nil, time.Now())

	html, err := RenderHTML(d)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("title was not escaped:\n%s", html)
	}
	if !strings.Contains(html, "A&amp;B") {
		t.Errorf("company was not escaped:\n%s", html)
	}
}

func TestRenderTerminal(t *testing.T) {
	d := Assemble(sampleResult(), []string{"Data Analyst"}, time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC))
	out := RenderTerminal(d)

	for _, want := range []string{"Mar 07, 2025", "Data Analyst", "Analyst", "87%", "via LinkedIn", "https://job/1", "Engineer", "No matches found today."} {
		if !strings.Contains(out, want) {
			t.Errorf("terminal output missing %q\n%s", want, out)
		}
	}
}
