package dedup

import (
	"reflect"
	"testing"

	"github.com/amishk599/jobdigest/internal/model"
)

func p(title, company, location, desc string) model.Posting {
	return model.Posting{Title: title, Company: company, Location: location, Description: desc}
}

func TestDeduplicate_FirstSeenWins(t *testing.T) {
	a := p("Data Analyst", "Acme", "Toronto, ON", "first")
	b := p("Support Analyst", "Beta", "Remote", "")
	a2 := p("Data Analyst", "Acme", "Toronto, ON", "second, longer description")

	got := Deduplicate([]model.Posting{a, b, a2})
	want := []model.Posting{a, b}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Deduplicate = %+v, want %+v", got, want)
	}
}

func TestDeduplicate_Idempotent(t *testing.T) {
	in := []model.Posting{
		p("A", "X", "L1", ""),
		p("A", "X", "L2", ""),
		p("a ", " x", "l1", ""),
		p("B", "Y", "L1", ""),
		p("A", "X", "L1", "dup"),
	}
	once := Deduplicate(in)
	twice := Deduplicate(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("not idempotent: %+v vs %+v", once, twice)
	}
	if len(once) != 3 {
		t.Errorf("len = %d, want 3", len(once))
	}
}

func TestDeduplicate_DuplicateFetchKeepsFirstFreshness(t *testing.T) {
	first := model.Posting{Title: "Analyst", Company: "Acme", Location: "Remote", PostedText: "2 hours ago"}
	second := model.Posting{Title: "Analyst", Company: "Acme", Location: "Remote", PostedText: "20 hours ago"}

	got := Deduplicate([]model.Posting{first, second})
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].PostedText != "2 hours ago" {
		t.Errorf("PostedText = %q, want first-seen %q", got[0].PostedText, "2 hours ago")
	}
}

func TestKey_Normalization(t *testing.T) {
	tests := []struct {
		name string
		a, b model.Posting
		same bool
	}{
		{"case insensitive", p("Data Analyst", "ACME", "Remote", ""), p("data analyst", "acme", "remote", ""), true},
		{"trimmed", p(" Data Analyst ", "Acme", "Remote", ""), p("Data Analyst", "Acme", "Remote", ""), true},
		{"inner whitespace", p("Data  Analyst", "Acme", "Remote", ""), p("Data Analyst", "Acme", "Remote", ""), true},
		{"different location", p("Data Analyst", "Acme", "Remote", ""), p("Data Analyst", "Acme", "Toronto", ""), false},
		{"fields do not bleed", p("ab", "c", "", ""), p("a", "bc", "", ""), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.a) == Key(tt.b); got != tt.same {
				t.Errorf("same key = %v, want %v", got, tt.same)
			}
		})
	}
}

func TestDeduplicate_Empty(t *testing.T) {
	if got := Deduplicate(nil); len(got) != 0 {
		t.Errorf("Deduplicate(nil) = %v, want empty", got)
	}
}
