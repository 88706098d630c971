package filter

import (
	"math"
	"testing"

	"github.com/amishk599/jobdigest/internal/model"
)

func TestParseAgeHours(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{name: "hours", text: "3 hours ago", want: 3},
		{name: "single hour", text: "1 hour ago", want: 1},
		{name: "minutes", text: "45 minutes ago", want: 0.75},
		{name: "single minute", text: "1 minute ago", want: 1.0 / 60},
		{name: "days", text: "1 day ago", want: 24},
		{name: "plural days", text: "3 days ago", want: 72},
		{name: "today", text: "today", want: 0},
		{name: "just posted", text: "Just posted", want: 0},
		{name: "today wins over number", text: "posted today, 30 days ago", want: 0},
		{name: "surrounding whitespace and case", text: "  12 HOURS AGO ", want: 12},
		{name: "no space between number and unit", text: "5hours ago", want: 5},
		{name: "first match wins", text: "2 days 3 hours ago", want: 48},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseAgeHours(tt.text); got != tt.want {
				t.Errorf("ParseAgeHours(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseAgeHours_Unparseable(t *testing.T) {
	for _, text := range []string{"", "   ", "tomorrow", "2 weeks ago", "30+ days", "recently"} {
		if got := ParseAgeHours(text); !math.IsInf(got, 1) {
			t.Errorf("ParseAgeHours(%q) = %v, want +Inf", text, got)
		}
	}
}

func TestParseAgeHours_ExactForIntegers(t *testing.T) {
	for n := 0; n <= 500; n += 7 {
		hours := ParseAgeHours(itoa(n) + " hours ago")
		if hours != float64(n) {
			t.Fatalf("hours: got %v, want %d", hours, n)
		}
		minutes := ParseAgeHours(itoa(n) + " minutes ago")
		if minutes != float64(n)/60 {
			t.Fatalf("minutes: got %v, want %v", minutes, float64(n)/60)
		}
		days := ParseAgeHours(itoa(n) + " days ago")
		if days != float64(n*24) {
			t.Fatalf("days: got %v, want %d", days, n*24)
		}
	}
}

func TestIsFresh_MonotonicInThreshold(t *testing.T) {
	texts := []string{"today", "30 minutes ago", "5 hours ago", "23 hours ago", "1 day ago", "2 days ago", "tomorrow", ""}
	thresholds := []float64{0, 0.5, 1, 5, 23, 24, 48, 9999}
	for _, text := range texts {
		p := model.Posting{PostedText: text}
		for i, h1 := range thresholds {
			if !IsFresh(p, h1) {
				continue
			}
			for _, h2 := range thresholds[i:] {
				if !IsFresh(p, h2) {
					t.Errorf("IsFresh(%q, %v) true but IsFresh(.., %v) false", text, h1, h2)
				}
			}
		}
	}
}

func TestIsFresh_UnparseableNeverFresh(t *testing.T) {
	p := model.Posting{PostedText: "tomorrow"}
	if IsFresh(p, 9999) {
		t.Error("posting with unparseable freshness must be excluded")
	}
}

func TestFreshnessFilter_DefaultWindow(t *testing.T) {
	f := NewFreshnessFilter(0)
	if !f.Match(model.Posting{PostedText: "24 hours ago"}) {
		t.Error("24 hours ago should be inside the default window")
	}
	if f.Match(model.Posting{PostedText: "25 hours ago"}) {
		t.Error("25 hours ago should be outside the default window")
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{byte('0' + n%10)}, buf...)
		n /= 10
	}
	return string(buf)
}
