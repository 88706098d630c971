package adapter

import (
	"testing"
	"time"
)

func TestExtractText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"plain   text\n\nhere", "plain text here"},
		{"<p>Build dashboards</p><p>Write SQL</p>", "Build dashboards Write SQL"},
		{"line one<br>line two<br/>line three", "line one line two line three"},
		{"&lt;b&gt;Bold&lt;/b&gt; &amp; more", "Bold & more"},
		{"<ul><li>Python</li><li>Tableau</li></ul>", "Python Tableau"},
	}
	for _, tt := range tests {
		if got := extractText(tt.in); got != tt.want {
			t.Errorf("extractText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRetryAfterAt(t *testing.T) {
	now := time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 0},
		{"120", 2 * time.Minute},
		{" 5 ", 5 * time.Second},
		{"-3", 0},
		{"soon", 0},
		{"Fri, 07 Mar 2025 12:00:45 GMT", 45 * time.Second},
		{"Fri, 07 Mar 2025 11:00:00 GMT", 0},
	}
	for _, tt := range tests {
		if got := retryAfterAt(tt.value, now); got != tt.want {
			t.Errorf("retryAfterAt(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
