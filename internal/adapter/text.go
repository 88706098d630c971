package adapter

import (
	"html"
	"regexp"
	"strings"
)

var (
	blockTagRegex = regexp.MustCompile(`(?i)<\s*(br|/p|/li|/div)\s*/?>`)
	htmlTagRegex  = regexp.MustCompile(`<[^>]*>`)
)

// extractText turns a job description that may carry HTML or escaped HTML
// into single-spaced plain text.
func extractText(content string) string {
	if content == "" {
		return ""
	}
	s := html.UnescapeString(content)
	s = blockTagRegex.ReplaceAllString(s, " ")
	s = htmlTagRegex.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}
