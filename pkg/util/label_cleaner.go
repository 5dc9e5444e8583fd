package util

import (
	"regexp"
	"strings"
)

var (
	// htmlTagPattern matches stray markup like <b> or </span>.
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
	// multiSpacePattern matches runs of whitespace, including non-breaking spaces.
	multiSpacePattern = regexp.MustCompile(`[\s\x{00A0}]+`)
)

// CleanLabel normalizes a provider label (state name, age group) so that equality checks
// are not defeated by markup, entities or irregular spacing.
func CleanLabel(s string) string {
	if s == "" {
		return ""
	}

	// 1. Remove markup
	s = htmlTagPattern.ReplaceAllString(s, "")

	// 2. Decode the entities the feeds have been seen to emit
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&#39;", "'")

	// 3. Collapse whitespace and trim
	s = multiSpacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NeedsCleanup reports whether CleanLabel would change s.
func NeedsCleanup(s string) bool {
	return CleanLabel(s) != s
}
