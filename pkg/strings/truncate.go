package strings

import (
	"strings"
)

// DefaultDescriptionMaxLen is the maximum length for resource descriptions in
// formatted output. Longer descriptions are cut here and marked with "...".
const DefaultDescriptionMaxLen = 200

// ExcerptMaxLen caps raw response bodies quoted inside error messages.
const ExcerptMaxLen = 500

// Truncate cuts a string to maxLen characters and appends "..." when it was
// cut. It operates on runes rather than bytes so multi-byte characters are
// never split.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

// SingleLine collapses all whitespace runs (including newlines) into single
// spaces, producing display-safe one-line text for list entries.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
