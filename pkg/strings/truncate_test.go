package strings

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{
			name:     "short string unchanged",
			input:    "hello",
			maxLen:   10,
			expected: "hello",
		},
		{
			name:     "exact length unchanged",
			input:    "hello",
			maxLen:   5,
			expected: "hello",
		},
		{
			name:     "long string cut with marker",
			input:    "hello world",
			maxLen:   5,
			expected: "hello...",
		},
		{
			name:     "unicode not split",
			input:    "héllo wörld",
			maxLen:   6,
			expected: "héllo ...",
		},
		{
			name:     "zero maxLen disables truncation",
			input:    "anything goes",
			maxLen:   0,
			expected: "anything goes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.maxLen); got != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.expected)
			}
		})
	}
}

func TestTruncateDescriptionLimit(t *testing.T) {
	long := strings.Repeat("x", DefaultDescriptionMaxLen+50)
	got := Truncate(long, DefaultDescriptionMaxLen)
	if len([]rune(got)) != DefaultDescriptionMaxLen+3 {
		t.Errorf("expected %d runes, got %d", DefaultDescriptionMaxLen+3, len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis marker, got %q", got[len(got)-5:])
	}
}

func TestSingleLine(t *testing.T) {
	got := SingleLine("a\nb\t c\r\n  d")
	if got != "a b c d" {
		t.Errorf("SingleLine = %q, want %q", got, "a b c d")
	}
}
