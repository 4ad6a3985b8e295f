package utils

import (
	"strings"
	"testing"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exact limit", "hello", 5, "hello"},
		{"truncated", "hello world", 5, "hello... (truncated, total: 11 chars)"},
		{"counts runes not bytes", "héllo wörld", 5, "héllo... (truncated, total: 11 chars)"},
		{"empty", "", 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

// TestTruncateString_DefaultLength verifies that a non-positive limit falls
// back to DefaultMaxStringLength.
func TestTruncateString_DefaultLength(t *testing.T) {
	long := strings.Repeat("a", DefaultMaxStringLength+10)

	got := TruncateString(long, 0)
	if !strings.HasPrefix(got, strings.Repeat("a", DefaultMaxStringLength)+"...") {
		t.Errorf("expected truncation at %d chars, got %q", DefaultMaxStringLength, got[:20])
	}
	if !strings.Contains(got, "total: 510 chars") {
		t.Errorf("expected original length in suffix, got %q", got[len(got)-40:])
	}
}
