package llm

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateMarksTheCut(t *testing.T) {
	long := strings.Repeat("a", 100)
	got := truncate(long, 10)
	if got != strings.Repeat("a", 10)+"... [truncated]" {
		t.Fatalf("unexpected truncation: %q", got)
	}

	short := "fits as is"
	if truncate(short, 100) != short {
		t.Fatal("short input must pass through unchanged")
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	// Each é is two bytes; a cut at byte 5 lands mid-rune.
	in := strings.Repeat("é", 10)
	got := truncate(in, 5)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation split a rune: %q", got)
	}
	if !strings.HasPrefix(got, strings.Repeat("é", 2)) || strings.Contains(got, "�") {
		t.Fatalf("unexpected rune-boundary handling: %q", got)
	}
}
