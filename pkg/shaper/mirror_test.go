package shaper

import (
	"strings"
	"testing"
)

func TestMirror(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{")abc(", "(abc)"},
		{"a <= b; b >= c", "a >= b; b <= c"},
		{"(a[b]c)", ")a]b[c("},
		{"{}", "}{"},
		{"no brackets", "no brackets"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Mirror(tt.input); got != tt.expected {
				t.Errorf("Mirror(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMirrorTwiceRestoresInput(t *testing.T) {
	inputs := []string{
		"((([[{<>}]])))",
		"a) b( c] d[",
		strings.Repeat("<>", 20),
		"ﺏ(ﺍ)",
	}
	for _, s := range inputs {
		if got := Mirror(Mirror(s)); got != s {
			t.Errorf("Mirror(Mirror(%q)) = %q", s, got)
		}
	}
}
