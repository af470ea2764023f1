package shaper

import "strings"

// Mirror swaps parentheses, square brackets, curly braces and angle
// brackets with their counterparts.
func Mirror(s string) string {
	return strings.Map(func(r rune) rune {
		if m, ok := mirrored[r]; ok {
			return m
		}
		return r
	}, s)
}
