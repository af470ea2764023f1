// Package codepoint converts between text and lists of code point labels
// such as "U+0627 U+0644".
package codepoint

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrInvalid is returned for labels that do not name a Unicode scalar value.
var ErrInvalid = errors.New("invalid code point")

// Parse reads a list of code points separated by commas or whitespace.
// Each item may be written as "U+0627", "0x627" or bare hex "627".
func Parse(list string) ([]rune, error) {
	fields := strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	runes := make([]rune, 0, len(fields))
	for _, field := range fields {
		r, err := parseOne(field)
		if err != nil {
			return nil, err
		}
		runes = append(runes, r)
	}
	return runes, nil
}

func parseOne(field string) (rune, error) {
	digits := field
	for _, prefix := range []string{"U+", "u+", "0x", "0X", `\u`, `\U`} {
		if rest, ok := strings.CutPrefix(field, prefix); ok {
			digits = rest
			break
		}
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w %q", ErrInvalid, field)
	}
	r := rune(v)
	if !utf8.ValidRune(r) {
		return 0, fmt.Errorf("%w %q: not a scalar value", ErrInvalid, field)
	}
	return r, nil
}

// Format renders every rune of s as "U+XXXX", separated by spaces.
func Format(s string) string {
	var b strings.Builder
	for i, r := range []rune(s) {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "U+%04X", r)
	}
	return b.String()
}

// List returns the labels of s as a slice.
func List(s string) []string {
	labels := make([]string, 0, len(s))
	for _, r := range s {
		labels = append(labels, fmt.Sprintf("U+%04X", r))
	}
	return labels
}
