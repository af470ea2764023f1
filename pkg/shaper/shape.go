package shaper

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Options select parts of the pipeline. The zero value runs every stage.
type Options struct {
	// Logical keeps the shaped text in logical order: reordering and
	// mirroring are skipped. Use it for renderers that do their own
	// bidi reordering but cannot select glyph forms.
	Logical bool
	// NoLigatures skips the LAM+ALEF ligature substitution.
	NoLigatures bool
}

type stage struct {
	name  string
	apply func(string) string
	skip  func(Options) bool
}

var pipeline = []stage{
	{name: "combine", apply: Combine},
	{name: "join", apply: Join},
	{name: "ligature", apply: Ligature, skip: func(o Options) bool { return o.NoLigatures }},
	{name: "reorder", apply: Reorder, skip: func(o Options) bool { return o.Logical }},
	{name: "mirror", apply: Mirror, skip: func(o Options) bool { return o.Logical }},
}

// Stages returns the names of the stages opts enables, in pipeline order.
func Stages(opts Options) []string {
	names := make([]string, 0, len(pipeline))
	for _, st := range pipeline {
		if st.skip == nil || !st.skip(opts) {
			names = append(names, st.name)
		}
	}
	return names
}

// Shape converts logical-order Arabic text into visually ordered
// presentation forms. Text without Arabic letters is returned unchanged,
// without normalization.
func Shape(text string) string {
	return ShapeWith(text, Options{})
}

// ShapeWith is Shape with a selectable set of stages.
func ShapeWith(text string, opts Options) string {
	normalized := norm.NFKC.String(text)
	if !ContainsArabic(normalized) {
		return text
	}
	s := normalized
	for _, st := range pipeline {
		if st.skip != nil && st.skip(opts) {
			continue
		}
		s = st.apply(s)
		tracer().Debugf("%-8s %+q", st.name, s)
	}
	return s
}

// ShapeLines shapes every line of text on its own, so that reordering never
// moves runes across a line break. Line terminators ("\n" or "\r\n") are
// kept.
func ShapeLines(text string, opts Options) string {
	var b strings.Builder
	b.Grow(len(text))
	for text != "" {
		line, rest, found := strings.Cut(text, "\n")
		eol := ""
		if found {
			eol = "\n"
			if strings.HasSuffix(line, "\r") {
				line = line[:len(line)-1]
				eol = "\r\n"
			}
		}
		b.WriteString(ShapeWith(line, opts))
		b.WriteString(eol)
		text = rest
	}
	return b.String()
}

// ContainsArabic reports whether s has a rune in the Arabic block.
func ContainsArabic(s string) bool {
	return strings.IndexFunc(s, IsArabic) >= 0
}
