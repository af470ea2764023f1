package shaper

import (
	"strings"
)

// Join replaces every joinable Arabic letter by the presentation form its
// neighbors call for:
//
//	R1  transparent runes neither change nor break joining
//	R2  right-causing + right-joining  -> final
//	R4  right-causing + dual + left-causing -> medial
//	R5  right-causing + dual -> final
//	R6  dual + left-causing -> initial
//	R7  everything else -> isolated
//
// Right-joining letters have no initial or medial glyph and fall back to
// their isolated form where a dual letter would take one of those.
//
// The backward neighbor is the last joinable letter seen, however far back;
// runes in between that are not letters of the form tables do not reset it.
// Before the first letter it is the first rune of s. The forward neighbor is
// the next non-transparent rune, or the last rune of s when only transparent
// runes follow. Neighbors are always classified by their original runes.
func Join(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	prev, prevIndex := runes[0], 0
	for i, r := range runes {
		if !IsArabic(r) || IsTransparent(r) {
			b.WriteRune(r)
			continue
		}
		forms, ok := candidateForms(r)
		if !ok {
			b.WriteRune(r)
			continue
		}
		toRight := prevIndex < i && IsRightCausing(prev)
		toLeft := false
		if next, found := nextNeighbor(runes, i); found {
			toLeft = IsLeftCausing(next)
		}
		prev, prevIndex = r, i
		switch {
		case toRight && toLeft:
			b.WriteString(forms[formMedial])
		case toRight:
			b.WriteString(forms[formFinal])
		case toLeft:
			b.WriteString(forms[formInitial])
		default:
			b.WriteString(forms[formIsolated])
		}
	}
	return b.String()
}

// candidateForms returns the four contextual forms of a joinable letter.
func candidateForms(r rune) ([4]string, bool) {
	if forms, ok := rightJoiningForms[r]; ok {
		isolated := forms[formIsolated]
		return [4]string{isolated, forms[formFinal], isolated, isolated}, true
	}
	forms, ok := dualJoiningForms[r]
	return forms, ok
}

// nextNeighbor returns the rune after i that decides left joining.
func nextNeighbor(runes []rune, i int) (rune, bool) {
	if i+1 >= len(runes) {
		return 0, false
	}
	for _, r := range runes[i+1:] {
		if !IsTransparent(r) {
			return r, true
		}
	}
	return runes[len(runes)-1], true
}
