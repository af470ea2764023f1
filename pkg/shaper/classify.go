package shaper

import (
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// JoiningType is the cursive joining behavior of a rune.
type JoiningType uint8

const (
	NonJoining JoiningType = iota
	RightJoining
	DualJoining
	JoinCausing
	Transparent
)

func (jt JoiningType) String() string {
	switch jt {
	case RightJoining:
		return "R"
	case DualJoining:
		return "D"
	case JoinCausing:
		return "C"
	case Transparent:
		return "T"
	default:
		return "U"
	}
}

// IsArabic reports whether r is in the Arabic block U+0600..U+06FF.
func IsArabic(r rune) bool {
	return r >= 0x0600 && r <= 0x06FF
}

// IsTransparent reports whether r is skipped when looking for joining
// neighbors: combining marks and format characters, except a few Arabic
// format signs. ZERO WIDTH JOINER is a format character and counts as
// transparent although it is also join-causing.
func IsTransparent(r rune) bool {
	if CombiningClass(r) != 0 {
		return true
	}
	if nonJoiningFormatChars[r] {
		return false
	}
	return unicode.Is(unicode.Cf, r)
}

// IsCausing reports whether r is join-causing (TATWEEL, NKO LAJANYALAN, ZWJ).
func IsCausing(r rune) bool {
	return causingChars[r]
}

// IsRight reports whether r is a right-joining letter.
func IsRight(r rune) bool {
	_, ok := rightJoiningForms[r]
	return ok
}

// IsDual reports whether r is a dual-joining letter.
func IsDual(r rune) bool {
	_, ok := dualJoiningForms[r]
	return ok
}

// IsRightCausing reports whether r makes a following letter join towards it.
func IsRightCausing(r rune) bool {
	return IsDual(r) || IsCausing(r)
}

// IsLeftCausing reports whether r makes a preceding letter join towards it.
func IsLeftCausing(r rune) bool {
	return IsDual(r) || IsRight(r) || IsCausing(r)
}

// JoiningTypeOf classifies r. Runes that are not modeled are NonJoining.
func JoiningTypeOf(r rune) JoiningType {
	switch {
	case IsCausing(r):
		return JoinCausing
	case IsTransparent(r):
		return Transparent
	case IsRight(r):
		return RightJoining
	case IsDual(r):
		return DualJoining
	}
	return NonJoining
}

// CombiningClass returns the canonical combining class of r.
func CombiningClass(r rune) uint8 {
	return norm.NFD.PropertiesString(string(r)).CCC()
}
