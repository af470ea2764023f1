package shaper

import (
	"slices"
)

type runeRange struct {
	lo, hi rune
}

func inRanges(r rune, ranges []runeRange) bool {
	for _, rng := range ranges {
		if r >= rng.lo && r <= rng.hi {
			return true
		}
	}
	return false
}

// rtlRanges cover the Arabic script blocks without the Arabic-Indic digits,
// which are drawn left to right.
var rtlRanges = []runeRange{
	{0x0600, 0x065F},
	{0x066A, 0x06EF},
	{0x06FA, 0x06FF},
	{0x0750, 0x077F}, // Arabic Supplement
	{0x08A0, 0x08FF}, // Arabic Extended-A
	{0xFB50, 0xFDFF}, // Arabic Presentation Forms-A
	{0xFE70, 0xFEFF}, // Arabic Presentation Forms-B
}

// arabicMarkRanges are the nonspacing marks of the Arabic block.
var arabicMarkRanges = []runeRange{
	{0x0610, 0x061A},
	{0x064B, 0x065F},
	{0x0670, 0x0670},
	{0x06D6, 0x06DC},
	{0x06DF, 0x06E4},
	{0x06E7, 0x06E8},
	{0x06EA, 0x06ED},
}

func isRTL(r rune) bool {
	return inRanges(r, rtlRanges)
}

func isArabicMark(r rune) bool {
	return inRanges(r, arabicMarkRanges)
}

// Reorder turns logical order into left-to-right drawing order.
//
// Runs of two or more non-Arabic runes (Latin words, numbers) and
// letter+mark clusters are reversed first, so that the final reversal of
// the whole string restores their inner order. Text with nested direction
// runs is outside what this can handle.
func Reorder(s string) string {
	runes := []rune(s)

	for i := 0; i < len(runes); {
		if isRTL(runes[i]) {
			i++
			continue
		}
		j := i + 1
		for j < len(runes) && !isRTL(runes[j]) {
			j++
		}
		slices.Reverse(runes[i:j])
		i = j
	}

	// clusters are found in the output of the first pass
	for i := 0; i < len(runes); {
		if isArabicMark(runes[i]) || i+1 == len(runes) || !isArabicMark(runes[i+1]) {
			i++
			continue
		}
		j := i + 1
		for j < len(runes) && isArabicMark(runes[j]) {
			j++
		}
		slices.Reverse(runes[i:j])
		i = j
	}

	slices.Reverse(runes)
	return string(runes)
}
