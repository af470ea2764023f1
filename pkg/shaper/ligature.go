package shaper

// Ligature applies the obligatory LAM+ALEF ligatures to joined text.
//
// Marks between the LAM and the ALEF glyph are moved behind the ALEF first,
// so that "LAM, fatha, ALEF" becomes the ligature followed by the fatha.
func Ligature(s string) string {
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if !isLamGlyph(runes[i]) {
			continue
		}
		j := i + 1
		for j < len(runes) && IsTransparent(runes[j]) {
			j++
		}
		if j == i+1 || j == len(runes) || !isAlefGlyph(runes[j]) {
			continue
		}
		alef := runes[j]
		copy(runes[i+2:j+1], runes[i+1:j])
		runes[i+1] = alef
		i = j
	}
	return rewrite(string(runes), ligatureRules)
}

func isLamGlyph(r rune) bool {
	return r == lamMedial || r == lamInitial
}

func isAlefGlyph(r rune) bool {
	switch r {
	case alefFinal, alefHamzaBelow, alefHamzaAbove, alefMaddaAbove:
		return true
	}
	return false
}
