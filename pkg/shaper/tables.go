package shaper

// Glyph form slots. Right-joining letters only have the first two.
const (
	formIsolated = iota
	formFinal
	formInitial
	formMedial
)

// rightJoiningForms maps right-joining letters to (isolated, final).
//
// Letters produced by Combine that have no presentation forms of their own
// map to themselves.
var rightJoiningForms = map[rune][2]string{
	'\u0622': {"\ufe81", "\ufe82"}, // ALEF WITH MADDA ABOVE
	'\u0623': {"\ufe83", "\ufe84"}, // ALEF WITH HAMZA ABOVE
	'\u0624': {"\ufe85", "\ufe86"}, // WAW WITH HAMZA ABOVE
	'\u0625': {"\ufe87", "\ufe88"}, // ALEF WITH HAMZA BELOW
	'\u0627': {"\ufe8d", "\ufe8e"}, // ALEF
	'\u0629': {"\ufe93", "\ufe94"}, // TEH MARBUTA
	'\u062f': {"\ufea9", "\ufeaa"}, // DAL
	'\u0630': {"\ufeab", "\ufeac"}, // THAL
	'\u0631': {"\ufead", "\ufeae"}, // REH
	'\u0632': {"\ufeaf", "\ufeb0"}, // ZAIN
	'\u0648': {"\ufeed", "\ufeee"}, // WAW

	// produced by Combine
	'\u076c': {"\u076c", "\u076c"}, // REH WITH HAMZA ABOVE
	'\u0692': {"\u0692", "\u0692"}, // REH WITH SMALL V
	'\u06c6': {"\u06c6", "\u06c6"}, // OE
	'\u06c9': {"\u06c9", "\u06c9"}, // KIRGHIZ YU
	'\u06ee': {"\u06ee", "\u06ee"}, // DAL WITH INVERTED V
	'\u06ef': {"\u06ef", "\u06ef"}, // REH WITH INVERTED V

	// Persian, Urdu, Sindhi and Central Asian
	'\u0698': {"\ufb8a", "\ufb8b"}, // JEH
	'\u06c0': {"\ufba4", "\ufba5"}, // HEH WITH YEH ABOVE
	'\u06d3': {"\ufbb0", "\ufbb1"}, // YEH BARREE WITH HAMZA ABOVE
}

// dualJoiningForms maps dual-joining letters to (isolated, final, initial,
// medial).
var dualJoiningForms = map[rune][4]string{
	'\u0626': {"\ufe89", "\ufe8a", "\ufe8b", "\ufe8c"}, // YEH WITH HAMZA ABOVE
	'\u0628': {"\ufe8f", "\ufe90", "\ufe91", "\ufe92"}, // BEH
	'\u062a': {"\ufe95", "\ufe96", "\ufe97", "\ufe98"}, // TEH
	'\u062b': {"\ufe99", "\ufe9a", "\ufe9b", "\ufe9c"}, // THEH
	'\u062c': {"\ufe9d", "\ufe9e", "\ufe9f", "\ufea0"}, // JEEM
	'\u062d': {"\ufea1", "\ufea2", "\ufea3", "\ufea4"}, // HAH
	'\u062e': {"\ufea5", "\ufea6", "\ufea7", "\ufea8"}, // KHAH
	'\u0633': {"\ufeb1", "\ufeb2", "\ufeb3", "\ufeb4"}, // SEEN
	'\u0634': {"\ufeb5", "\ufeb6", "\ufeb7", "\ufeb8"}, // SHEEN
	'\u0635': {"\ufeb9", "\ufeba", "\ufebb", "\ufebc"}, // SAD
	'\u0636': {"\ufebd", "\ufebe", "\ufebf", "\ufec0"}, // DAD
	'\u0637': {"\ufec1", "\ufec2", "\ufec3", "\ufec4"}, // TAH
	'\u0638': {"\ufec5", "\ufec6", "\ufec7", "\ufec8"}, // ZAH
	'\u0639': {"\ufec9", "\ufeca", "\ufecb", "\ufecc"}, // AIN
	'\u063a': {"\ufecd", "\ufece", "\ufecf", "\ufed0"}, // GHAIN
	'\u0641': {"\ufed1", "\ufed2", "\ufed3", "\ufed4"}, // FEH
	'\u0642': {"\ufed5", "\ufed6", "\ufed7", "\ufed8"}, // QAF
	'\u0643': {"\ufed9", "\ufeda", "\ufedb", "\ufedc"}, // KAF
	'\u0644': {"\ufedd", "\ufede", "\ufedf", "\ufee0"}, // LAM
	'\u0645': {"\ufee1", "\ufee2", "\ufee3", "\ufee4"}, // MEEM
	'\u0646': {"\ufee5", "\ufee6", "\ufee7", "\ufee8"}, // NOON
	'\u0647': {"\ufee9", "\ufeea", "\ufeeb", "\ufeec"}, // HEH
	'\u0649': {"\ufeef", "\ufef0", "\ufbe8", "\ufbe9"}, // ALEF MAKSURA
	'\u064a': {"\ufef1", "\ufef2", "\ufef3", "\ufef4"}, // YEH

	// produced by Combine; no presentation forms exist, so joined forms
	// are spelled as a base form followed by the mark
	'\u0681': {"\u0681", "\ufea2\u0654", "\ufea3\u0654", "\ufea4\u0654"}, // HAH WITH HAMZA ABOVE
	'\u06b5': {"\u06b5", "\u06b5", "\ufedf\u065a", "\ufee0\u065a"},        // LAM WITH SMALL V
	'\u06ce': {"\u06ce", "\ufef0\u065a", "\ufbe8\u065a", "\ufbe9\u065a"}, // YEH WITH SMALL V
	'\u077e': {"\u077e", "\u077e", "\ufeb3\u065a", "\ufeb4\u065a"},        // SEEN WITH INVERTED V

	// produced by NFKC from HEH GOAL + HAMZA ABOVE
	'\u06c2': {"\u06c2", "\ufba7\u0654", "\ufba8\u0654", "\ufba9\u0654"}, // HEH GOAL WITH HAMZA ABOVE

	// Persian, Urdu, Sindhi and Central Asian
	'\u067e': {"\ufb56", "\ufb57", "\ufb58", "\ufb59"}, // PEH
	'\u0686': {"\ufb7a", "\ufb7b", "\ufb7c", "\ufb7d"}, // TCHEH
	'\u06a9': {"\ufb8e", "\ufb8f", "\ufb90", "\ufb91"}, // KEHEH
	'\u06af': {"\ufb92", "\ufb93", "\ufb94", "\ufb95"}, // GAF
	'\u06c1': {"\ufba6", "\ufba7", "\ufba8", "\ufba9"}, // HEH GOAL
	'\u06cc': {"\ufbfc", "\ufbfd", "\ufbfe", "\ufbff"}, // FARSI YEH
}

// causingChars propagate joining without forms of their own.
var causingChars = map[rune]bool{
	'\u0640': true, // ARABIC TATWEEL
	'\u07fa': true, // NKO LAJANYALAN
	'\u200d': true, // ZERO WIDTH JOINER
}

// nonJoiningFormatChars are format characters that break joining instead of
// being transparent.
var nonJoiningFormatChars = map[rune]bool{
	'\u0600': true, // ARABIC NUMBER SIGN
	'\u0601': true, // ARABIC SIGN SANAH
	'\u0602': true, // ARABIC FOOTNOTE MARKER
	'\u0603': true, // ARABIC SIGN SAFHA
	'\u06dd': true, // ARABIC END OF AYAH
}

// rewriteRule replaces a literal rune sequence.
type rewriteRule struct {
	from string
	to   string
}

// combiningRules are tried in order; earlier rules win.
var combiningRules = []rewriteRule{
	{"\u0649\u0654", "\u0626"}, // ALEF MAKSURA + HAMZA ABOVE
	// Some traditions write HEH + HAMZA ABOVE as U+06C2 instead. U+06C0
	// stays until that is settled.
	{"\u0647\u0654", "\u06c0"},
	{"\u062d\u0654", "\u0681"}, // HAH + HAMZA ABOVE
	{"\u0631\u0654", "\u076c"}, // REH + HAMZA ABOVE
	{"\u0631\u065a", "\u0692"}, // REH + SMALL V ABOVE
	{"\u0644\u065a", "\u06b5"}, // LAM + SMALL V ABOVE
	{"\u0648\u065a", "\u06c6"}, // WAW + SMALL V ABOVE
	{"\u0649\u065a", "\u06ce"}, // ALEF MAKSURA + SMALL V ABOVE
	{"\u06cc\u065a", "\u06ce"}, // FARSI YEH + SMALL V ABOVE
	{"\u0633\u065b", "\u077e"}, // SEEN + INVERTED SMALL V ABOVE
	{"\u0648\u065b", "\u06c9"}, // WAW + INVERTED SMALL V ABOVE
	{"\u062f\u065b", "\u06ee"}, // DAL + INVERTED SMALL V ABOVE
	{"\u0631\u065b", "\u06ef"}, // REH + INVERTED SMALL V ABOVE
}

// LAM and ALEF glyphs taking part in ligatures.
const (
	lamMedial      = '\ufee0'
	lamInitial     = '\ufedf'
	alefFinal      = '\ufe8e'
	alefHamzaBelow = '\ufe88'
	alefHamzaAbove = '\ufe84'
	alefMaddaAbove = '\ufe82'
)

// ligatureRules map LAM+ALEF glyph pairs to their ligature. A medial LAM
// yields the final ligature form, an initial LAM the isolated one.
var ligatureRules = []rewriteRule{
	{"\ufee0\ufe8e", "\ufefc"},
	{"\ufedf\ufe8e", "\ufefb"},
	{"\ufee0\ufe88", "\ufefa"},
	{"\ufedf\ufe88", "\ufef9"},
	{"\ufee0\ufe84", "\ufef8"},
	{"\ufedf\ufe84", "\ufef7"},
	{"\ufee0\ufe82", "\ufef6"},
	{"\ufedf\ufe82", "\ufef5"},
}

// mirrored holds both directions of every mirrored pair.
var mirrored = map[rune]rune{
	'(': ')', ')': '(',
	'[': ']', ']': '[',
	'{': '}', '}': '{',
	'<': '>', '>': '<',
}
