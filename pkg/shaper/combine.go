package shaper

import (
	"strings"
	"unicode/utf8"
)

// Combine fuses letter+mark sequences into the precomposed extended Arabic
// letters that NFC/NFKC do not produce, e.g. ALEF MAKSURA + HAMZA ABOVE
// becomes YEH WITH HAMZA ABOVE.
//
// The result equals replacing every rule's sequence throughout the string,
// one rule after the other in table order.
func Combine(s string) string {
	return rewrite(s, combiningRules)
}

// rewrite makes a single left-to-right pass over s, trying the rules at each
// position in table order. For rule tables where no replacement can form
// the source of another rule this matches repeated whole-string replacement.
func rewrite(s string, rules []rewriteRule) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if rule, ok := matchRule(s[i:], rules); ok {
			b.WriteString(rule.to)
			i += len(rule.from)
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		b.WriteString(s[i : i+size])
		i += size
	}
	return b.String()
}

func matchRule(s string, rules []rewriteRule) (rewriteRule, bool) {
	for _, rule := range rules {
		if strings.HasPrefix(s, rule.from) {
			return rule, true
		}
	}
	return rewriteRule{}, false
}
