// Package inspect describes runes before and after shaping, for debugging
// output and the inspection API.
package inspect

import (
	"fmt"

	"github.com/go-text/typesetting/language"
	"golang.org/x/text/unicode/bidi"
	"golang.org/x/text/unicode/runenames"

	"github.com/atomicdeploy/arshape/pkg/shaper"
)

// RuneInfo holds the Unicode properties of a single rune.
type RuneInfo struct {
	Rune        rune   `json:"rune"`
	Char        string `json:"char"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Script      string `json:"script"`
	Bidi        string `json:"bidi"`
	Combining   uint8  `json:"combining_class"`
	JoiningType string `json:"joining_type"`
}

// Describe returns one RuneInfo per rune of s.
func Describe(s string) []RuneInfo {
	infos := make([]RuneInfo, 0, len(s))
	for _, r := range s {
		infos = append(infos, describeRune(r))
	}
	return infos
}

func describeRune(r rune) RuneInfo {
	props, _ := bidi.LookupRune(r)
	name := runenames.Name(r)
	if name == "" {
		name = "<unnamed>"
	}
	return RuneInfo{
		Rune:        r,
		Char:        string(r),
		Code:        fmt.Sprintf("U+%04X", r),
		Name:        name,
		Script:      language.LookupScript(r).String(),
		Bidi:        bidiClassName(props.Class()),
		Combining:   shaper.CombiningClass(r),
		JoiningType: shaper.JoiningTypeOf(r).String(),
	}
}

// bidiClassNames are the short Unicode names of the bidi classes.
var bidiClassNames = [...]string{
	bidi.L:       "L",
	bidi.R:       "R",
	bidi.EN:      "EN",
	bidi.ES:      "ES",
	bidi.ET:      "ET",
	bidi.AN:      "AN",
	bidi.CS:      "CS",
	bidi.B:       "B",
	bidi.S:       "S",
	bidi.WS:      "WS",
	bidi.ON:      "ON",
	bidi.BN:      "BN",
	bidi.NSM:     "NSM",
	bidi.AL:      "AL",
	bidi.Control: "Control",
	bidi.LRO:     "LRO",
	bidi.RLO:     "RLO",
	bidi.LRE:     "LRE",
	bidi.RLE:     "RLE",
	bidi.PDF:     "PDF",
	bidi.LRI:     "LRI",
	bidi.RLI:     "RLI",
	bidi.FSI:     "FSI",
	bidi.PDI:     "PDI",
}

func bidiClassName(c bidi.Class) string {
	if int(c) < len(bidiClassNames) && bidiClassNames[c] != "" {
		return bidiClassNames[c]
	}
	return fmt.Sprintf("Class(%d)", c)
}

// Comparison lines up the runes of a text with the glyphs it was shaped to.
type Comparison struct {
	Source []RuneInfo `json:"source"`
	Shaped []RuneInfo `json:"shaped"`
}

// Compare shapes s with opts and describes both sides.
func Compare(s string, opts shaper.Options) Comparison {
	return Comparison{
		Source: Describe(s),
		Shaped: Describe(shaper.ShapeWith(s, opts)),
	}
}

// Rows returns the comparison as table rows of code and name, source first.
// The shorter side is padded with empty cells.
func (c Comparison) Rows() [][]string {
	n := max(len(c.Source), len(c.Shaped))
	rows := make([][]string, n)
	for i := range rows {
		row := make([]string, 0, 6)
		row = append(row, cells(c.Source, i)...)
		row = append(row, cells(c.Shaped, i)...)
		rows[i] = row
	}
	return rows
}

func cells(infos []RuneInfo, i int) []string {
	if i >= len(infos) {
		return []string{"", "", ""}
	}
	info := infos[i]
	return []string{info.Code, info.JoiningType, info.Name}
}
