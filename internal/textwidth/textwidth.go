// Package textwidth measures and aligns strings by terminal display width.
//
// Shadow files hold mixed-script titles; plain len() alignment drifts as soon
// as CJK glyphs appear. Width here is measured in display cells with wide and
// fullwidth glyphs counted as 1.8 cells rather than 2, which lines mixed rows
// up better in the editors these files are read in. The fractional widths are
// cosmetic only and never feed back into stored data.
package textwidth

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// DisplayWidth returns the approximate number of display cells s occupies,
// floored to an int.
func DisplayWidth(s string) int {
	total := 0.0
	for _, r := range s {
		total += runeWidth(r)
	}
	return int(total)
}

func runeWidth(r rune) float64 {
	if unicode.Is(unicode.Mn, r) || r == '​' {
		return 0
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 1.8
	default:
		return 1
	}
}

// LeftAlign pads every string in the slice, in place, with trailing spaces so
// that all entries share the display width of the widest one.
func LeftAlign(list []string) {
	max := 0
	for _, s := range list {
		if w := DisplayWidth(s); w > max {
			max = w
		}
	}
	for i, s := range list {
		if pad := max - DisplayWidth(s); pad > 0 {
			list[i] = s + strings.Repeat(" ", pad)
		}
	}
}

// Truncate shortens s to at most maxWidth display cells, replacing the cut
// content with a single trailing ellipsis. Strings already within the limit
// are returned unchanged.
func Truncate(s string, maxWidth int) string {
	if DisplayWidth(s) <= maxWidth {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && DisplayWidth(string(runes)) > maxWidth-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
