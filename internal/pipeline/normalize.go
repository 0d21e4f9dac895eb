package pipeline

import (
	"regexp"
	"strings"

	"github.com/gosimple/unidecode"
)

// featMarker matches featured-artist markers at a word boundary. "aftermath"
// must not match "ft.".
var featMarker = regexp.MustCompile(`(?i)\b(?:feat\.?|ft\.)`)

// Normalize rewrites free-form track text into a canonical form: transliterate
// to ASCII, strip matched bracket groups, truncate at the first
// featured-artist marker, and collapse whitespace.
//
// Normalize is total and idempotent; it never fails, and unmatched bracket
// delimiters are left alone.
func Normalize(text string) string {
	s := unidecode.Unidecode(text)
	s = stripBracketGroups(s)
	if loc := featMarker.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return collapseSpace(s)
}

// stripBracketGroups removes (), [], and {} groups, delimiters included.
// Groups may nest; a closer pairs with the nearest same-kind opener.
// Delimiters without a partner are kept as literal text.
func stripBracketGroups(s string) string {
	runes := []rune(s)
	drop := make([]bool, len(runes))

	type opener struct {
		kind rune
		pos  int
	}
	var stack []opener

	for i, r := range runes {
		switch r {
		case '(', '[', '{':
			stack = append(stack, opener{kind: r, pos: i})
		case ')', ']', '}':
			kind := matchingOpener(r)
			for j := len(stack) - 1; j >= 0; j-- {
				if stack[j].kind != kind {
					continue
				}
				for k := stack[j].pos; k <= i; k++ {
					drop[k] = true
				}
				stack = stack[:j]
				break
			}
		}
	}

	var b strings.Builder
	b.Grow(len(s))
	for i, r := range runes {
		if !drop[i] {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func matchingOpener(closer rune) rune {
	switch closer {
	case ')':
		return '('
	case ']':
		return '['
	default:
		return '{'
	}
}

// collapseSpace trims the string and collapses runs of whitespace to single
// spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
