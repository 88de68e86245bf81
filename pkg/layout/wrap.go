// wrap.go — Line breaking with two-word balancing and hard word breaks.
package layout

import (
	"strings"
	"unicode/utf8"
)

// WidthFunc measures a string at a fixed font.
type WidthFunc func(text string) float64

// BalanceRatio is the largest longer/shorter width ratio for which two words
// that do not fit together are split one per line.
const BalanceRatio = 3.0

// Wrap breaks text into lines no wider than maxWidth.
//
// One word is returned as is or hard-broken. Two words stay on one line if
// they fit, otherwise they go one per line when each fits and their widths are
// within BalanceRatio of each other. Everything else is packed greedily, hard
// breaking words that are too long on their own. The result is never empty.
func Wrap(text string, maxWidth float64, width WidthFunc) []string {
	words := splitWords(text)
	switch len(words) {
	case 0:
		return []string{""}
	case 1:
		if width(words[0]) <= maxWidth {
			return words
		}
		return BreakWord(words[0], maxWidth, width)
	case 2:
		if width(words[0]+" "+words[1]) <= maxWidth {
			return []string{words[0] + " " + words[1]}
		}
		if balanced(words[0], words[1], maxWidth, width) {
			return words
		}
	}
	return greedy(words, maxWidth, width)
}

func balanced(a, b string, maxWidth float64, width WidthFunc) bool {
	wa, wb := width(a), width(b)
	if wa > maxWidth || wb > maxWidth {
		return false
	}
	long, short := max(wa, wb), min(wa, wb)
	if short <= 0 {
		return false
	}
	return long/short < BalanceRatio
}

func greedy(words []string, maxWidth float64, width WidthFunc) []string {
	var lines []string
	current := ""
	for _, w := range words {
		if current != "" {
			if candidate := current + " " + w; width(candidate) <= maxWidth {
				current = candidate
				continue
			}
			lines = append(lines, current)
		}
		current = w
		if width(w) > maxWidth {
			pieces := BreakWord(w, maxWidth, width)
			lines = append(lines, pieces[:len(pieces)-1]...)
			current = pieces[len(pieces)-1]
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// BreakWord splits word into the fewest pieces that each fit maxWidth, filling
// each piece greedily. A single rune wider than maxWidth becomes its own piece.
// Concatenating the pieces gives back word byte for byte, invalid UTF-8
// included.
func BreakWord(word string, maxWidth float64, width WidthFunc) []string {
	var pieces []string
	start := 0
	for i := 0; i < len(word); {
		_, size := utf8.DecodeRuneInString(word[i:])
		if i > start && width(word[start:i+size]) > maxWidth {
			pieces = append(pieces, word[start:i])
			start = i
		}
		i += size
	}
	if start < len(word) || len(pieces) == 0 {
		pieces = append(pieces, word[start:])
	}
	return pieces
}

// splitWords trims text and splits it on spaces, dropping empty words from
// runs of spaces.
func splitWords(text string) []string {
	var words []string
	for _, w := range strings.Split(strings.TrimSpace(text), " ") {
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}
