// optimize.go — Grow the name font while it keeps a good break point.
package layout

import "strings"

// SizedWidthFunc measures text at a given font size.
type SizedWidthFunc func(text string, sizePx float64) float64

// OptimizeNameSize returns the largest size in [base, base*(1+MaxGrowth)],
// reached in GrowthStep increments, at which the name still breaks well:
//
//   - one word: the name fills at most SingleWordMargin of maxWidth;
//   - several words: the whole name fits on one line, or the words before the
//     last fill at most HeadMargin of maxWidth and the last word fits alone.
//
// The step is a fraction of base, so the result scales exactly with the
// render size when width is linear in the size.
func OptimizeNameSize(name string, base, maxWidth float64, width SizedWidthFunc, t Tuning) float64 {
	words := splitWords(name)
	if len(words) == 0 || base <= 0 || maxWidth <= 0 {
		return base
	}

	full := strings.Join(words, " ")
	head := strings.Join(words[:len(words)-1], " ")
	last := words[len(words)-1]

	keeps := func(size float64) bool {
		if len(words) == 1 {
			return width(full, size) <= maxWidth*t.SingleWordMargin
		}
		if width(full, size) <= maxWidth {
			return true
		}
		return width(head, size) <= maxWidth*t.HeadMargin && width(last, size) <= maxWidth
	}

	ceiling := base * (1 + t.MaxGrowth)
	step := base * t.GrowthStep
	size := base
	for {
		next := min(size+step, ceiling)
		if next-size < 1e-9 || !keeps(next) {
			return size
		}
		size = next
	}
}
