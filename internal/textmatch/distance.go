// Package textmatch holds the word-level comparison primitives used to
// reconcile an original product label against a hand-cleaned one.
package textmatch

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Distance returns the case-insensitive Levenshtein distance between a and b.
// An empty input yields the rune length of the other string.
func Distance(a, b string) int {
	return levenshtein.ComputeDistance(strings.ToLower(a), strings.ToLower(b))
}

// RelativeDistance divides the edit distance by the rune length of the
// shorter input. It reports false when either input is empty, since the
// ratio is undefined there.
func RelativeDistance(a, b string, distance int) (float64, bool) {
	shorter := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n < shorter {
		shorter = n
	}
	if shorter == 0 {
		return 0, false
	}
	return float64(distance) / float64(shorter), true
}
