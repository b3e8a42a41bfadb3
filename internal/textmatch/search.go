package textmatch

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// DefaultSearchCutoff bounds how far a search result may drift from the
// cleaned name before it is ignored.
const DefaultSearchCutoff = 0.3

// SearchTerms returns the queries tried against the site search, most
// specific first: the first two words, then the first word alone.
func SearchTerms(name string) []string {
	words := Tokenize(name)
	switch len(words) {
	case 0:
		return nil
	case 1:
		return []string{words[0]}
	default:
		return []string{words[0] + " " + words[1], words[0]}
	}
}

// PickResult chooses which search result to open for target. A result whose
// normalized text equals the target wins immediately. Otherwise the result
// with the smallest edit distance is chosen, provided that distance divided
// by the longer of the two lengths stays below cutoff. It returns -1 when
// nothing qualifies.
func PickResult(target string, results []string, cutoff float64) int {
	norm := NormalizeForCompare(target)
	best, bestDist := -1, -1
	for i, r := range results {
		nr := NormalizeForCompare(r)
		if nr == norm {
			return i
		}
		d := Distance(norm, nr)
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return -1
	}
	longer := utf8.RuneCountInString(norm)
	if n := utf8.RuneCountInString(results[best]); n > longer {
		longer = n
	}
	if longer == 0 || float64(bestDist)/float64(longer) >= cutoff {
		return -1
	}
	return best
}

// WebSearchURL builds the web search link opened for a label.
func WebSearchURL(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return "https://www.google.com/search?q=" + url.QueryEscape(text)
}
