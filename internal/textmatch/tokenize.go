package textmatch

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// spellPunctuation is the set of characters trimmed from a token before it is
// handed to a spelling dictionary.
const spellPunctuation = `'"(),.?`

// Tokenize splits text on whitespace runs and drops empty tokens. Casing is
// preserved for display.
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// NormalizeForCompare decodes &amp;, collapses whitespace, trims and
// lowercases. The result is only meant for equality checks.
func NormalizeForCompare(text string) string {
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.ToLower(strings.TrimSpace(text))
}

// CollapseSpaces trims text and reduces every whitespace run to one space.
func CollapseSpaces(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// StripPunctuation removes quote, bracket, comma, period and question mark
// characters from a single token.
func StripPunctuation(token string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(spellPunctuation, r) {
			return -1
		}
		return r
	}, token)
}

// TitleCase lowercases s and upper-cases the first letter of each word.
func TitleCase(s string) string {
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ToLower(s))
}

// SameWords reports whether a and b contain the same multiset of normalized
// words, ignoring order.
func SameWords(a, b string) bool {
	return sortedWords(a) == sortedWords(b)
}

func sortedWords(s string) string {
	words := Tokenize(NormalizeForCompare(s))
	sort.Strings(words)
	return strings.Join(words, " ")
}
