package suggest

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"catfill/internal/textmatch"
)

// Apply returns text with the suggestion's edit made. Add appends the
// title-cased word until the text holds Count copies of it (at least one),
// Remove deletes every whole-word occurrence, Fix and Spell replace every
// whole-word occurrence of From with the title-cased To, or only the
// Occurrence-th one when set. Matching is case-insensitive.
func Apply(text string, s Suggestion) string {
	text = strings.TrimSpace(text)

	switch s.Kind {
	case Add:
		want := max(s.Count, 1)
		word := textmatch.TitleCase(s.To)
		for n := countToken(text, s.To); n < want; n++ {
			text = strings.TrimSpace(text + " " + word)
		}
		return text
	case Remove:
		return replaceWord(text, s.From, "")
	case Fix:
		if s.Occurrence > 0 {
			if out, ok := replaceOccurrence(text, s.From, textmatch.TitleCase(s.To), s.Occurrence); ok {
				return out
			}
		}
		return replaceWord(text, s.From, textmatch.TitleCase(s.To))
	case Spell:
		return replaceWord(text, s.From, textmatch.TitleCase(s.To))
	default:
		return text
	}
}

// ApplyAll applies suggestions in order.
func ApplyAll(text string, list []Suggestion) string {
	for _, s := range list {
		text = Apply(text, s)
	}
	return text
}

// countToken counts tokens equal to word, ignoring case.
func countToken(text, word string) int {
	lower := strings.ToLower(word)
	n := 0
	for _, tok := range textmatch.Tokenize(text) {
		if strings.ToLower(tok) == lower {
			n++
		}
	}
	return n
}

// replaceOccurrence rewrites the nth token equal to word. It reports false
// when the text has fewer than n such tokens.
func replaceOccurrence(text, word, repl string, n int) (string, bool) {
	lower := strings.ToLower(word)
	tokens := textmatch.Tokenize(text)
	seen := 0
	for i, tok := range tokens {
		if strings.ToLower(tok) != lower {
			continue
		}
		seen++
		if seen == n {
			tokens[i] = repl
			return strings.Join(tokens, " "), true
		}
	}
	return text, false
}

func replaceWord(text, word, repl string) string {
	if word == "" {
		return text
	}
	if !wordEdged(word) {
		// \b never matches next to punctuation, so compare whole tokens.
		tokens := textmatch.Tokenize(text)
		out := tokens[:0]
		for _, tok := range tokens {
			if strings.EqualFold(tok, word) {
				if repl == "" {
					continue
				}
				tok = repl
			}
			out = append(out, tok)
		}
		return strings.Join(out, " ")
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	return textmatch.CollapseSpaces(re.ReplaceAllLiteralString(text, repl))
}

func wordEdged(word string) bool {
	first, _ := utf8.DecodeRuneInString(word)
	last, _ := utf8.DecodeLastRuneInString(word)
	return isWordRune(first) && isWordRune(last)
}

func isWordRune(r rune) bool {
	return r == '_' || (r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)))
}
