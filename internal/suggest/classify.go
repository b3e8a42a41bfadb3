package suggest

import (
	"strings"
	"unicode"

	"catfill/internal/textmatch"
)

// DefaultMinSpellLength is the token length at or below which spelling is not
// checked.
const DefaultMinSpellLength = 3

// Checker is a spelling dictionary.
type Checker interface {
	Check(word string) bool
	Suggest(word string) []string
}

// Options controls the spelling half of Classify. With no Checkers, only
// alignment-derived suggestions are produced.
type Options struct {
	MinSpellLength int
	Checkers       []Checker
}

// Classify converts an alignment into suggestions: Fix for every fuzzy pair,
// Add for every missing reference word, Remove for every excess candidate
// word, then Spell for dictionary misses among the candidate tokens. The
// result is deduplicated by Key, keeping the first occurrence.
//
// An Add's Count is how often the word occurs in the reference, so applying
// every Add leaves each word present at least as often as the reference has
// it. A Fix whose From is also held by an exact match targets only its own
// occurrence.
func Classify(al textmatch.Alignment, opts Options) []Suggestion {
	var out []Suggestion

	fuzzyByRef := make(map[int]textmatch.Match)
	for _, m := range al.Fuzzy() {
		fuzzyByRef[m.Reference] = m
	}
	missing := make(map[int]bool, len(al.Missing))
	for _, i := range al.Missing {
		missing[i] = true
	}

	refCount := make(map[string]int, len(al.Reference))
	for _, word := range al.Reference {
		refCount[strings.ToLower(word)]++
	}
	exactHeld := make(map[string]bool)
	for _, m := range al.Matches {
		if m.Exact {
			exactHeld[strings.ToLower(al.Candidate[m.Candidate])] = true
		}
	}

	added := make(map[string]bool)
	for ri, word := range al.Reference {
		if m, ok := fuzzyByRef[ri]; ok {
			from := al.Candidate[m.Candidate]
			s := Suggestion{Kind: Fix, From: from, To: word}
			if exactHeld[strings.ToLower(from)] {
				s.Occurrence = occurrenceOf(al.Candidate, m.Candidate)
			}
			out = append(out, s)
			continue
		}
		lower := strings.ToLower(word)
		if missing[ri] && !added[lower] {
			added[lower] = true
			out = append(out, Suggestion{Kind: Add, To: word, Count: refCount[lower]})
		}
	}
	for _, ci := range al.Excess {
		out = append(out, Suggestion{Kind: Remove, From: al.Candidate[ci]})
	}

	out = append(out, SpellingSuggestions(al.Candidate, opts)...)
	return dedupe(out)
}

// SpellingSuggestions checks each candidate token against the dictionaries.
// Tokens are stripped of quotes and brackets first; short tokens, tokens with
// digits and all-caps acronyms are skipped, and each lowercased word is only
// checked once. A word every dictionary rejects gets the first dictionary's
// top correction.
func SpellingSuggestions(tokens []string, opts Options) []Suggestion {
	if len(opts.Checkers) == 0 {
		return nil
	}
	minLen := opts.MinSpellLength
	if minLen <= 0 {
		minLen = DefaultMinSpellLength
	}

	var out []Suggestion
	checked := make(map[string]bool)
	for _, tok := range tokens {
		clean := textmatch.StripPunctuation(tok)
		lower := strings.ToLower(clean)
		if checked[lower] || len([]rune(clean)) <= minLen || hasDigit(clean) || clean == strings.ToUpper(clean) {
			continue
		}
		checked[lower] = true

		if known(opts.Checkers, clean) {
			continue
		}
		if corrections := opts.Checkers[0].Suggest(clean); len(corrections) > 0 {
			out = append(out, Suggestion{Kind: Spell, From: tok, To: corrections[0]})
		}
	}
	return out
}

func known(checkers []Checker, word string) bool {
	for _, c := range checkers {
		if c.Check(word) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// dedupe drops repeated keys.
func dedupe(in []Suggestion) []Suggestion {
	out := make([]Suggestion, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		key := s.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

// occurrenceOf returns which occurrence (1-based, case-insensitive) of its
// own text tokens[i] is.
func occurrenceOf(tokens []string, i int) int {
	lower := strings.ToLower(tokens[i])
	n := 0
	for _, tok := range tokens[:i+1] {
		if strings.ToLower(tok) == lower {
			n++
		}
	}
	return n
}
