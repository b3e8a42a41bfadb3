// Package suggest turns a token alignment into the actionable edits shown
// under the cleaned item name: add a missing word, remove an extra one, fix a
// near miss, or correct a spelling.
package suggest

import (
	"fmt"

	"catfill/internal/textmatch"
)

// Kind identifies what applying a suggestion does to the cleaned text.
type Kind string

const (
	Add    Kind = "add"
	Remove Kind = "remove"
	Fix    Kind = "fix"
	Spell  Kind = "spell"
)

// Suggestion is one clickable edit. Add carries its word in To, Remove in
// From; Fix and Spell use both.
type Suggestion struct {
	Kind Kind   `json:"type"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
	// Count is how many occurrences of To the text holds once an Add is
	// applied. It is not part of Key.
	Count int `json:"count,omitempty"`
	// Occurrence limits a Fix to the nth (1-based) occurrence of From. Zero
	// rewrites every occurrence. It is not part of Key.
	Occurrence int `json:"occurrence,omitempty"`
}

// Key is the stable identity used to diff against already rendered actions.
func (s Suggestion) Key() string {
	return string(s.Kind) + "|" + s.From + "|" + s.To
}

// Word returns the single word an Add or Remove refers to.
func (s Suggestion) Word() string {
	if s.Kind == Add {
		return s.To
	}
	return s.From
}

// Label is the button caption for the suggestion.
func (s Suggestion) Label() string {
	switch s.Kind {
	case Add:
		return "+ " + textmatch.TitleCase(s.To)
	case Remove:
		return "– " + s.From
	case Fix:
		return fmt.Sprintf("Fix: %s → %s", s.From, textmatch.TitleCase(s.To))
	case Spell:
		return fmt.Sprintf("Spell: %s → %s", s.From, textmatch.TitleCase(s.To))
	default:
		return s.Key()
	}
}
