package suggest

import (
	"catfill/internal/textmatch"
)

// Result is one comparison of an original label against its cleaned form.
type Result struct {
	// Equivalent is set when both texts hold the same words in any order; the
	// alignment and suggestions are left empty in that case.
	Equivalent  bool                `json:"equivalent"`
	Alignment   textmatch.Alignment `json:"-"`
	Suggestions []Suggestion        `json:"suggestions"`
	Missing     []string            `json:"missing"`
	Excess      []string            `json:"excess"`
}

// Compare reconciles the cleaned name against the original and classifies the
// result. Spelling is checked on the cleaned tokens only.
func Compare(original, cleaned string, match textmatch.Options, opts Options) Result {
	if textmatch.SameWords(original, cleaned) {
		return Result{Equivalent: true}
	}
	al := textmatch.Reconcile(textmatch.Tokenize(original), textmatch.Tokenize(cleaned), match)
	return Result{
		Alignment:   al,
		Suggestions: Classify(al, opts),
		Missing:     al.MissingTokens(),
		Excess:      al.ExcessTokens(),
	}
}
