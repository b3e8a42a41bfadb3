package suggest

import (
	"catfill/internal/textmatch"
)

// Highlight wraps every whole-word occurrence of words in text with mark.
// Matching is case-insensitive and the original casing is passed to mark.
func Highlight(text string, words []string, mark func(string) string) string {
	re := textmatch.WordPattern(words)
	if re == nil || mark == nil {
		return text
	}
	return re.ReplaceAllStringFunc(text, mark)
}
