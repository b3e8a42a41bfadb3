package rules

import (
	"strings"

	"catfill/internal/textmatch"
)

// FindMatchingRule returns the first row, in sheet order, having a keyword
// that occurs as a substring of any field value. Rows without keywords never
// match. Values are normalized the same way keywords are.
func FindMatchingRule(values []string, rows []Row) (Row, int, bool) {
	normalized := make([]string, 0, len(values))
	for _, v := range values {
		if v = textmatch.NormalizeForCompare(v); v != "" {
			normalized = append(normalized, v)
		}
	}

	for i, row := range rows {
		keywords := row.Keywords()
		if len(keywords) == 0 {
			continue
		}
		for _, text := range normalized {
			for _, kw := range keywords {
				if strings.Contains(text, kw) {
					return row, i, true
				}
			}
		}
	}
	return Row{}, -1, false
}
