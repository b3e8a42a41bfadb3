package textmatch

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// BuildAlternation turns a list of literal phrases into the body of a regexp
// alternation. Phrases are deduplicated case-insensitively, sorted longest
// first so that "fl oz" is tried before "oz", and quoted so metacharacters
// match literally. Inner spaces match any whitespace run. An empty string is
// returned when no usable phrase remains.
func BuildAlternation(phrases []string) string {
	seen := make(map[string]struct{}, len(phrases))
	cleaned := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = CollapseSpaces(p)
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, p)
	}

	sort.SliceStable(cleaned, func(i, j int) bool {
		return utf8.RuneCountInString(cleaned[i]) > utf8.RuneCountInString(cleaned[j])
	})

	quoted := make([]string, len(cleaned))
	for i, p := range cleaned {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(p), " ", `\s+`)
	}
	return strings.Join(quoted, "|")
}

// WordPattern compiles a case-insensitive pattern matching any of the given
// words on word boundaries. It returns nil when words is empty.
func WordPattern(words []string) *regexp.Regexp {
	alt := BuildAlternation(words)
	if alt == "" {
		return nil
	}
	return regexp.MustCompile(`(?i)\b(?:` + alt + `)\b`)
}
