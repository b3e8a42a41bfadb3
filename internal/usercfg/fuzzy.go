package usercfg

import (
	"strings"

	"catfill/internal/textmatch"
)

// maxKeyTypo is the largest edit distance still offered as a key suggestion.
const maxKeyTypo = 3

// FuzzyMatch reports whether every character of pattern appears in target
// in order, ignoring case.
func FuzzyMatch(pattern, target string) bool {
	if pattern == "" {
		return true
	}
	pattern = strings.ToLower(pattern)
	target = strings.ToLower(target)

	pi := 0
	for ti := 0; pi < len(pattern) && ti < len(target); ti++ {
		if pattern[pi] == target[ti] {
			pi++
		}
	}
	return pi == len(pattern)
}

// FuzzyScore rates a subsequence match from 0 to 100, favouring consecutive
// runs and short targets. It returns -1 when pattern is not a subsequence.
func FuzzyScore(pattern, target string) int {
	if !FuzzyMatch(pattern, target) {
		return -1
	}
	if pattern == "" {
		return 100
	}
	pattern = strings.ToLower(pattern)
	target = strings.ToLower(target)

	score, pi, run := 0, 0, 0
	for i := 0; i < len(target); i++ {
		if pi < len(pattern) && pattern[pi] == target[i] {
			pi++
			run++
			score += 10 + run
		} else {
			run = 0
		}
		if i > len(pattern)*3 {
			score--
		}
	}
	if strings.Contains(target, pattern) {
		score += 20
	}

	maxScore := len(pattern) * 15
	if score > maxScore {
		score = maxScore
	}
	if score < 0 {
		score = 0
	}
	return score * 100 / maxScore
}

// SuggestKey returns the known key closest to input, or "" when nothing is
// close. Abbreviations are scored with FuzzyScore; typos fall back to edit
// distance.
func SuggestKey(input string, known []string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return ""
	}

	best, bestScore := "", -1
	for _, k := range known {
		if s := FuzzyScore(input, k); s > bestScore {
			best, bestScore = k, s
		}
	}
	if bestScore >= 0 {
		return best
	}

	best, bestDist := "", maxKeyTypo+1
	for _, k := range known {
		if d := textmatch.Distance(input, k); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}
