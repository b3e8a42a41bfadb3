package textmatch

import "strings"

// Default thresholds used when comparing item names.
const (
	DefaultFuzzyThreshold = 3
	DefaultRelativeCutoff = 0.5
)

// Options tunes the fuzzy pass of Reconcile.
type Options struct {
	// FuzzyThreshold is the exclusive upper bound on the absolute edit distance.
	FuzzyThreshold int
	// RelativeCutoff is the exclusive upper bound on distance divided by the
	// length of the shorter token.
	RelativeCutoff float64
}

// DefaultOptions returns the thresholds the comparison panel ships with.
func DefaultOptions() Options {
	return Options{
		FuzzyThreshold: DefaultFuzzyThreshold,
		RelativeCutoff: DefaultRelativeCutoff,
	}
}

// Match pairs a reference token with the candidate token that claimed it.
type Match struct {
	Reference int // index into Alignment.Reference
	Candidate int // index into Alignment.Candidate
	Distance  int
	Exact     bool
}

// Alignment is the outcome of reconciling two token sequences. Every
// reference index is either in Matches or in Missing; every candidate index
// is either claimed by a Match or listed in Excess.
type Alignment struct {
	Reference []string
	Candidate []string
	Matches   []Match // ordered by reference index
	Missing   []int   // reference indexes, ascending
	Excess    []int   // candidate indexes, ascending
}

type occurrence struct {
	index    int
	lower    string
	consumed bool
}

// Reconcile aligns reference tokens against candidate tokens. An exact,
// case-insensitive pass runs to completion first, each reference token
// consuming the earliest unused equal candidate. A fuzzy pass then pairs each
// still-unmatched reference token with the closest unused candidate whose
// distance is below both thresholds; ties go to the earlier candidate.
func Reconcile(reference, candidate []string, opts Options) Alignment {
	al := Alignment{
		Reference: reference,
		Candidate: candidate,
	}

	occs := make([]*occurrence, len(candidate))
	queues := make(map[string][]*occurrence, len(candidate))
	for i, tok := range candidate {
		o := &occurrence{index: i, lower: strings.ToLower(tok)}
		occs[i] = o
		queues[o.lower] = append(queues[o.lower], o)
	}

	matched := make([]*Match, len(reference))

	for ri, tok := range reference {
		lower := strings.ToLower(tok)
		q := queues[lower]
		for len(q) > 0 && q[0].consumed {
			q = q[1:]
		}
		if len(q) == 0 {
			queues[lower] = q
			continue
		}
		q[0].consumed = true
		matched[ri] = &Match{Reference: ri, Candidate: q[0].index, Exact: true}
		queues[lower] = q[1:]
	}

	for ri, tok := range reference {
		if matched[ri] != nil {
			continue
		}
		lower := strings.ToLower(tok)
		var best *occurrence
		bestDist := opts.FuzzyThreshold
		for _, o := range occs {
			if o.consumed {
				continue
			}
			d := Distance(lower, o.lower)
			if d >= bestDist {
				continue
			}
			rel, ok := RelativeDistance(lower, o.lower, d)
			if !ok || rel >= opts.RelativeCutoff {
				continue
			}
			best, bestDist = o, d
		}
		if best == nil {
			al.Missing = append(al.Missing, ri)
			continue
		}
		best.consumed = true
		matched[ri] = &Match{Reference: ri, Candidate: best.index, Distance: bestDist}
	}

	for _, m := range matched {
		if m != nil {
			al.Matches = append(al.Matches, *m)
		}
	}
	for _, o := range occs {
		if !o.consumed {
			al.Excess = append(al.Excess, o.index)
		}
	}
	return al
}

// MatchedIndices returns the set of reference indexes claimed by either pass.
func (a Alignment) MatchedIndices() map[int]bool {
	set := make(map[int]bool, len(a.Matches))
	for _, m := range a.Matches {
		set[m.Reference] = true
	}
	return set
}

// Fuzzy returns only the pairs accepted by the fuzzy pass.
func (a Alignment) Fuzzy() []Match {
	var out []Match
	for _, m := range a.Matches {
		if !m.Exact {
			out = append(out, m)
		}
	}
	return out
}

// MissingTokens returns the reference tokens nothing matched, in order.
func (a Alignment) MissingTokens() []string {
	out := make([]string, 0, len(a.Missing))
	for _, i := range a.Missing {
		out = append(out, a.Reference[i])
	}
	return out
}

// ExcessTokens returns the candidate tokens nothing claimed, in order.
func (a Alignment) ExcessTokens() []string {
	out := make([]string, 0, len(a.Excess))
	for _, i := range a.Excess {
		out = append(out, a.Candidate[i])
	}
	return out
}
