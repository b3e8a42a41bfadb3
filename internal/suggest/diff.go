package suggest

// Diff compares a rendered suggestion set with a freshly computed one.
// added holds suggestions in next whose key was not rendered, in next order;
// removed holds rendered suggestions whose key is gone, in prev order.
func Diff(prev, next []Suggestion) (added, removed []Suggestion) {
	seen := make(map[string]bool, len(prev))
	for _, s := range prev {
		seen[s.Key()] = true
	}
	keep := make(map[string]bool, len(next))
	for _, s := range next {
		keep[s.Key()] = true
		if !seen[s.Key()] {
			added = append(added, s)
		}
	}
	for _, s := range prev {
		if !keep[s.Key()] {
			removed = append(removed, s)
		}
	}
	return added, removed
}
