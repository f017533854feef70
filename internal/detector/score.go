package detector

func clamp(score int) int {
	return max(0, min(score, 100))
}

func nonNil(reasons []string) []string {
	if reasons == nil {
		return []string{}
	}
	return reasons
}

// reasonList keeps reasons in insertion order without duplicates
type reasonList struct {
	seen  map[string]struct{}
	items []string
}

func newReasonList() *reasonList {
	return &reasonList{seen: make(map[string]struct{}), items: make([]string, 0)}
}

func (l *reasonList) add(reasons ...string) {
	for _, r := range reasons {
		if _, ok := l.seen[r]; ok {
			continue
		}
		l.seen[r] = struct{}{}
		l.items = append(l.items, r)
	}
}

// top returns at most n reasons
func (l *reasonList) top(n int) []string {
	if len(l.items) > n {
		return l.items[:n]
	}
	return l.items
}
