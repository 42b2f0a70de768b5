package model

import "sort"

// Snapshot is the persisted projection of a crawl's shared state.
// It is the only thing written to a checkpoint; the request counter is
// intentionally absent and restarts from zero on every run.
type Snapshot struct {
	// Visited holds every prefix that has been claimed for querying.
	Visited []string `json:"visited"`

	// Results holds every distinct suggestion returned by the service.
	Results []string `json:"results"`
}

// NewSnapshot builds a Snapshot from the two sets.
// Both lists are sorted so that saving identical state produces identical bytes.
func NewSnapshot(visited, results map[string]struct{}) *Snapshot {
	return &Snapshot{
		Visited: sortedKeys(visited),
		Results: sortedKeys(results),
	}
}

// VisitedSet returns the visited prefixes as a set.
func (s *Snapshot) VisitedSet() map[string]struct{} {
	return toSet(s.Visited)
}

// ResultSet returns the suggestions as a set.
func (s *Snapshot) ResultSet() map[string]struct{} {
	return toSet(s.Results)
}

// IsEmpty reports whether the snapshot holds no state at all.
func (s *Snapshot) IsEmpty() bool {
	return s == nil || (len(s.Visited) == 0 && len(s.Results) == 0)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
