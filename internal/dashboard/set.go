package dashboard

import (
	"sort"

	"github.com/drewdunne/mrboard/internal/provider"
)

// Set is a collection of merge requests keyed by global id.
type Set map[int]provider.MergeRequest

// NewSet builds a Set from a list. Later duplicates replace earlier ones.
func NewSet(mrs []provider.MergeRequest) Set {
	s := make(Set, len(mrs))
	for _, mr := range mrs {
		s[mr.ID] = mr
	}
	return s
}

// IDs returns the ids in ascending order.
func (s Set) IDs() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Aggregate merges the four source sets into one. The result holds exactly
// the union of the input ids; on overlap the right-most set wins.
func Aggregate(branchDerived, reviewing, assigned, authored Set) Set {
	return union(branchDerived, reviewing, assigned, authored)
}

func union(sets ...Set) Set {
	size := 0
	for _, s := range sets {
		size += len(s)
	}

	merged := make(Set, size)
	for _, s := range sets {
		for id, mr := range s {
			merged[id] = mr
		}
	}
	return merged
}
