package nfu

import "github.com/sarchlab/pagesim/mem/vm"

// A VictimFinder decides which of the loaded mappings should give up its
// frame. It returns the position of the victim in candidates.
type VictimFinder interface {
	FindVictim(store vm.MappingStore, candidates []vm.MappingID) int
}

// LeastAgedVictimFinder evicts the mapping with the smallest aging
// bitstring. Among mappings with equal bitstrings, the one accessed the
// longest time ago is evicted. If they are still equal, the first candidate
// wins.
type LeastAgedVictimFinder struct {
}

// NewLeastAgedVictimFinder returns a newly constructed victim finder.
func NewLeastAgedVictimFinder() *LeastAgedVictimFinder {
	return &LeastAgedVictimFinder{}
}

// FindVictim returns the position of the least aged mapping.
func (f *LeastAgedVictimFinder) FindVictim(
	store vm.MappingStore,
	candidates []vm.MappingID,
) int {
	if len(candidates) == 0 {
		panic("no candidate to evict")
	}

	victim := 0
	best := store.Mapping(candidates[0])

	for i := 1; i < len(candidates); i++ {
		m := store.Mapping(candidates[i])
		if f.less(m, best) {
			victim = i
			best = m
		}
	}

	return victim
}

func (f *LeastAgedVictimFinder) less(a, b *vm.Mapping) bool {
	if a.Bitstring != b.Bitstring {
		return a.Bitstring < b.Bitstring
	}

	return a.LastAccess < b.LastAccess
}
