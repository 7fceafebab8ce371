// Package nfu implements frame allocation and the Not-Frequently-Used page
// replacement policy.
package nfu

import "github.com/sarchlab/pagesim/mem/vm"

// RecentBit is the bit that is set in the bitstring of a mapping that was
// accessed during the last aging interval.
const RecentBit uint16 = 1 << 15

// An Allocation describes how a frame was obtained for a mapping.
type Allocation struct {
	Frame           uint32
	Evicted         bool
	Victim          vm.MappingID
	VictimVPN       uint32
	VictimBitstring uint16
}

// An Engine hands out physical frames to mappings. Once all frames are in
// use, it takes frames away from the mappings that are least recently used
// according to their aging bitstrings.
//
// The engine only stores MappingIDs. The mappings themselves live in the
// MappingStore.
type Engine struct {
	store        vm.MappingStore
	victimFinder VictimFinder

	numFrames int
	interval  int
	counter   int

	// loaded[i] is the mapping that holds frame i.
	loaded   []vm.MappingID
	accessed map[vm.MappingID]struct{}
}

// NewEngine creates an engine that manages numFrames frames. The aging
// bitstrings are updated every interval accesses. An interval smaller than
// one disables aging.
func NewEngine(store vm.MappingStore, numFrames, interval int) *Engine {
	if numFrames <= 0 {
		panic("number of frames must be positive")
	}

	return &Engine{
		store:        store,
		victimFinder: NewLeastAgedVictimFinder(),
		numFrames:    numFrames,
		interval:     interval,
		loaded:       make([]vm.MappingID, 0, min(numFrames, 4096)),
		accessed:     make(map[vm.MappingID]struct{}),
	}
}

// SetVictimFinder replaces the policy that selects the mapping to evict.
func (e *Engine) SetVictimFinder(f VictimFinder) {
	e.victimFinder = f
}

// NumFrames returns the number of physical frames.
func (e *Engine) NumFrames() int {
	return e.numFrames
}

// FramesUsed returns the number of frames that have been handed out.
func (e *Engine) FramesUsed() int {
	return len(e.loaded)
}

// Interval returns the number of accesses between two aging sweeps.
func (e *Engine) Interval() int {
	return e.interval
}

// AgingEnabled returns true if the bitstrings are aged.
func (e *Engine) AgingEnabled() bool {
	return e.interval > 0
}

// Owner returns the mapping that holds the given frame.
func (e *Engine) Owner(frame uint32) (vm.MappingID, bool) {
	if int(frame) >= len(e.loaded) {
		return 0, false
	}

	return e.loaded[frame], true
}

// Loaded returns the IDs of all the mappings that hold a frame, ordered by
// frame number.
func (e *Engine) Loaded() []vm.MappingID {
	return append([]vm.MappingID(nil), e.loaded...)
}

// Accessed returns true if the mapping is accessed in the current interval.
func (e *Engine) Accessed(id vm.MappingID) bool {
	_, ok := e.accessed[id]
	return ok
}

// NumAccessed returns the number of mappings accessed in the current
// interval.
func (e *Engine) NumAccessed() int {
	return len(e.accessed)
}

// AllocateOrEvict gives the mapping a frame. A free frame is used if there
// is one. Otherwise, the frame of a victim is reused and the victim is
// unmapped. The mapping must not hold a frame.
func (e *Engine) AllocateOrEvict(id vm.MappingID, now uint64) Allocation {
	if e.store.Mapping(id).Mapped() {
		panic("mapping already holds a frame")
	}

	var alloc Allocation

	if len(e.loaded) < e.numFrames {
		alloc.Frame = uint32(len(e.loaded))
		e.loaded = append(e.loaded, id)
	} else {
		alloc = e.evict()
		e.loaded[alloc.Frame] = id
	}

	m := e.store.Mapping(id)
	m.Frame = int32(alloc.Frame)
	m.Bitstring = RecentBit
	m.LastAccess = now

	return alloc
}

func (e *Engine) evict() Allocation {
	pos := e.victimFinder.FindVictim(e.store, e.loaded)
	victimID := e.loaded[pos]
	victim := e.store.Mapping(victimID)

	alloc := Allocation{
		Frame:           uint32(victim.Frame),
		Evicted:         true,
		Victim:          victimID,
		VictimVPN:       victim.VPN,
		VictimBitstring: victim.Bitstring,
	}

	if int(alloc.Frame) != pos {
		panic("frame of the victim does not match its position")
	}

	victim.Unmap()
	delete(e.accessed, victimID)

	return alloc
}

// RecordAccess marks the mapping as accessed in the current interval.
func (e *Engine) RecordAccess(id vm.MappingID) {
	if !e.AgingEnabled() {
		return
	}

	e.accessed[id] = struct{}{}
}

// TickIfDue counts one access. Every interval accesses, the bitstrings of
// all loaded mappings are shifted right by one and the mappings accessed
// during the interval get their top bit set. It returns true if the
// bitstrings were aged.
func (e *Engine) TickIfDue() bool {
	if !e.AgingEnabled() {
		return false
	}

	e.counter++
	if e.counter < e.interval {
		return false
	}

	for _, id := range e.loaded {
		m := e.store.Mapping(id)
		m.Bitstring >>= 1

		if _, ok := e.accessed[id]; ok {
			m.Bitstring |= RecentBit
		}
	}

	clear(e.accessed)
	e.counter = 0

	return true
}
