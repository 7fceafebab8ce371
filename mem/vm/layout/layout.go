// Package layout splits 32-bit virtual addresses into page table indices and
// page offsets.
package layout

import (
	"errors"
	"fmt"
)

// AddressBits is the width of the virtual addresses that are translated.
const AddressBits = 32

// MaxLevelBits is the largest number of bits that all levels together may
// take. The remaining bits are used as the page offset.
const MaxLevelBits = 28

var (
	// ErrNoLevels is returned when no page table level is given.
	ErrNoLevels = errors.New("no page table level is specified")

	// ErrInvalidLevelBits is returned when a level has a non-positive width
	// or a width larger than MaxLevelBits.
	ErrInvalidLevelBits = errors.New("invalid level bit count")

	// ErrTooManyLevelBits is returned when the levels leave less than
	// AddressBits-MaxLevelBits bits for the offset.
	ErrTooManyLevelBits = errors.New("too many level bits")
)

// A Layout describes how a virtual address is divided into page table
// indices and a page offset. Level 0 takes the most significant bits.
type Layout struct {
	levelBits  []int
	masks      []uint32
	shifts     []uint32
	entryCount []uint32
	offsetBits int
}

// New creates a new layout from the number of bits used by each page table
// level.
func New(levelBits []int) (*Layout, error) {
	if len(levelBits) == 0 {
		return nil, ErrNoLevels
	}

	total := 0
	for i, bits := range levelBits {
		if bits <= 0 || bits > MaxLevelBits {
			return nil, fmt.Errorf("%w: level %d has %d bits, "+
				"must be between 1 and %d",
				ErrInvalidLevelBits, i, bits, MaxLevelBits)
		}

		total += bits
	}

	if total > MaxLevelBits {
		return nil, fmt.Errorf("%w: levels use %d bits, at most %d allowed",
			ErrTooManyLevelBits, total, MaxLevelBits)
	}

	l := &Layout{
		levelBits:  append([]int(nil), levelBits...),
		masks:      make([]uint32, len(levelBits)),
		shifts:     make([]uint32, len(levelBits)),
		entryCount: make([]uint32, len(levelBits)),
		offsetBits: AddressBits - total,
	}

	shift := AddressBits
	for i, bits := range levelBits {
		shift -= bits
		l.shifts[i] = uint32(shift)
		l.entryCount[i] = uint32(1) << bits
		l.masks[i] = (l.entryCount[i] - 1) << shift
	}

	return l, nil
}

// NumLevels returns the number of page table levels.
func (l *Layout) NumLevels() int {
	return len(l.levelBits)
}

// LevelBits returns the number of bits used by the given level.
func (l *Layout) LevelBits(level int) int {
	return l.levelBits[level]
}

// Mask returns the in-place bit mask of the given level.
func (l *Layout) Mask(level int) uint32 {
	return l.masks[level]
}

// Masks returns a copy of the bit masks of all levels.
func (l *Layout) Masks() []uint32 {
	return append([]uint32(nil), l.masks...)
}

// Shift returns how far the index of the given level is shifted to the left
// inside an address.
func (l *Layout) Shift(level int) uint32 {
	return l.shifts[level]
}

// EntryCount returns the number of entries of a table at the given level.
func (l *Layout) EntryCount(level int) uint32 {
	return l.entryCount[level]
}

// OffsetBits returns the number of bits of the page offset.
func (l *Layout) OffsetBits() int {
	return l.offsetBits
}

// PageSize returns the page size in bytes.
func (l *Layout) PageSize() uint64 {
	return uint64(1) << l.offsetBits
}

// Index extracts the table index of the given level from an address.
func (l *Layout) Index(addr uint32, level int) uint32 {
	return (addr & l.masks[level]) >> l.shifts[level]
}

// Indices extracts the table indices of all levels from an address.
func (l *Layout) Indices(addr uint32) []uint32 {
	indices := make([]uint32, len(l.levelBits))
	for i := range indices {
		indices[i] = l.Index(addr, i)
	}

	return indices
}

// Offset returns the page offset of an address.
func (l *Layout) Offset(addr uint32) uint32 {
	return addr & l.offsetMask()
}

// VPN returns the virtual page number of an address.
func (l *Layout) VPN(addr uint32) uint32 {
	return uint32(uint64(addr) >> l.offsetBits)
}

// Compose rebuilds an address from its table indices and page offset.
func (l *Layout) Compose(indices []uint32, offset uint32) uint32 {
	if len(indices) != len(l.levelBits) {
		panic("number of indices does not match number of levels")
	}

	addr := offset & l.offsetMask()
	for i, index := range indices {
		addr |= (index << l.shifts[i]) & l.masks[i]
	}

	return addr
}

// PhysicalAddress returns the address that addr is translated to when its
// page is held by the given frame.
func (l *Layout) PhysicalAddress(frame uint32, addr uint32) uint32 {
	return uint32(uint64(frame)<<l.offsetBits) | l.Offset(addr)
}

func (l *Layout) offsetMask() uint32 {
	return uint32((uint64(1) << l.offsetBits) - 1)
}
