// Package pagetable implements a multi-level page table whose tables are
// created on demand.
package pagetable

import (
	"slices"

	"github.com/sarchlab/pagesim/mem/vm"
	"github.com/sarchlab/pagesim/mem/vm/layout"
)

// nodeID refers to a table in the page table. The zero value means that the
// table does not exist.
type nodeID uint32

const absent nodeID = 0

// A node is one table of the page table. Tables above the last level hold
// the IDs of their child tables. Tables of the last level own a contiguous
// range of mappings that starts at firstMapping.
type node struct {
	depth        int
	children     []nodeID
	firstMapping vm.MappingID
}

func (n *node) isLeaf() bool {
	return n.children == nil
}

// A PageTable maps virtual addresses to Mappings. It is not safe for
// concurrent use.
type PageTable struct {
	layout   *layout.Layout
	nodes    []node
	mappings []vm.Mapping
	entries  uint64
}

// New creates a page table that only has the root table.
func New(l *layout.Layout) *PageTable {
	pt := &PageTable{
		layout: l,
		nodes:  make([]node, 1),
	}

	pt.createNode(0)

	return pt
}

// Layout returns the address layout used by the page table.
func (pt *PageTable) Layout() *layout.Layout {
	return pt.layout
}

// Entries returns the number of table entries allocated across all levels.
func (pt *PageTable) Entries() uint64 {
	return pt.entries
}

// NumTables returns the number of tables that have been created.
func (pt *PageTable) NumTables() int {
	return len(pt.nodes) - 1
}

// NumMappings returns the number of leaf entries that have been created.
func (pt *PageTable) NumMappings() int {
	return len(pt.mappings)
}

// Mapping returns the mapping with the given ID. The returned pointer is
// only valid until the next call to Insert.
func (pt *PageTable) Mapping(id vm.MappingID) *vm.Mapping {
	return &pt.mappings[id]
}

// Find returns the ID of the mapping that translates the given address. The
// bool return value is false if the page is not mapped to a frame. Find
// never modifies the page table.
func (pt *PageTable) Find(addr uint32) (vm.MappingID, bool) {
	n := pt.root()

	for !n.isLeaf() {
		child := n.children[pt.layout.Index(addr, n.depth)]
		if child == absent {
			return 0, false
		}

		n = &pt.nodes[child]
	}

	id := pt.leafMapping(n, addr)
	if !pt.mappings[id].Mapped() {
		return 0, false
	}

	return id, true
}

// Insert returns the ID of the leaf entry for the given address, creating
// the tables on the way if they do not exist. The returned mapping may not
// be mapped to a frame yet.
func (pt *PageTable) Insert(addr uint32) vm.MappingID {
	curr := nodeID(1)

	for !pt.nodes[curr].isLeaf() {
		depth := pt.nodes[curr].depth
		index := pt.layout.Index(addr, depth)

		child := pt.nodes[curr].children[index]
		if child == absent {
			child = pt.createNode(depth + 1)
			pt.nodes[curr].children[index] = child
		}

		curr = child
	}

	return pt.leafMapping(&pt.nodes[curr], addr)
}

func (pt *PageTable) root() *node {
	return &pt.nodes[1]
}

func (pt *PageTable) leafMapping(n *node, addr uint32) vm.MappingID {
	return n.firstMapping + vm.MappingID(pt.layout.Index(addr, n.depth))
}

func (pt *PageTable) createNode(depth int) nodeID {
	count := pt.layout.EntryCount(depth)
	n := node{depth: depth}

	if depth < pt.layout.NumLevels()-1 {
		n.children = make([]nodeID, count)
	} else {
		n.firstMapping = vm.MappingID(len(pt.mappings))
		pt.mappings = slices.Grow(pt.mappings, int(count))
		for i := uint32(0); i < count; i++ {
			pt.mappings = append(pt.mappings, vm.Mapping{Frame: vm.NoFrame})
		}
	}

	pt.entries += uint64(count)
	pt.nodes = append(pt.nodes, n)

	return nodeID(len(pt.nodes) - 1)
}
