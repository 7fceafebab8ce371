// Package translator translates virtual addresses through a multi-level
// page table, handling page faults and page replacement.
package translator

import (
	"github.com/sarchlab/pagesim/mem/vm"
	"github.com/sarchlab/pagesim/mem/vm/layout"
	"github.com/sarchlab/pagesim/mem/vm/nfu"
	"github.com/sarchlab/pagesim/mem/vm/pagetable"
	"github.com/sarchlab/pagesim/sim/hooking"
)

// HookPosTranslate is triggered after every translated address. The item is
// a Translation.
var HookPosTranslate = &hooking.HookPos{Name: "Translate"}

// HookPosAge is triggered after every aging sweep. The item is an
// AgingSweep.
var HookPosAge = &hooking.HookPos{Name: "Age"}

// A Translator owns a page table and the frames it maps to. It is not safe
// for concurrent use.
type Translator struct {
	hooking.HookableBase

	name   string
	layout *layout.Layout
	table  *pagetable.PageTable
	engine *nfu.Engine
	stats  Statistics
}

// Name returns the name of the translator.
func (t *Translator) Name() string {
	return t.name
}

// Layout returns how addresses are split into indices and offsets.
func (t *Translator) Layout() *layout.Layout {
	return t.layout
}

// PageTable returns the page table of the translator.
func (t *Translator) PageTable() *pagetable.PageTable {
	return t.table
}

// Engine returns the frame allocation and replacement engine.
func (t *Translator) Engine() *nfu.Engine {
	return t.engine
}

// Statistics returns a snapshot of the counters.
func (t *Translator) Statistics() Statistics {
	s := t.stats
	s.FramesUsed = uint64(t.engine.FramesUsed())
	s.Entries = t.table.Entries()

	return s
}

// Summary returns the report of the run so far.
func (t *Translator) Summary() Summary {
	return Summary{
		Statistics: t.Statistics(),
		PageSize:   t.layout.PageSize(),
	}
}

// Translate translates one virtual address. On a page fault, the page is
// given a free frame or the frame of a replaced page.
func (t *Translator) Translate(addr uint32) Translation {
	seq := t.stats.Accesses
	tr := Translation{
		Seq:            seq,
		VirtualAddress: addr,
		Indices:        t.layout.Indices(addr),
		Offset:         t.layout.Offset(addr),
		VPN:            t.layout.VPN(addr),
	}

	id, hit := t.table.Find(addr)
	if hit {
		t.engine.RecordAccess(id)
	}

	tr.Aged = t.engine.TickIfDue()
	if tr.Aged {
		t.InvokeHook(hooking.HookCtx{
			Domain: t,
			Pos:    HookPosAge,
			Item: AgingSweep{
				Seq:       seq,
				NumLoaded: t.engine.FramesUsed(),
			},
		})
	}

	if hit {
		t.stats.PageHits++
		tr.Hit = true
	} else {
		t.stats.PageFaults++
		id = t.handleFault(addr, &tr)
	}

	m := t.table.Mapping(id)
	m.LastAccess = seq
	tr.Frame = uint32(m.Frame)
	tr.Bitstring = m.Bitstring
	tr.PhysicalAddress = t.layout.PhysicalAddress(tr.Frame, addr)

	t.stats.Accesses++

	t.InvokeHook(hooking.HookCtx{
		Domain: t,
		Pos:    HookPosTranslate,
		Item:   tr,
	})

	return tr
}

func (t *Translator) handleFault(
	addr uint32,
	tr *Translation,
) vm.MappingID {
	id := t.table.Insert(addr)

	alloc := t.engine.AllocateOrEvict(id, tr.Seq)
	if alloc.Evicted {
		t.stats.PageReplacements++
		tr.Replaced = true
		tr.VictimVPN = alloc.VictimVPN
		tr.VictimBitstring = alloc.VictimBitstring
	}

	t.table.Mapping(id).VPN = tr.VPN
	t.engine.RecordAccess(id)

	return id
}
