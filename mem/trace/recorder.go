package trace

import (
	"strconv"
	"strings"

	"github.com/sarchlab/pagesim/datarecording"
	"github.com/sarchlab/pagesim/mem/vm/translator"
	"github.com/sarchlab/pagesim/sim/hooking"
)

// Names of the tables written by the DBRecorder.
const (
	TranslationTable = "translations"
	AgingTable       = "aging_sweeps"
	SummaryTable     = "summary"
)

// TranslationEntry is a row of the translations table.
type TranslationEntry struct {
	Seq             uint64
	VirtualAddress  uint32
	PhysicalAddress uint32
	Indices         string
	Offset          uint32
	VPN             uint32
	Frame           uint32
	Bitstring       uint16
	Hit             bool
	Replaced        bool
	VictimVPN       uint32
	VictimBitstring uint16
}

// AgingEntry is a row of the aging sweeps table.
type AgingEntry struct {
	Seq       uint64
	NumLoaded int
}

// SummaryEntry is a row of the summary table.
type SummaryEntry struct {
	PageSize         uint64
	Accesses         uint64
	PageHits         uint64
	PageFaults       uint64
	PageReplacements uint64
	FramesUsed       uint64
	Entries          uint64
}

// A DBRecorder is a hook that records the translations of a Translator into
// a database.
type DBRecorder struct {
	dataRecorder datarecording.DataRecorder
}

// NewDBRecorder creates a DBRecorder and the tables that it writes into.
func NewDBRecorder(dataRecorder datarecording.DataRecorder) *DBRecorder {
	r := &DBRecorder{
		dataRecorder: dataRecorder,
	}

	r.dataRecorder.CreateTable(TranslationTable, TranslationEntry{})
	r.dataRecorder.CreateTable(AgingTable, AgingEntry{})
	r.dataRecorder.CreateTable(SummaryTable, SummaryEntry{})

	return r
}

// Func records translations and aging sweeps.
func (r *DBRecorder) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case translator.HookPosTranslate:
		r.recordTranslation(ctx.Item.(translator.Translation))
	case translator.HookPosAge:
		sweep := ctx.Item.(translator.AgingSweep)
		r.dataRecorder.InsertData(AgingTable, AgingEntry{
			Seq:       sweep.Seq,
			NumLoaded: sweep.NumLoaded,
		})
	}
}

func (r *DBRecorder) recordTranslation(tr translator.Translation) {
	indices := make([]string, len(tr.Indices))
	for i, index := range tr.Indices {
		indices[i] = strconv.FormatUint(uint64(index), 16)
	}

	r.dataRecorder.InsertData(TranslationTable, TranslationEntry{
		Seq:             tr.Seq,
		VirtualAddress:  tr.VirtualAddress,
		PhysicalAddress: tr.PhysicalAddress,
		Indices:         strings.Join(indices, ","),
		Offset:          tr.Offset,
		VPN:             tr.VPN,
		Frame:           tr.Frame,
		Bitstring:       tr.Bitstring,
		Hit:             tr.Hit,
		Replaced:        tr.Replaced,
		VictimVPN:       tr.VictimVPN,
		VictimBitstring: tr.VictimBitstring,
	})
}

// RecordSummary records the end-of-run summary and flushes all the records.
func (r *DBRecorder) RecordSummary(s translator.Summary) {
	r.dataRecorder.InsertData(SummaryTable, SummaryEntry{
		PageSize:         s.PageSize,
		Accesses:         s.Accesses,
		PageHits:         s.PageHits,
		PageFaults:       s.PageFaults,
		PageReplacements: s.PageReplacements,
		FramesUsed:       s.FramesUsed,
		Entries:          s.Entries,
	})

	r.dataRecorder.Flush()
}
