// Package report prints what happens in a translator in a human-readable
// form.
package report

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/sarchlab/pagesim/mem/vm/layout"
	"github.com/sarchlab/pagesim/mem/vm/translator"
	"github.com/sarchlab/pagesim/sim/hooking"
)

// Mode selects what a Printer prints.
type Mode string

// All the supported modes.
const (
	ModeBitmasks Mode = "bitmasks"
	ModeOffset   Mode = "offset"
	ModeVPNsPFN  Mode = "vpns_pfn"
	ModeVA2PA    Mode = "va2pa"
	ModeVPN2PFN  Mode = "vpn2pfn_pr"
	ModeSummary  Mode = "summary"
	ModeNone     Mode = "none"
)

// ErrUnknownMode is returned when parsing a mode that is not supported.
var ErrUnknownMode = errors.New("unknown log mode")

// Modes returns all the supported modes.
func Modes() []Mode {
	return []Mode{
		ModeBitmasks,
		ModeOffset,
		ModeVPNsPFN,
		ModeVA2PA,
		ModeVPN2PFN,
		ModeSummary,
		ModeNone,
	}
}

// ParseMode converts a mode name to a Mode.
func ParseMode(name string) (Mode, error) {
	for _, m := range Modes() {
		if string(m) == name {
			return m, nil
		}
	}

	names := make([]string, 0, len(Modes()))
	for _, m := range Modes() {
		names = append(names, string(m))
	}

	return "", fmt.Errorf("%w %q, expecting one of %s",
		ErrUnknownMode, name, strings.Join(names, ", "))
}

// A Printer is a hook that prints the translations of a translator. Only one
// kind of record is printed, depending on the mode.
type Printer struct {
	hooking.LogHookBase

	mode Mode
}

// NewPrinter creates a Printer that writes to w.
func NewPrinter(w io.Writer, mode Mode) *Printer {
	return &Printer{
		LogHookBase: hooking.NewLogHookBase(log.New(w, "", 0)),
		mode:        mode,
	}
}

// Mode returns what the printer prints.
func (p *Printer) Mode() Mode {
	return p.mode
}

// Func prints a translation if the mode prints per-access records.
func (p *Printer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != translator.HookPosTranslate {
		return
	}

	tr, ok := ctx.Item.(translator.Translation)
	if !ok {
		return
	}

	switch p.mode {
	case ModeOffset:
		p.Printf("%08X", tr.Offset)
	case ModeVPNsPFN:
		p.printVPNsPFN(tr)
	case ModeVA2PA:
		p.Printf("%08X -> %08X", tr.VirtualAddress, tr.PhysicalAddress)
	case ModeVPN2PFN:
		p.printVPN2PFN(tr)
	}
}

func (p *Printer) printVPNsPFN(tr translator.Translation) {
	b := new(strings.Builder)
	for _, index := range tr.Indices {
		fmt.Fprintf(b, "%X ", index)
	}

	p.Printf("%s-> %X", b.String(), tr.Frame)
}

func (p *Printer) printVPN2PFN(tr translator.Translation) {
	switch {
	case tr.Hit:
		p.Printf("%08X -> %08X, pagetable hit", tr.VPN, tr.Frame)
	case tr.Replaced:
		p.Printf("%08X -> %08X, pagetable miss, %08X replaced, "+
			"bitstring %04X",
			tr.VPN, tr.Frame, tr.VictimVPN, tr.VictimBitstring)
	default:
		p.Printf("%08X -> %08X, pagetable miss", tr.VPN, tr.Frame)
	}
}

// PrintLayout prints the bit mask and the shift of every level in bitmasks
// mode.
func (p *Printer) PrintLayout(l *layout.Layout) {
	if p.mode != ModeBitmasks {
		return
	}

	p.Print("Bitmasks")

	for i, mask := range l.Masks() {
		p.Printf("level %d mask %08X shift %d", i, mask, l.Shift(i))
	}
}

// PrintSummary prints the end-of-run report in summary mode.
func (p *Printer) PrintSummary(s translator.Summary) {
	if p.mode != ModeSummary {
		return
	}

	hitRate := s.HitRate() * 100
	missRate := 0.0
	if s.Accesses > 0 {
		missRate = 100 - hitRate
	}

	p.Printf("Page size: %d bytes", s.PageSize)
	p.Printf("Addresses processed: %d", s.Accesses)
	p.Printf("Page hits: %d, Misses: %d, Page Replacements: %d",
		s.PageHits, s.PageFaults, s.PageReplacements)
	p.Printf("Page hit percentage: %.2f%%, miss percentage: %.2f%%",
		hitRate, missRate)
	p.Printf("Frames allocated: %d", s.FramesUsed)
	p.Printf("Number of page table entries: %d", s.Entries)
}
