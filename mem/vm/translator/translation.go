package translator

// A Translation reports how one virtual address was translated.
type Translation struct {
	Seq             uint64   `json:"seq"`
	VirtualAddress  uint32   `json:"virtual_address"`
	PhysicalAddress uint32   `json:"physical_address"`
	Indices         []uint32 `json:"indices"`
	Offset          uint32   `json:"offset"`
	VPN             uint32   `json:"vpn"`
	Frame           uint32   `json:"frame"`
	Bitstring       uint16   `json:"bitstring"`
	Hit             bool     `json:"hit"`
	Aged            bool     `json:"aged"`

	Replaced        bool   `json:"replaced"`
	VictimVPN       uint32 `json:"victim_vpn"`
	VictimBitstring uint16 `json:"victim_bitstring"`
}

// An AgingSweep is reported every time the bitstrings are aged.
type AgingSweep struct {
	Seq       uint64
	NumLoaded int
}

// Statistics are the counters of a Translator. All the counters only grow.
type Statistics struct {
	Accesses         uint64 `json:"accesses"`
	PageHits         uint64 `json:"page_hits"`
	PageFaults       uint64 `json:"page_faults"`
	PageReplacements uint64 `json:"page_replacements"`
	FramesUsed       uint64 `json:"frames_used"`
	Entries          uint64 `json:"entries"`
}

// HitRate returns the fraction of accesses that hit in the page table.
func (s Statistics) HitRate() float64 {
	if s.Accesses == 0 {
		return 0
	}

	return float64(s.PageHits) / float64(s.Accesses)
}

// A Summary is the report of a finished run.
type Summary struct {
	Statistics
	PageSize uint64 `json:"page_size"`
}
