// Package vm provides the models for address translations
package vm

// NoFrame marks a Mapping that is not backed by a physical frame.
const NoFrame int32 = -1

// MappingID identifies a Mapping within the page table that owns it. The ID
// of a Mapping never changes, even when the Mapping is evicted and reused.
type MappingID uint32

// A Mapping is the leaf entry of the page table, maintaining the information
// about how to translate a virtual page to a physical frame.
type Mapping struct {
	Frame      int32
	Bitstring  uint16
	LastAccess uint64
	VPN        uint32
}

// Mapped returns true if the mapping currently owns a frame.
func (m *Mapping) Mapped() bool {
	return m.Frame != NoFrame
}

// Unmap detaches the mapping from its frame. The bitstring and the access
// time are cleared so that a later reuse starts from a clean history.
func (m *Mapping) Unmap() {
	m.Frame = NoFrame
	m.Bitstring = 0
	m.LastAccess = 0
}

// A MappingStore resolves MappingIDs to the mappings that they identify.
type MappingStore interface {
	Mapping(id MappingID) *Mapping
}
