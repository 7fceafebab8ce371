package pagetable

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pagesim/mem/vm"
	"github.com/sarchlab/pagesim/mem/vm/layout"
)

var _ = Describe("PageTable", func() {
	var (
		pt *PageTable
	)

	BeforeEach(func() {
		l, err := layout.New([]int{4, 4, 8})
		Expect(err).ToNot(HaveOccurred())

		pt = New(l)
	})

	It("should only have the root table at start", func() {
		Expect(pt.NumTables()).To(Equal(1))
		Expect(pt.NumMappings()).To(Equal(0))
		Expect(pt.Entries()).To(Equal(uint64(16)))
	})

	It("should not find an address in an empty table", func() {
		_, found := pt.Find(0x12345678)

		Expect(found).To(BeFalse())
		Expect(pt.NumTables()).To(Equal(1))
		Expect(pt.Entries()).To(Equal(uint64(16)))
	})

	It("should create the tables along the path on insert", func() {
		id := pt.Insert(0x12345678)

		Expect(pt.NumTables()).To(Equal(3))
		Expect(pt.NumMappings()).To(Equal(256))
		Expect(pt.Entries()).To(Equal(uint64(16 + 16 + 256)))
		Expect(pt.Mapping(id).Mapped()).To(BeFalse())
		Expect(pt.Mapping(id).Frame).To(Equal(vm.NoFrame))
	})

	It("should not find an inserted but unmapped entry", func() {
		pt.Insert(0x12345678)

		_, found := pt.Find(0x12345678)

		Expect(found).To(BeFalse())
	})

	It("should find a mapped entry from any address in the page", func() {
		id := pt.Insert(0x12345678)
		pt.Mapping(id).Frame = 7

		found1, ok1 := pt.Find(0x12345000)
		found2, ok2 := pt.Find(0x12345FFF)

		Expect(ok1).To(BeTrue())
		Expect(ok2).To(BeTrue())
		Expect(found1).To(Equal(id))
		Expect(found2).To(Equal(id))
	})

	It("should return the same entry when inserting twice", func() {
		id1 := pt.Insert(0x12345678)
		id2 := pt.Insert(0x12345000)

		Expect(id1).To(Equal(id2))
		Expect(pt.NumTables()).To(Equal(3))
	})

	It("should share tables between pages with a common prefix", func() {
		id1 := pt.Insert(0x12345000)
		id2 := pt.Insert(0x12350000)
		id3 := pt.Insert(0x13000000)

		Expect(id1).ToNot(Equal(id2))
		Expect(id1).ToNot(Equal(id3))
		Expect(pt.NumTables()).To(Equal(4))
		Expect(pt.Entries()).To(Equal(uint64(16 + 16 + 256 + 256)))
	})

	It("should keep ids stable when more tables are created", func() {
		id := pt.Insert(0x12345000)
		pt.Mapping(id).Frame = 1
		pt.Mapping(id).VPN = 0x12345

		for i := uint32(0); i < 16; i++ {
			pt.Insert(i << 28)
		}

		found, ok := pt.Find(0x12345000)
		Expect(ok).To(BeTrue())
		Expect(found).To(Equal(id))
		Expect(pt.Mapping(found).VPN).To(Equal(uint32(0x12345)))
	})

	It("should support a single level table", func() {
		l, err := layout.New([]int{8})
		Expect(err).ToNot(HaveOccurred())
		pt = New(l)

		Expect(pt.NumMappings()).To(Equal(256))

		id := pt.Insert(0xAB000000)
		Expect(id).To(Equal(vm.MappingID(0xAB)))
		Expect(pt.NumTables()).To(Equal(1))
	})

	It("should size the slots of a large leaf table in one step", func() {
		l, err := layout.New([]int{16})
		Expect(err).ToNot(HaveOccurred())
		pt = New(l)

		Expect(pt.NumMappings()).To(Equal(1 << 16))
		Expect(cap(pt.mappings)).To(BeNumerically("<", 2*(1<<16)))

		for i := 0; i < pt.NumMappings(); i += 4099 {
			Expect(pt.Mapping(vm.MappingID(i)).Mapped()).To(BeFalse())
		}
	})
})
