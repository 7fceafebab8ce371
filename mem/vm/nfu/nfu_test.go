package nfu

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/pagesim/mem/vm"
)

var _ = Describe("Engine", func() {
	var (
		store  sliceStore
		engine *Engine
	)

	BeforeEach(func() {
		store = newSliceStore(8)
		engine = NewEngine(store, 2, 4)
	})

	It("should panic without frames", func() {
		Expect(func() { NewEngine(store, 0, 4) }).To(Panic())
	})

	It("should hand out free frames in order", func() {
		alloc0 := engine.AllocateOrEvict(3, 0)
		alloc1 := engine.AllocateOrEvict(5, 1)

		Expect(alloc0).To(Equal(Allocation{Frame: 0}))
		Expect(alloc1).To(Equal(Allocation{Frame: 1}))
		Expect(engine.FramesUsed()).To(Equal(2))
		Expect(store[3].Frame).To(Equal(int32(0)))
		Expect(store[3].Bitstring).To(Equal(RecentBit))
		Expect(store[5].Frame).To(Equal(int32(1)))
		Expect(store[5].LastAccess).To(Equal(uint64(1)))
		Expect(engine.Loaded()).To(Equal([]vm.MappingID{3, 5}))
	})

	It("should refuse to allocate a mapped entry", func() {
		engine.AllocateOrEvict(3, 0)

		Expect(func() { engine.AllocateOrEvict(3, 1) }).To(Panic())
	})

	It("should evict when frames run out", func() {
		engine.AllocateOrEvict(0, 0)
		engine.AllocateOrEvict(1, 1)

		alloc := engine.AllocateOrEvict(2, 2)

		Expect(alloc.Evicted).To(BeTrue())
		Expect(alloc.Frame).To(Equal(uint32(0)))
		Expect(alloc.Victim).To(Equal(vm.MappingID(0)))
		Expect(alloc.VictimVPN).To(Equal(uint32(0)))
		Expect(alloc.VictimBitstring).To(Equal(RecentBit))
		Expect(store[0].Mapped()).To(BeFalse())
		Expect(store[0].Bitstring).To(BeZero())
		Expect(store[2].Frame).To(Equal(int32(0)))
		Expect(engine.FramesUsed()).To(Equal(2))
		Expect(engine.Loaded()).To(Equal([]vm.MappingID{2, 1}))

		owner, ok := engine.Owner(0)
		Expect(ok).To(BeTrue())
		Expect(owner).To(Equal(vm.MappingID(2)))
	})

	It("should report no owner for a frame never handed out", func() {
		_, ok := engine.Owner(1)

		Expect(ok).To(BeFalse())
	})

	It("should drop the victim from the accessed set", func() {
		engine.AllocateOrEvict(0, 0)
		engine.AllocateOrEvict(1, 1)
		engine.RecordAccess(0)
		store[1].Bitstring = 0xFFFF

		engine.AllocateOrEvict(2, 2)

		Expect(engine.Accessed(0)).To(BeFalse())
	})

	It("should evict the victim chosen by the victim finder", func() {
		mockCtrl := gomock.NewController(GinkgoT())
		defer mockCtrl.Finish()

		finder := NewMockVictimFinder(mockCtrl)
		engine.SetVictimFinder(finder)
		engine.AllocateOrEvict(0, 0)
		engine.AllocateOrEvict(1, 1)

		finder.EXPECT().
			FindVictim(gomock.Any(), []vm.MappingID{0, 1}).
			Return(1)

		alloc := engine.AllocateOrEvict(2, 2)

		Expect(alloc.Frame).To(Equal(uint32(1)))
		Expect(alloc.Victim).To(Equal(vm.MappingID(1)))
		Expect(store[1].Mapped()).To(BeFalse())
	})

	It("should age once every interval", func() {
		engine.AllocateOrEvict(0, 0)
		engine.AllocateOrEvict(1, 1)
		engine.RecordAccess(1)

		aged := []bool{}
		for i := 0; i < 8; i++ {
			aged = append(aged, engine.TickIfDue())
		}

		Expect(aged).To(Equal(
			[]bool{false, false, false, true, false, false, false, true}))
		Expect(store[0].Bitstring).To(Equal(uint16(0x2000)))
		Expect(store[1].Bitstring).To(Equal(uint16(0x6000)))
	})

	It("should set the top bit of accessed entries on aging", func() {
		engine.AllocateOrEvict(0, 0)
		engine.AllocateOrEvict(1, 1)
		store[0].Bitstring = 0x0001
		store[1].Bitstring = 0x0002
		engine.RecordAccess(0)

		for i := 0; i < 4; i++ {
			engine.TickIfDue()
		}

		Expect(store[0].Bitstring).To(Equal(uint16(0x8000)))
		Expect(store[1].Bitstring).To(Equal(uint16(0x0001)))
		Expect(engine.NumAccessed()).To(BeZero())
	})

	It("should never grow a bitstring beyond its shifted value plus the top bit",
		func() {
			engine = NewEngine(store, 8, 1)
			for i := 0; i < 8; i++ {
				engine.AllocateOrEvict(vm.MappingID(i), uint64(i))
				store[i].Bitstring = uint16(0x1357 * (i + 1))
			}

			engine.RecordAccess(2)
			engine.RecordAccess(5)

			before := make([]uint16, 8)
			for i := range before {
				before[i] = store[i].Bitstring
			}

			Expect(engine.TickIfDue()).To(BeTrue())

			for i := range before {
				Expect(store[i].Bitstring).To(
					BeNumerically("<=", before[i]>>1|RecentBit))
			}
		})

	Context("when aging is disabled", func() {
		BeforeEach(func() {
			engine = NewEngine(store, 2, 0)
		})

		It("should never age", func() {
			engine.AllocateOrEvict(0, 0)

			for i := 0; i < 100; i++ {
				Expect(engine.TickIfDue()).To(BeFalse())
			}

			Expect(store[0].Bitstring).To(Equal(RecentBit))
		})

		It("should not track accesses", func() {
			engine.AllocateOrEvict(0, 0)
			engine.RecordAccess(0)

			Expect(engine.AgingEnabled()).To(BeFalse())
			Expect(engine.NumAccessed()).To(BeZero())
		})

		It("should evict in insertion order", func() {
			engine.AllocateOrEvict(0, 0)
			engine.AllocateOrEvict(1, 1)

			alloc := engine.AllocateOrEvict(2, 2)
			Expect(alloc.Victim).To(Equal(vm.MappingID(0)))

			alloc = engine.AllocateOrEvict(3, 3)
			Expect(alloc.Victim).To(Equal(vm.MappingID(1)))
		})
	})
})
