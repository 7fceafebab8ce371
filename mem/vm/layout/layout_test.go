package layout

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Layout", func() {
	It("should compute masks and shifts from the top of the address", func() {
		l, err := New([]int{2, 2})

		Expect(err).ToNot(HaveOccurred())
		Expect(l.NumLevels()).To(Equal(2))
		Expect(l.Mask(0)).To(Equal(uint32(0xC0000000)))
		Expect(l.Mask(1)).To(Equal(uint32(0x30000000)))
		Expect(l.Shift(0)).To(Equal(uint32(30)))
		Expect(l.Shift(1)).To(Equal(uint32(28)))
		Expect(l.EntryCount(0)).To(Equal(uint32(4)))
		Expect(l.OffsetBits()).To(Equal(28))
		Expect(l.PageSize()).To(Equal(uint64(1) << 28))
	})

	It("should split an address into indices and offset", func() {
		l, err := New([]int{4, 4, 12})
		Expect(err).ToNot(HaveOccurred())

		Expect(l.Indices(0x12345678)).To(Equal([]uint32{0x1, 0x2, 0x345}))
		Expect(l.Offset(0x12345678)).To(Equal(uint32(0x678)))
		Expect(l.VPN(0x12345678)).To(Equal(uint32(0x12345)))
		Expect(l.PhysicalAddress(3, 0x12345678)).To(Equal(uint32(0x3678)))
	})

	It("should keep level bits and offset bits summing to 32", func() {
		for _, levels := range [][]int{
			{1}, {28}, {4, 4, 4}, {8, 8, 8}, {10, 10, 8}, {1, 1, 1, 1, 1, 1},
		} {
			l, err := New(levels)
			Expect(err).ToNot(HaveOccurred())

			total := l.OffsetBits()
			for i := 0; i < l.NumLevels(); i++ {
				total += l.LevelBits(i)
			}

			Expect(total).To(Equal(AddressBits))
		}
	})

	It("should rebuild the address from indices and offset", func() {
		l, err := New([]int{3, 7, 6})
		Expect(err).ToNot(HaveOccurred())

		for _, addr := range []uint32{
			0, 1, 0xFFFFFFFF, 0x80000000, 0x0041F0A3, 0xDEADBEEF, 0x12345678,
		} {
			Expect(l.Compose(l.Indices(addr), l.Offset(addr))).To(Equal(addr))
		}
	})

	It("should not let masks overlap", func() {
		l, err := New([]int{5, 6, 7})
		Expect(err).ToNot(HaveOccurred())

		seen := uint32(0)
		for _, m := range l.Masks() {
			Expect(seen & m).To(BeZero())
			seen |= m
		}

		Expect(seen | (1<<l.OffsetBits() - 1)).To(Equal(uint32(0xFFFFFFFF)))
	})

	It("should reject empty levels", func() {
		_, err := New(nil)

		Expect(err).To(MatchError(ErrNoLevels))
	})

	It("should reject non-positive level bits", func() {
		_, err := New([]int{4, 0})

		Expect(err).To(MatchError(ErrInvalidLevelBits))
	})

	It("should reject levels wider than the limit", func() {
		_, err := New([]int{29})

		Expect(err).To(MatchError(ErrInvalidLevelBits))
	})

	It("should reject levels that leave too small an offset", func() {
		_, err := New([]int{20, 9})

		Expect(err).To(MatchError(ErrTooManyLevelBits))
	})
})
