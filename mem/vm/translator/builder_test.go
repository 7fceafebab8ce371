package translator

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pagesim/mem/vm/layout"
)

var _ = Describe("Builder", func() {
	It("should build with default frames and interval", func() {
		t, err := MakeBuilder().WithLevelBits(8, 8).Build("Translator")

		Expect(err).ToNot(HaveOccurred())
		Expect(t.Name()).To(Equal("Translator"))
		Expect(t.Engine().NumFrames()).To(Equal(DefaultNumFrames))
		Expect(t.Engine().Interval()).To(Equal(DefaultNFUInterval))
		Expect(t.Layout().OffsetBits()).To(Equal(16))
		Expect(t.Statistics().Entries).To(Equal(uint64(256)))
	})

	It("should fail without levels", func() {
		_, err := MakeBuilder().Build("Translator")

		Expect(err).To(MatchError(layout.ErrNoLevels))
	})

	It("should fail with too many level bits", func() {
		_, err := MakeBuilder().WithLevelBits(16, 16).Build("Translator")

		Expect(err).To(MatchError(layout.ErrTooManyLevelBits))
	})

	It("should fail without frames", func() {
		_, err := MakeBuilder().
			WithLevelBits(4).
			WithNumFrames(0).
			Build("Translator")

		Expect(err).To(MatchError(ErrInvalidNumFrames))
	})

	It("should disable aging", func() {
		t, err := MakeBuilder().
			WithLevelBits(4).
			WithoutAging().
			Build("Translator")

		Expect(err).ToNot(HaveOccurred())
		Expect(t.Engine().AgingEnabled()).To(BeFalse())
	})
})
