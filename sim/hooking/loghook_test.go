package hooking

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LogHookBase", func() {
	It("should print through the logger", func() {
		buf := new(bytes.Buffer)
		base := NewLogHookBase(log.New(buf, "", 0))

		base.Printf("%08X", 0x41)

		Expect(buf.String()).To(Equal("00000041\n"))
	})
})
