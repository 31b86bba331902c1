package render_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ollamachat/pkg/render"
)

var _ = Describe("SpeechText", func() {
	It("announces python code blocks", func() {
		Expect(render.SpeechText("Try this:\n```python\nprint(1)\n```")).To(Equal("Try this:\n(Python-code attached.)"))
	})

	It("announces other code blocks", func() {
		Expect(render.SpeechText("```sh\nls\n```")).To(Equal("(Code attached.)"))
	})

	It("drops URL prefixes", func() {
		Expect(render.SpeechText("see https://www.example.com and http://go.dev")).To(Equal("see example.com and go.dev"))
	})

	It("removes characters a voice would spell out", func() {
		Expect(render.SpeechText("*bold* `code` \"quote\" snake_case")).To(Equal("bold code quote snake case"))
	})

	It("returns empty when nothing is left to speak", func() {
		Expect(render.SpeechText("  ** ``  ")).To(BeEmpty())
	})
})
