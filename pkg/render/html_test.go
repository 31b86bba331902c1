package render_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ollamachat/pkg/render"
)

var _ = Describe("EscapeHTML", func() {
	It("escapes angle brackets", func() {
		Expect(render.EscapeHTML("hello <b>world</b>")).To(Equal("hello &lt;b&gt;world&lt;/b&gt;"))
	})

	It("leaves ampersands and quotes alone", func() {
		Expect(render.EscapeHTML(`a & "b"`)).To(Equal(`a & "b"`))
	})

	It("returns empty input unchanged", func() {
		Expect(render.EscapeHTML("")).To(BeEmpty())
	})
})

var _ = Describe("FormatMessage", func() {
	It("converts newlines to line breaks", func() {
		Expect(render.FormatMessage("one\ntwo")).To(Equal("one<br>two"))
	})

	It("turns a fenced block into a pre block without the fence lines", func() {
		in := "Look:\n```go\nfmt.Println(1)\nreturn\n```\ndone"
		Expect(render.FormatMessage(in)).To(Equal(
			"Look:<br><pre class=\"codeblock\">fmt.Println(1)\nreturn</pre><br>done",
		))
	})

	It("formats every fenced block", func() {
		in := "```\na\n```\n```\nb\n```"
		Expect(render.FormatMessage(in)).To(Equal(
			"<pre class=\"codeblock\">a</pre><br><pre class=\"codeblock\">b</pre>",
		))
	})

	It("empties a fence written on a single line", func() {
		Expect(render.FormatMessage("```x```")).To(Equal("<pre class=\"codeblock\"></pre>"))
	})

	It("leaves an unterminated fence as text", func() {
		Expect(render.FormatMessage("```\nopen")).To(Equal("```<br>open"))
	})
})
