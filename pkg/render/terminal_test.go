package render_test

import (
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/x/ansi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ollamachat/pkg/render"
)

var _ = Describe("Markdown", func() {
	It("renders headings and code without markdown syntax", func() {
		md, err := render.NewMarkdown(80, styles.NoTTYStyle)
		Expect(err).NotTo(HaveOccurred())

		out := ansi.Strip(md.Render("# Robots\n\nThey live on **Mars**.\n\n```go\nx := 1\n```"))
		Expect(out).To(ContainSubstring("Robots"))
		Expect(out).To(ContainSubstring("They live on"))
		Expect(out).To(ContainSubstring("x := 1"))
		Expect(out).NotTo(ContainSubstring("**"))
		Expect(out).NotTo(HaveSuffix("\n"))
	})
})
