package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"
)

// Markdown renders replies as styled terminal text.
type Markdown struct {
	renderer *glamour.TermRenderer
}

// DetectStyle returns the glamour theme matching the terminal background.
// It queries the terminal, so call it before anything else reads stdin.
func DetectStyle() string {
	if termenv.HasDarkBackground() {
		return styles.DarkStyle
	}
	return styles.LightStyle
}

// NewMarkdown creates a renderer wrapping at width columns. An empty style
// picks the dark or light theme from the terminal background.
func NewMarkdown(width int, style string) (*Markdown, error) {
	if style == "" {
		style = DetectStyle()
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Markdown{renderer: r}, nil
}

// Render returns text rendered as markdown, or text unchanged when it cannot
// be rendered.
func (m *Markdown) Render(text string) string {
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
