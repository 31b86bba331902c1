// Package render converts assistant replies into the forms the chat surfaces
// display: escaped text, HTML with formatted code blocks, and speakable text.
package render

import (
	"regexp"
	"strings"
)

var (
	htmlEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")
	codeFence   = regexp.MustCompile("(?s)```.*?```")
)

// EscapeHTML neutralizes markup by escaping '<' and '>'. Other characters,
// including '&', are left alone.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// FormatMessage turns message text into HTML for the chat view. Newlines
// become <br>, and every ``` fenced block becomes a <pre class="codeblock">
// holding the lines between the opening and closing fence lines.
//
// The text is expected to be escaped already (see EscapeHTML).
func FormatMessage(content string) string {
	html := strings.ReplaceAll(content, "\n", "<br>")

	return codeFence.ReplaceAllStringFunc(html, func(block string) string {
		lines := strings.Split(block, "<br>")
		inner := ""
		if len(lines) > 2 {
			inner = strings.Join(lines[1:len(lines)-1], "\n")
		}
		return `<pre class="codeblock">` + inner + `</pre>`
	})
}
