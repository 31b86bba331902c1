package render

import (
	"regexp"
	"strings"
)

var (
	pythonFence = regexp.MustCompile("(?s)```python.*?```")

	speechCleaner = strings.NewReplacer(
		"https://", "",
		"http://", "",
		"www.", "",
		"*", "",
		"_", " ",
		"`", "",
		`"`, "",
	)
)

// SpeechText prepares a reply for text-to-speech. Code blocks are replaced
// by a short notice, and URL prefixes plus characters a voice would read out
// literally are removed. An empty result means there is nothing to speak.
func SpeechText(text string) string {
	speech := pythonFence.ReplaceAllString(text, "(Python-code attached.)")
	speech = codeFence.ReplaceAllString(speech, "(Code attached.)")
	speech = speechCleaner.Replace(speech)
	return strings.TrimSpace(speech)
}
