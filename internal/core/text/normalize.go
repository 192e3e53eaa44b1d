// Package text cleans up raw OCR output before it is handed back to callers.
package text

import (
	"regexp"
	"strings"
)

var (
	newlineRuns    = regexp.MustCompile(`[\r\n]+`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// Normalize collapses recognized text into a single line: runs of newlines
// become one space, every remaining whitespace run becomes one space, and the
// result is trimmed. Applying it twice yields the same string as applying it
// once.
func Normalize(s string) string {
	s = newlineRuns.ReplaceAllString(s, " ")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
