package shinise

import (
	"regexp"
	"strings"
)

var (
	fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	braceSpanRe   = regexp.MustCompile(`(?s)(\{.*\})`)
)

// ExtractJSONPayload pulls a JSON candidate out of free-form model output.
// Strategies are attempted in order, first non-empty match wins: a fenced
// ```json block, then the widest top-level {...} span, then stripping any
// leftover fence markers.
func ExtractJSONPayload(text string) string {
	if m := fencedBlockRe.FindStringSubmatch(text); len(m) > 1 && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1])
	}
	if m := braceSpanRe.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	stripped := strings.ReplaceAll(text, "```json", "")
	stripped = strings.ReplaceAll(stripped, "```", "")
	return strings.TrimSpace(stripped)
}
