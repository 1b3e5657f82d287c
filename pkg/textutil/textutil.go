// Package textutil provides small text helpers shared across packages.
package textutil

import "strings"

// Preview shortens text for log output: newlines become spaces and the
// result is truncated to max runes with an ellipsis.
func Preview(text string, max int) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= max {
		return flat
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
