// Package spell normalizes user input before classification so that typos
// do not derail intent detection or retrieval.
package spell

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/einfachManu/marine-snow-tutor/internal/generator"
	"github.com/einfachManu/marine-snow-tutor/pkg/xmlutil"
)

// Normalizer corrects spelling with a single deterministic model call.
// On any failure it degrades gracefully and returns the input unchanged.
type Normalizer struct {
	gen    generator.Generator
	logger *slog.Logger
}

// New creates a Normalizer backed by the given generator.
func New(gen generator.Generator, logger *slog.Logger) *Normalizer {
	return &Normalizer{gen: gen, logger: logger}
}

// Normalize returns the spelling-corrected text. The correction never adds
// commentary; an empty or failed completion falls back to the original text.
func (n *Normalizer) Normalize(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	prompt := fmt.Sprintf(`Correct the spelling of the text below. Keep its language and meaning unchanged. Reply with the corrected text only, no commentary.

<text>%s</text>`, xmlutil.Escape(text))

	corrected, err := n.gen.Complete(ctx, "", prompt, 0)
	if err != nil {
		n.logger.Warn("spell: correction failed, using original text", "error", err)
		return text
	}

	n.logger.Debug("spell: corrected input", "changed", corrected != text)
	return corrected
}
