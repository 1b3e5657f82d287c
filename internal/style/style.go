// Package style rewrites finished answers into the tone of the active
// style level and produces level-appropriate responses to emotional input.
package style

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/einfachManu/marine-snow-tutor/internal/generator"
	"github.com/einfachManu/marine-snow-tutor/internal/knowledge"
	"github.com/einfachManu/marine-snow-tutor/internal/models"
)

// affectTemperature gives emotional responses some variation; tone
// rewrites stay near-deterministic.
const (
	rewriteTemperature = 0.25
	affectTemperature  = 0.5
)

// Transformer applies the per-level tone rules in a single model pass.
// The content is changed in tone only, never in substance. There is no
// retry: a failed rewrite returns the input unchanged.
type Transformer struct {
	gen    generator.Generator
	kb     *knowledge.Base
	logger *slog.Logger
}

// New creates a Transformer over the given generator and knowledge base.
func New(gen generator.Generator, kb *knowledge.Base, logger *slog.Logger) *Transformer {
	return &Transformer{gen: gen, kb: kb, logger: logger}
}

// Rewrite returns text restyled for the level. On any failure the original
// text is returned so the turn still completes.
func (t *Transformer) Rewrite(ctx context.Context, text string, level models.StyleLevel) string {
	prompt := fmt.Sprintf(`Rewrite the following text stylistically according to these rules:
%s

VERY IMPORTANT:
- Keep the language of the text.
- Change only the tone, never the content.
- No hints at rules, no meta commentary.
- Return only the rewritten text.

Text:
%s`, t.kb.StyleRules(level), text)

	styled, err := t.gen.Complete(ctx, "", prompt, rewriteTemperature)
	if err != nil {
		t.logger.Warn("style: rewrite failed, returning unstyled text", "level", level, "error", err)
		return text
	}
	return styled
}

// Affect responds to a pure emotional expression under the level's affect
// rules. Unlike Rewrite there is no safe text to fall back to, so errors
// are returned to the caller.
func (t *Transformer) Affect(ctx context.Context, userText string, level models.StyleLevel) (string, error) {
	reply, err := t.gen.Complete(ctx, t.kb.AffectRules(level), userText, affectTemperature)
	if err != nil {
		return "", fmt.Errorf("affect response: %w", err)
	}
	return reply, nil
}
