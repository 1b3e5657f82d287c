// Package conform enforces the target answer length with a bounded
// correction loop.
package conform

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/einfachManu/marine-snow-tutor/internal/generator"
	"github.com/einfachManu/marine-snow-tutor/internal/metrics"
)

// DefaultMaxAttempts is how many correction rounds are tried before giving
// up and returning the best effort.
const DefaultMaxAttempts = 5

// Conformer rewrites text until its character count (whitespace included)
// falls inside [min, max]. Text already in range passes through untouched,
// so the operation is idempotent. After maxAttempts failed rounds the last
// attempt is returned as-is; length conformance is soft.
type Conformer struct {
	gen         generator.Generator
	min         int
	max         int
	maxAttempts int
	logger      *slog.Logger
}

// New creates a Conformer for the given character band.
func New(gen generator.Generator, min, max, maxAttempts int, logger *slog.Logger) *Conformer {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Conformer{gen: gen, min: min, max: max, maxAttempts: maxAttempts, logger: logger}
}

// Conform returns text adjusted into the length band, best effort. Lengths
// are counted in runes so multi-byte characters and emojis count once.
func (c *Conformer) Conform(ctx context.Context, text string) string {
	attempt := text

	for i := 0; i < c.maxAttempts; i++ {
		n := utf8.RuneCountInString(attempt)
		if n >= c.min && n <= c.max {
			if i > 0 {
				c.logger.Debug("conform: length fixed", "rounds", i, "chars", n)
			}
			return attempt
		}

		metrics.Inc(metrics.LengthRetryTotal)

		fixed, err := c.gen.Complete(ctx, "", c.fixPrompt(attempt), 0)
		if err != nil {
			c.logger.Warn("conform: correction call failed, keeping current text", "error", err, "chars", n)
			return attempt
		}
		attempt = strings.TrimSpace(fixed)
	}

	c.logger.Warn("conform: length still out of band after all attempts",
		"chars", utf8.RuneCountInString(attempt), "min", c.min, "max", c.max)
	return attempt
}

func (c *Conformer) fixPrompt(text string) string {
	return fmt.Sprintf(`Rewrite the following text so that it is strictly between %d and %d characters long. Whitespace counts toward the length. Do not change the content or its language. No meta commentary, no mention of rules or lengths.

Text:
%s`, c.min, c.max, text)
}
