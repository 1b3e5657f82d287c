// Package intent classifies user turns into the fixed intent taxonomy and
// assigns a topic to in-domain questions.
package intent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/einfachManu/marine-snow-tutor/internal/generator"
	"github.com/einfachManu/marine-snow-tutor/internal/models"
	"github.com/einfachManu/marine-snow-tutor/pkg/xmlutil"
)

// Classifier assigns exactly one intent to a user turn.
type Classifier interface {
	Classify(ctx context.Context, text string, mem models.Memory) (models.Intent, error)
}

// LLMClassifier delegates classification to the model with a prompt
// constrained to the eight labels. Any out-of-set label, empty response, or
// API failure resolves to out_of_scope so that no unvetted input ever
// reaches the answer path.
type LLMClassifier struct {
	gen    generator.Generator
	logger *slog.Logger
}

// NewLLMClassifier creates a classifier backed by the given generator.
func NewLLMClassifier(gen generator.Generator, logger *slog.Logger) *LLMClassifier {
	return &LLMClassifier{gen: gen, logger: logger}
}

// Classify returns the intent for the turn. It fails closed: the returned
// intent is always a member of the taxonomy.
func (c *LLMClassifier) Classify(ctx context.Context, text string, mem models.Memory) (models.Intent, error) {
	if strings.TrimSpace(text) == "" {
		return models.IntentOutOfScope, nil
	}

	prompt := buildClassifyPrompt(text, mem)

	label, err := c.gen.Complete(ctx, "", prompt, 0)
	if err != nil {
		if ctx.Err() != nil {
			return models.IntentOutOfScope, ctx.Err()
		}
		c.logger.Warn("intent: classification call failed, treating input as out of scope", "error", err)
		return models.IntentOutOfScope, nil
	}

	intent, ok := models.ParseIntent(label)
	if !ok {
		c.logger.Warn("intent: model returned label outside taxonomy", "label", label)
		return models.IntentOutOfScope, nil
	}

	c.logger.Debug("intent: classified turn", "intent", intent)
	return intent, nil
}

func buildClassifyPrompt(text string, mem models.Memory) string {
	var ctxHints strings.Builder
	if mem.LastAnswer != "" {
		ctxHints.WriteString("The assistant has already answered at least one question in this conversation.\n")
	}
	if mem.LastTopic != "" {
		fmt.Fprintf(&ctxHints, "The previous question was about the topic %q.\n", mem.LastTopic)
	}

	return fmt.Sprintf(`You classify messages sent to a tutoring assistant whose only subject is marine snow (Meeresschnee).

Pick exactly ONE label:

- core_topic: a question about one of the main areas (definition and properties, ecological importance, sampling methods, sampling problems, formation, degradation/decline)
- specific_detail: an in-domain detail question that is not one of the main areas
- term_definition: asks what a single word or term means
- follow_up: refers back to the previous answer ("repeat that", "in other words", "explain that in more detail", pronoun references)
- scope_overview: asks what topics the assistant covers or what can be asked
- self_identity: asks for the assistant's name, identity, or role (NOT feelings)
- affect: expresses only feelings or personal state, no information goal
- out_of_scope: anything else (general knowledge, politics, technology, other subjects)

If the message is plausibly about marine snow, prefer an in-domain label over out_of_scope.

%sOutput ONLY the label, nothing else.

<message>%s</message>`, ctxHints.String(), xmlutil.Escape(text))
}
