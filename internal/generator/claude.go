package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// claudeMaxTokens bounds the completion length. Answers are capped at a
// thousand characters downstream, so this leaves generous headroom.
const claudeMaxTokens = 1024

// ClaudeGenerator implements Generator using the Anthropic Messages API.
type ClaudeGenerator struct {
	client *anthropic.Client
	model  string
	logger *slog.Logger
}

// NewClaudeGenerator creates a generator backed by the Anthropic Claude API.
func NewClaudeGenerator(apiKey, model string, logger *slog.Logger) *ClaudeGenerator {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &ClaudeGenerator{
		client: &c,
		model:  model,
		logger: logger,
	}
}

// Complete sends one message exchange and returns the first text block of
// the response.
func (g *ClaudeGenerator) Complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(g.model),
		MaxTokens:   claudeMaxTokens,
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude completion: %w", err)
	}

	var text string
	for i := range resp.Content {
		if resp.Content[i].Type == "text" {
			text = strings.TrimSpace(resp.Content[i].Text)
			break
		}
	}
	if text == "" {
		return "", fmt.Errorf("claude completion: %w", ErrEmptyCompletion)
	}

	g.logger.Debug("completion generated", "model", g.model, "chars", len(text))
	return text, nil
}
