package intent

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/einfachManu/marine-snow-tutor/internal/generator"
	"github.com/einfachManu/marine-snow-tutor/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestLLMClassifierLabels(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     models.Intent
	}{
		{"clean label", "core_topic", models.IntentCoreTopic},
		{"label with whitespace", "  follow_up\n", models.IntentFollowUp},
		{"uppercase label", "AFFECT", models.IntentAffect},
		{"garbage response", "I think this is about marine snow", models.IntentOutOfScope},
		{"empty response", "", models.IntentOutOfScope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &generator.Scripted{Responses: []string{tt.response}}
			c := NewLLMClassifier(gen, testLogger())

			got, err := c.Classify(context.Background(), "Was ist Meeresschnee?", models.Memory{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestLLMClassifierEmptyInput(t *testing.T) {
	gen := &generator.Scripted{Responses: []string{"core_topic"}}
	c := NewLLMClassifier(gen, testLogger())

	got, err := c.Classify(context.Background(), "   ", models.Memory{})
	require.NoError(t, err)
	assert.Equal(t, models.IntentOutOfScope, got)
	assert.Zero(t, gen.CallCount(), "no model call for empty input")
}

func TestLLMClassifierFailsClosed(t *testing.T) {
	gen := &generator.Scripted{Err: errors.New("api down")}
	c := NewLLMClassifier(gen, testLogger())

	got, err := c.Classify(context.Background(), "Was ist Meeresschnee?", models.Memory{})
	require.NoError(t, err)
	assert.Equal(t, models.IntentOutOfScope, got)
}

func TestLLMClassifierCancelledContext(t *testing.T) {
	gen := &generator.Scripted{Err: context.Canceled}
	c := NewLLMClassifier(gen, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Classify(ctx, "Was ist Meeresschnee?", models.Memory{})
	assert.Error(t, err)
}

func TestLLMClassifierPromptIncludesMemoryHints(t *testing.T) {
	gen := &generator.Scripted{Responses: []string{"follow_up"}}
	c := NewLLMClassifier(gen, testLogger())

	mem := models.Memory{LastTopic: models.TopicFormation, LastAnswer: "Meeresschnee entsteht durch Aggregation."}
	_, err := c.Classify(context.Background(), "Und warum?", mem)
	require.NoError(t, err)

	calls := gen.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].User, "Und warum?")
	assert.Contains(t, calls[0].User, string(models.TopicFormation))
	assert.Zero(t, calls[0].Temperature)
}

func TestTopicClassifier(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   models.Topic
		wantOK bool
	}{
		{"definition", "Was ist Meeresschnee?", models.TopicDefinition, true},
		{"importance", "Warum ist Meeresschnee wichtig für das Ökosystem?", models.TopicImportance, true},
		{"sampling", "Wie werden Proben von Meeresschnee genommen?", models.TopicSampling, true},
		{"sampling problems", "Welche Probleme gibt es bei der Probenahme?", models.TopicSamplingProblems, true},
		{"formation", "Wie entsteht Meeresschnee?", models.TopicFormation, true},
		{"degradation", "Welche Prozesse führen zum Zerfall von Meeresschnee?", models.TopicDegradation, true},
		{"no signal defaults to definition", "Erzähl mir etwas darüber.", models.TopicDefinition, false},
	}

	tc := NewTopicClassifier(testLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tc.Classify(tt.text)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}
