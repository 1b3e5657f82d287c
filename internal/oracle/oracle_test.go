package oracle

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/einfachManu/marine-snow-tutor/internal/knowledge"
	"github.com/einfachManu/marine-snow-tutor/internal/models"
)

func newTestOracle() *Oracle {
	return New(knowledge.Default(), 800, 1000)
}

func TestLengthOK(t *testing.T) {
	o := newTestOracle()

	assert.False(t, o.LengthOK(strings.Repeat("a", 799)))
	assert.True(t, o.LengthOK(strings.Repeat("a", 800)))
	assert.True(t, o.LengthOK(strings.Repeat("a", 1000)))
	assert.False(t, o.LengthOK(strings.Repeat("a", 1001)))
}

func TestLengthCountsRunesAndWhitespace(t *testing.T) {
	o := newTestOracle()

	// 400 umlauts plus 400 spaces: 800 characters despite 1200 bytes.
	assert.True(t, o.LengthOK(strings.Repeat("ä ", 400)))
}

func TestCountEmojis(t *testing.T) {
	assert.Equal(t, 0, CountEmojis("Nur Text ohne Emojis."))
	assert.Equal(t, 2, CountEmojis("Hallo 😊🌊"))
	// U+2744 (snowflake) lies outside the counted block.
	assert.Equal(t, 0, CountEmojis("Schnee ❄"))
}

func TestKeywordCoverage(t *testing.T) {
	o := newTestOracle()

	// Text hitting several of the degradation stems: fress%, zersetz%,
	// absink%, verdrift%, bauen%, seitl%.
	text := "Tiere fressen die Partikel, Mikroben zersetzen sie, sie absinken und verdriften seitlich, wo sie abgebaut werden."
	ratio := o.KeywordCoverage(text, models.TopicDegradation)
	assert.GreaterOrEqual(t, ratio, 0.75)

	assert.Zero(t, o.KeywordCoverage("Völlig anderes Thema.", models.TopicDegradation))
}

func TestPronounViolation(t *testing.T) {
	o := newTestOracle()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"clean formal text", "Meeresschnee besteht aus Aggregaten.", false},
		{"nicht does not trip ich", "Das ist nicht wichtig.", false},
		{"standalone ich", "Ich helfe dir gern.", true},
		{"capitalized wir", "Wir betrachten die Partikel.", true},
		{"dein with punctuation", "Das ist dein, Ergebnis.", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, o.PronounViolation(tt.text, models.LevelNeutral))
		})
	}
}

func TestPronounsAllowedAboveNeutral(t *testing.T) {
	o := newTestOracle()
	assert.False(t, o.PronounViolation("Ich helfe dir gern.", models.LevelFriendly))
	assert.False(t, o.PronounViolation("Ich helfe dir gern.", models.LevelPersonal))
}

func TestEvaluateAggregates(t *testing.T) {
	o := newTestOracle()

	good := validAnswer(models.TopicDegradation)
	res := o.Evaluate(good, models.TopicDegradation, models.LevelNeutral)
	assert.True(t, res.LengthOK)
	assert.True(t, res.KeywordOK)
	assert.True(t, res.EmojiOK)
	assert.True(t, res.PronounOK)
	assert.True(t, res.OK)

	bad := "zu kurz"
	res = o.Evaluate(bad, models.TopicDegradation, models.LevelNeutral)
	assert.False(t, res.LengthOK)
	assert.False(t, res.OK)
}

func TestEvaluateEmojiCapPerLevel(t *testing.T) {
	o := newTestOracle()

	text := validAnswer(models.TopicDefinition) + "😊"
	res := o.Evaluate(text, models.TopicDefinition, models.LevelNeutral)
	assert.False(t, res.EmojiOK, "level 0 allows no emojis")

	res = o.Evaluate(text, models.TopicDefinition, models.LevelFriendly)
	assert.True(t, res.EmojiOK, "level 1 allows up to 5 emojis")
}

// validAnswer builds a policy-conforming answer for the topic: all keyword
// stems present, 800-1000 characters, no emojis, no personal pronouns.
func validAnswer(topic models.Topic) string {
	kb := knowledge.Default()
	var sb strings.Builder
	for _, p := range kb.PatternsFor(topic) {
		sb.WriteString(strings.TrimSuffix(p, "%"))
		sb.WriteString(" ")
	}
	for utf8.RuneCountInString(sb.String()) < 800 {
		sb.WriteString("meeresschnee partikel aggregation ozean ")
	}
	runes := []rune(sb.String())
	if len(runes) > 1000 {
		runes = runes[:1000]
	}
	return string(runes)
}

func TestValidAnswerHelperIsValid(t *testing.T) {
	o := newTestOracle()
	for _, topic := range models.ValidTopics {
		res := o.Evaluate(validAnswer(topic), topic, models.LevelNeutral)
		require.True(t, res.OK, "helper answer for %s: %+v", topic, res)
	}
}
