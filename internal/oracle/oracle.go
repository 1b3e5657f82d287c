// Package oracle validates finished answers against the length band, the
// per-topic keyword patterns, and the per-level emoji and pronoun rules.
// All checks are pure predicates over the answer text.
package oracle

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/einfachManu/marine-snow-tutor/internal/knowledge"
	"github.com/einfachManu/marine-snow-tutor/internal/models"
)

// DefaultMinKeywordRatio is the keyword coverage an answer must reach to
// count as grounded in its topic.
const DefaultMinKeywordRatio = 0.75

// emoji code point range checked by the emoji cap.
const (
	emojiRangeLo = 0x1F300
	emojiRangeHi = 0x1FAFF
)

// Oracle evaluates answers. It is stateless apart from its configuration.
type Oracle struct {
	kb              *knowledge.Base
	minChars        int
	maxChars        int
	minKeywordRatio float64
}

// New creates an Oracle for the given length band.
func New(kb *knowledge.Base, minChars, maxChars int) *Oracle {
	return &Oracle{
		kb:              kb,
		minChars:        minChars,
		maxChars:        maxChars,
		minKeywordRatio: DefaultMinKeywordRatio,
	}
}

// LengthOK reports whether the answer length, counted in characters with
// whitespace included, lies inside the band.
func (o *Oracle) LengthOK(text string) bool {
	n := utf8.RuneCountInString(text)
	return n >= o.minChars && n <= o.maxChars
}

// CountEmojis counts code points in the emoji block U+1F300..U+1FAFF.
func CountEmojis(text string) int {
	count := 0
	for _, r := range text {
		if r >= emojiRangeLo && r <= emojiRangeHi {
			count++
		}
	}
	return count
}

// KeywordCoverage returns the fraction of the topic's keyword patterns that
// the text matches. A trailing '%' in a pattern marks a prefix stem; the
// stem may appear anywhere in the text, case-insensitively.
func (o *Oracle) KeywordCoverage(text string, topic models.Topic) float64 {
	patterns := o.kb.PatternsFor(topic)
	if len(patterns) == 0 {
		return 0
	}

	lower := strings.ToLower(text)
	hits := 0
	for _, p := range patterns {
		stem := strings.ToLower(strings.TrimSuffix(p, "%"))
		if strings.Contains(lower, stem) {
			hits++
		}
	}
	return float64(hits) / float64(len(patterns))
}

// PronounViolation reports whether the text contains a pronoun forbidden at
// the level. Words are compared whole, so "nicht" does not trip over "ich".
func (o *Oracle) PronounViolation(text string, level models.StyleLevel) bool {
	forbidden := o.kb.ForbiddenPronouns(level)
	if len(forbidden) == 0 {
		return false
	}

	set := make(map[string]struct{}, len(forbidden))
	for _, p := range forbidden {
		set[p] = struct{}{}
	}

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		if _, bad := set[w]; bad {
			return true
		}
	}
	return false
}

// Evaluate runs all checks and aggregates them into a ValidationResult.
func (o *Oracle) Evaluate(text string, topic models.Topic, level models.StyleLevel) models.ValidationResult {
	length := utf8.RuneCountInString(text)
	ratio := o.KeywordCoverage(text, topic)
	emojis := CountEmojis(text)

	r := models.ValidationResult{
		Length:       length,
		LengthOK:     o.LengthOK(text),
		KeywordRatio: ratio,
		KeywordOK:    ratio >= o.minKeywordRatio,
		EmojiCount:   emojis,
		EmojiOK:      emojis <= o.kb.EmojiCap(level),
		PronounOK:    !o.PronounViolation(text, level),
	}
	r.OK = r.LengthOK && r.KeywordOK && r.EmojiOK && r.PronounOK
	return r
}
