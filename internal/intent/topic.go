package intent

import (
	"log/slog"
	"strings"

	"github.com/einfachManu/marine-snow-tutor/internal/models"
)

// TopicClassifier assigns a topic to an in-domain question using
// keyword-based rules. No model call is needed: the topic set is small and
// the phrasing of topical questions is highly regular.
type TopicClassifier struct {
	logger *slog.Logger
}

// NewTopicClassifier creates a new heuristic topic classifier.
func NewTopicClassifier(logger *slog.Logger) *TopicClassifier {
	return &TopicClassifier{logger: logger}
}

// topicPatterns match lowercase question text per topic.
var topicPatterns = map[models.Topic][]string{
	models.TopicDefinition: {
		"was ist", "was genau ist", "definier", "definition", "was versteht man",
		"was bedeutet", "worum handelt", "beschreibe", "erkläre meeresschnee", "eigenschaft",
	},
	models.TopicImportance: {
		"wichtig", "bedeutung", "rolle", "funktion", "relevan", "ökolog", "ökosystem", "braucht man",
	},
	models.TopicSampling: {
		"gesammelt", "sammlung", "sampel", "probe", "probenahme", "entnommen",
		"untersuch", "methoden", "gewinnt man",
	},
	models.TopicSamplingProblems: {
		"problem", "schwierig", "verzerr", "fehler", "herausforder", "bias",
	},
	models.TopicFormation: {
		"entsteh", "bildet", "bildung", "formt", "zustande", "mechanismen", "erzeug", "prozesse führen zu",
	},
	models.TopicDegradation: {
		"zerfall", "zerfällt", "abgebaut", "abbau", "verschwindet", "abnahme", "abnimmt", "nimmt ab", "weniger",
	},
}

// topicScanOrder fixes the tie-break order: more specific topics come before
// the broader ones they overlap with (sampling_problems questions always
// also mention sampling vocabulary).
var topicScanOrder = []models.Topic{
	models.TopicSamplingProblems,
	models.TopicDegradation,
	models.TopicFormation,
	models.TopicSampling,
	models.TopicImportance,
	models.TopicDefinition,
}

// Classify returns the best-matching topic for the question. ok is false
// when no pattern matched; the returned topic then defaults to definition
// as the broadest area.
func (t *TopicClassifier) Classify(text string) (models.Topic, bool) {
	lower := strings.ToLower(text)

	best := models.TopicDefinition
	bestScore := 0
	for _, topic := range topicScanOrder {
		score := 0
		for _, p := range topicPatterns[topic] {
			if strings.Contains(lower, p) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = topic
		}
	}

	// Problems questions mention sampling vocabulary too and usually more of
	// it, so a plain score comparison would misfile them under sampling.
	if best == models.TopicSampling {
		for _, p := range topicPatterns[models.TopicSamplingProblems] {
			if strings.Contains(lower, p) {
				best = models.TopicSamplingProblems
				break
			}
		}
	}

	t.logger.Debug("intent: classified topic", "topic", best, "score", bestScore)
	return best, bestScore > 0
}
