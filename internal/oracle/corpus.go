package oracle

import "github.com/einfachManu/marine-snow-tutor/internal/models"

// Corpus is the built-in per-topic question set used by the bulk harness.
var Corpus = map[models.Topic][]string{
	models.TopicDefinition: {
		"Was ist Meeresschnee?",
		"Erkläre Meeresschnee.",
		"Definiere Meeresschnee.",
		"Was versteht man unter Meeresschnee?",
		"Gib eine Definition von Meeresschnee.",
		"Worum handelt es sich bei Meeresschnee?",
		"Was bedeutet der Begriff Meeresschnee?",
		"Was genau ist Meeresschnee?",
		"Kannst du Meeresschnee definieren?",
	},
	models.TopicSampling: {
		"Wie wird Meeresschnee gesammelt?",
		"Wie sampelt man Meeresschnee?",
		"Wie gewinnt man Proben von Meeresschnee?",
		"Wie wird Meeresschnee in der Forschung entnommen?",
		"Wie nimmt man Proben von Meeresschnee?",
		"Wie erfolgt die Probenahme von Meeresschnee?",
		"Wie gelangt man an Meeresschneeproben?",
		"Welche Methoden nutzt man zur Sammlung von Meeresschnee?",
	},
	models.TopicFormation: {
		"Wie entsteht Meeresschnee?",
		"Wodurch bildet sich Meeresschnee?",
		"Welche Prozesse führen zu Meeresschnee?",
		"Wie kommt Meeresschnee zustande?",
		"Wie formt sich Meeresschnee?",
		"Wie entsteht das Phänomen Meeresschnee?",
		"Welche Mechanismen erzeugen Meeresschnee?",
	},
	models.TopicImportance: {
		"Warum ist Meeresschnee wichtig?",
		"Welche Rolle spielt Meeresschnee im Ozean?",
		"Weshalb ist Meeresschnee von Bedeutung?",
		"Warum braucht man Meeresschnee für das Ökosystem?",
		"Welche Funktion erfüllt Meeresschnee?",
		"Warum spielt Meeresschnee im Meer eine große Rolle?",
		"Wieso ist Meeresschnee ökologisch relevant?",
		"Welche ökologische Rolle übernimmt Meeresschnee?",
	},
	models.TopicDegradation: {
		"Wie zerfällt Meeresschnee?",
		"Wie wird Meeresschnee abgebaut?",
		"Warum verschwindet Meeresschnee?",
		"Welche Prozesse führen zum Zerfall von Meeresschnee?",
		"Warum nimmt die Menge an Meeresschnee ab?",
	},
}

// CorpusTopics returns the topics covered by the corpus in a stable order.
func CorpusTopics() []models.Topic {
	var out []models.Topic
	for _, t := range models.ValidTopics {
		if len(Corpus[t]) > 0 {
			out = append(out, t)
		}
	}
	return out
}
