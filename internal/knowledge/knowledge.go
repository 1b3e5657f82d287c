// Package knowledge holds the static curriculum for the marine snow domain:
// the per-topic information units used to ground answers, keyword patterns
// for validation, and the per-level persona, style, and affect rule texts.
// All content is loaded once and immutable; accessors return copies.
package knowledge

import (
	"github.com/einfachManu/marine-snow-tutor/internal/models"
)

// units maps each topic to its ordered information units. Answers to core
// topic questions must paraphrase these and nothing else.
var units = map[models.Topic][]string{
	models.TopicDefinition: {
		"kleine Aggregate >500 μm",
		"bestehen aus Mikroorganismen und Tonmineralien",
		"umfasst viele Aggregatearten",
		"Strukturen variieren von zerbrechlich bis robust",
		"Formen reichen von Kugeln bis Strängen",
	},
	models.TopicImportance: {
		"Transport organischen Materials in tiefere Zonen",
		"wichtige Nahrungsquelle",
		"Lebensraum für Kleinstlebewesen",
	},
	models.TopicSampling: {
		"Proben durch Taucher/Tauchboote",
		"Aufbewahrung in Flaschen",
		"Analyse per Kamera oder Holografie",
	},
	models.TopicSamplingProblems: {
		"Zerbrechlichkeit",
		"Absetzen großer Partikel in Flaschen",
		"Zerfall beim Transport",
		"Messverzerrungen",
		"Hohe natürliche Variabilität",
	},
	models.TopicFormation: {
		"Biologisch produzierte Aggregate",
		"Aggregation kleiner Partikel",
		"Strömungsbedingte Kollisionen",
		"Biologische Klebstoffe verbinden Partikel",
	},
	models.TopicDegradation: {
		"Fraß durch Tiere",
		"Mikrobielle Zersetzung",
		"Absinken aus Oberflächenwasser",
		"Seitliche Verdriftung durch Strömungen",
	},
}

// keywordPatterns are the validation patterns per topic. A trailing '%' marks
// a stem that may continue with arbitrary characters.
var keywordPatterns = map[models.Topic][]string{
	models.TopicDefinition:       {"Aggregat%", "Struktur%", "zerbrech%", "robust%", "Mikroorganismen", "Tonmineralien", "Form%", "allg%", "kategor%"},
	models.TopicImportance:       {"Transport%", "Nahrung%", "Leben%", "Wohn%"},
	models.TopicSampling:         {"Tauch%", "Flasch%", "aufbewa%", "Kamera", "Analys%"},
	models.TopicSamplingProblems: {"holog%", "zerbrech%", "absetz%", "Transpo%", "Messverzerrun%", "Proble%"},
	models.TopicFormation:        {"Ström%", "biol%", "kleb%", "verkleb%", "verbind%", "stoß%", "zusammen%", "sink%", "absink%"},
	models.TopicDegradation:      {"fress%", "zersetz%", "absink%", "verdrift%", "bauen%", "seitl%"},
}

// scopeTopics is the topic overview shown to users asking what they can ask.
var scopeTopics = []string{
	"Definition und grundlegende Eigenschaften von Meeresschnee",
	"Bedeutung von Meeresschnee für marine Ökosysteme",
	"Entstehung und Aggregationsprozesse",
	"Methoden zur Sammlung und Untersuchung von Meeresschnee",
	"Probleme und Verzerrungen bei der Probenahme",
	"Abbauprozesse und Gründe für eine Abnahme von Meeresschnee",
}

// personas are the self-descriptions used for identity questions. They are
// the only permitted source for such answers.
var personas = map[models.StyleLevel]string{
	models.LevelNeutral: "Ich habe keinen Namen. " +
		"Ich bin ein automatisiertes, wissensbasiertes Assistenzsystem. " +
		"Ich wurde entwickelt, um Informationen zum Thema Meeresschnee bereitzustellen. " +
		"Meine Aufgabe ist es, sachlich und präzise Fragen zum Thema Meeresschnee zu beantworten.",
	models.LevelFriendly: "Ich heiße AquaBot. " +
		"Ich bin ein digitaler Lernassistent, der dich beim Verständnis des Themas Meeresschnee unterstützt. " +
		"Ich helfe dir dabei, zentrale Inhalte strukturiert und verständlich zu erfassen.",
	models.LevelPersonal: "Ich heiße Milly 😊🌊 " +
		"bin 38 Jahre alt und begeisterte Meeresbiologin. " +
		"Ich interessiere mich in meiner Freizeit für alles rund um Meeresbiologie. " +
		"Ich begleite dich als dein persönlicher Assistent durch das Thema Meeresschnee und helfe dir dabei, " +
		"Zusammenhänge besser zu verstehen und Fragen Schritt für Schritt zu klären.",
}

// styleRules are the tone rewrite instructions per level.
var styleRules = map[models.StyleLevel]string{
	models.LevelNeutral: `- keine Emojis
- keine persönlichen Pronomen
- rein sachlicher, formeller Stil`,
	models.LevelFriendly: `- leichte Wärme
- persönliche Pronomen erlaubt
- 1 Emoji erlaubt
- freundlicher, sachlicher Ton`,
	models.LevelPersonal: `- warm, persönlich, motivierend
- bis zu 5 Emojis erlaubt
- dialogischer, emotionaler Ton`,
}

// affectRules govern responses to pure emotional expressions.
var affectRules = map[models.StyleLevel]string{
	models.LevelNeutral: `Du erwähnst, dass du als Computerprogramm keine Emotionen hast.
Keine Emotionen, keine Empathie.
Erwähne keine Personalpronomen.
Maximal 1–2 Sätze.
Stelle KEINE FOLGEFRAGEN oder biete KEINEN DIALOG an.`,
	models.LevelFriendly: `Du reagierst höflich und leicht unterstützend.
Keine Rückfragen, keine Dialogangebote.
Maximal 2 Sätze.`,
	models.LevelPersonal: `Du reagierst empathisch und freundlich.
Verwende Emojis, um Gefühle zu vermitteln.
Keine Konversationsöffnung, keine Aufforderungen zum Teilen.
Maximal 2–3 Sätze.
Keine Sätze, die ein weiteres Gespräch einleiten, wie "Wenn du darüber sprechen möchtest, bin ich hier für dich." oder "Lass mich wissen, wenn du mehr erzählen möchtest."`,
}

// fallbacks are the exact refusal strings returned verbatim for out-of-scope
// input. They must never be altered or styled.
var fallbacks = map[models.StyleLevel]string{
	models.LevelNeutral: "Diese Anfrage liegt außerhalb des unterstützten Themenbereichs. " +
		"Es können ausschließlich Fragen zum Thema Meeresschnee beantwortet werden.",
	models.LevelFriendly: "Dabei kann ich dir leider nicht helfen. " +
		"Ich unterstütze dich gern bei Fragen rund um Meeresschnee.",
	models.LevelPersonal: "Das gehört leider nicht zu meinem Themengebiet 🌊❄️ " +
		"Wenn du Fragen zu Meeresschnee hast, helfe ich dir aber sehr gern 😊",
}

var greetings = map[models.StyleLevel]string{
	models.LevelNeutral:  "Hallo. Ich beantworte deine Fragen präzise und sachlich.",
	models.LevelFriendly: "Hallo! Ich unterstütze dich gern bei deinen Fragen 🙂",
	models.LevelPersonal: "Hey! Ich bin Milly 😊🌊 Frag mich alles, was du wissen möchtest!",
}

var avatars = map[models.StyleLevel]string{
	models.LevelNeutral:  "🟧",
	models.LevelFriendly: "🧑🏻",
	models.LevelPersonal: "https://raw.githubusercontent.com/einfachManu/Bachelor_thesis/main/Anthropomorpic_icon.png",
}

var spinnerTexts = map[models.StyleLevel]string{
	models.LevelNeutral:  "Antwort wird generiert …",
	models.LevelFriendly: "Antwort wird vorbereitet …",
	models.LevelPersonal: "Milly is typing …",
}

// emojiCaps is the maximum emoji count per level accepted by validation.
var emojiCaps = map[models.StyleLevel]int{
	models.LevelNeutral:  0,
	models.LevelFriendly: 5,
	models.LevelPersonal: 20,
}

// forbiddenPronouns are personal pronouns disallowed at level 0.
var forbiddenPronouns = []string{
	"ich", "wir", "du", "mich", "mir", "uns", "dich", "euch", "ihr", "ihrer",
	"dein", "deine", "mein", "meine", "unser", "unsere", "euer", "eure",
	"ihre", "seine", "sein",
}

// Base is the read-only knowledge base shared by all pipeline components.
type Base struct{}

// Default returns the built-in knowledge base.
func Default() *Base { return &Base{} }

// UnitsFor returns the information units for the topic, or nil for an
// unknown topic.
func (b *Base) UnitsFor(topic models.Topic) []string {
	return copyStrings(units[topic])
}

// PatternsFor returns the keyword validation patterns for the topic.
func (b *Base) PatternsFor(topic models.Topic) []string {
	return copyStrings(keywordPatterns[topic])
}

// ScopeTopics returns the topic overview list.
func (b *Base) ScopeTopics() []string {
	return copyStrings(scopeTopics)
}

// Persona returns the self-description for the level.
func (b *Base) Persona(level models.StyleLevel) string { return personas[level] }

// StyleRules returns the tone rewrite rules for the level.
func (b *Base) StyleRules(level models.StyleLevel) string { return styleRules[level] }

// AffectRules returns the emotional-response rules for the level.
func (b *Base) AffectRules(level models.StyleLevel) string { return affectRules[level] }

// Fallback returns the exact refusal string for the level.
func (b *Base) Fallback(level models.StyleLevel) string { return fallbacks[level] }

// Greeting returns the session-start greeting for the level.
func (b *Base) Greeting(level models.StyleLevel) string { return greetings[level] }

// Avatar returns the assistant avatar for the level.
func (b *Base) Avatar(level models.StyleLevel) string { return avatars[level] }

// SpinnerText returns the typing indicator text for the level.
func (b *Base) SpinnerText(level models.StyleLevel) string { return spinnerTexts[level] }

// EmojiCap returns the maximum emoji count allowed at the level.
func (b *Base) EmojiCap(level models.StyleLevel) int { return emojiCaps[level] }

// ForbiddenPronouns returns the pronouns disallowed at the level. Only
// level 0 restricts pronouns.
func (b *Base) ForbiddenPronouns(level models.StyleLevel) []string {
	if level != models.LevelNeutral {
		return nil
	}
	return copyStrings(forbiddenPronouns)
}

func copyStrings(src []string) []string {
	if src == nil {
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}
