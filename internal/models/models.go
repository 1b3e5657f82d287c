package models

import "strings"

// Intent classifies what a user turn is asking for.
type Intent string

const (
	IntentCoreTopic      Intent = "core_topic"
	IntentSpecificDetail Intent = "specific_detail"
	IntentTermDefinition Intent = "term_definition"
	IntentFollowUp       Intent = "follow_up"
	IntentScopeOverview  Intent = "scope_overview"
	IntentSelfIdentity   Intent = "self_identity"
	IntentAffect         Intent = "affect"
	IntentOutOfScope     Intent = "out_of_scope"
)

// ValidIntents is the set of all valid intents.
var ValidIntents = []Intent{
	IntentCoreTopic,
	IntentSpecificDetail,
	IntentTermDefinition,
	IntentFollowUp,
	IntentScopeOverview,
	IntentSelfIdentity,
	IntentAffect,
	IntentOutOfScope,
}

// IsValid returns true if the intent is recognized.
func (i Intent) IsValid() bool {
	for _, v := range ValidIntents {
		if i == v {
			return true
		}
	}
	return false
}

// ParseIntent maps a classifier label to an Intent. The label is trimmed and
// lowercased first. ok is false for any label outside the taxonomy; callers
// must treat that as out_of_scope rather than trusting the raw label.
func ParseIntent(label string) (Intent, bool) {
	i := Intent(strings.ToLower(strings.TrimSpace(label)))
	if i.IsValid() {
		return i, true
	}
	return IntentOutOfScope, false
}

// Topic identifies one of the fixed knowledge areas.
type Topic string

const (
	TopicDefinition       Topic = "definition"
	TopicImportance       Topic = "importance"
	TopicSampling         Topic = "sampling"
	TopicSamplingProblems Topic = "sampling_problems"
	TopicFormation        Topic = "formation"
	TopicDegradation      Topic = "degradation"
)

// ValidTopics is the set of all valid topics.
var ValidTopics = []Topic{
	TopicDefinition,
	TopicImportance,
	TopicSampling,
	TopicSamplingProblems,
	TopicFormation,
	TopicDegradation,
}

// IsValid returns true if the topic is recognized.
func (t Topic) IsValid() bool {
	for _, v := range ValidTopics {
		if t == v {
			return true
		}
	}
	return false
}

// StyleLevel selects the persona and tone of the answers. Level 0 is a
// nameless mechanical system, level 1 a friendly assistant, level 2 a warm
// named persona.
type StyleLevel int

const (
	LevelNeutral  StyleLevel = 0
	LevelFriendly StyleLevel = 1
	LevelPersonal StyleLevel = 2
)

// ValidStyleLevels is the set of all valid style levels.
var ValidStyleLevels = []StyleLevel{LevelNeutral, LevelFriendly, LevelPersonal}

// IsValid returns true if the style level is recognized.
func (l StyleLevel) IsValid() bool {
	return l >= LevelNeutral && l <= LevelPersonal
}

// Memory is the per-session conversation state consulted on follow-up turns.
// A zero Memory means no prior turn.
type Memory struct {
	LastTopic  Topic    `json:"last_topic,omitempty"`
	LastTerm   string   `json:"last_term,omitempty"`
	LastAnswer string   `json:"last_answer,omitempty"`
	Recent     []string `json:"recent,omitempty"` // newest last, at most two entries
}

// Passage is one retrieved document fragment.
type Passage struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Page  int     `json:"page"`
	Score float64 `json:"score"`
}

// ValidationResult holds the outcome of the style and content checks for a
// single answer. It is derived on demand and never stored.
type ValidationResult struct {
	Length       int     `json:"length"`
	LengthOK     bool    `json:"length_ok"`
	KeywordRatio float64 `json:"keyword_ratio"`
	KeywordOK    bool    `json:"keyword_ok"`
	EmojiCount   int     `json:"emoji_count"`
	EmojiOK      bool    `json:"emoji_ok"`
	PronounOK    bool    `json:"pronoun_ok"`
	OK           bool    `json:"ok"`
}
