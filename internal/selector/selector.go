// Package selector maps a classified turn to the knowledge sources the
// generator is allowed to use. The mapping is pure policy: no I/O, no model
// calls, fully deterministic.
package selector

import (
	"github.com/einfachManu/marine-snow-tutor/internal/knowledge"
	"github.com/einfachManu/marine-snow-tutor/internal/models"
)

// SourceSet is the material the generator may ground an answer in. At most
// one grouping is populated per turn, except core topic answers which may
// carry a passage for phrasing support alongside their units.
type SourceSet struct {
	Units        []string // information units, the only facts for core topics
	Passage      string   // retrieved fragment; sole source for detail answers
	Persona      string   // self-description; sole source for identity answers
	ScopeTopics  []string // topic titles for overview answers
	Continuation string   // previous answer, for follow-ups without a topic
}

// Empty reports whether the set carries no source material at all.
func (s SourceSet) Empty() bool {
	return len(s.Units) == 0 && s.Passage == "" && s.Persona == "" &&
		len(s.ScopeTopics) == 0 && s.Continuation == ""
}

// Selector resolves source sets against the knowledge base.
type Selector struct {
	kb *knowledge.Base
}

// New creates a Selector over the given knowledge base.
func New(kb *knowledge.Base) *Selector {
	return &Selector{kb: kb}
}

// Select returns the sources for one turn.
//
//   - core_topic: the topic's units, plus the passage for phrasing only
//   - specific_detail: the passage alone; units are forbidden
//   - term_definition: nothing, the model answers from the term itself
//   - follow_up: inherit the last topic's units; with no last topic the
//     previous answer becomes the continuation base
//   - scope_overview: the topic title list
//   - self_identity: the persona text alone
//   - affect, out_of_scope: nothing
func (s *Selector) Select(intent models.Intent, topic models.Topic, passage string, level models.StyleLevel, mem models.Memory) SourceSet {
	switch intent {
	case models.IntentCoreTopic:
		return SourceSet{Units: s.kb.UnitsFor(topic), Passage: passage}
	case models.IntentSpecificDetail:
		return SourceSet{Passage: passage}
	case models.IntentFollowUp:
		if mem.LastTopic != "" {
			return SourceSet{Units: s.kb.UnitsFor(mem.LastTopic), Passage: passage}
		}
		return SourceSet{Continuation: mem.LastAnswer}
	case models.IntentScopeOverview:
		return SourceSet{ScopeTopics: s.kb.ScopeTopics()}
	case models.IntentSelfIdentity:
		return SourceSet{Persona: s.kb.Persona(level)}
	default:
		// term_definition, affect, out_of_scope
		return SourceSet{}
	}
}
