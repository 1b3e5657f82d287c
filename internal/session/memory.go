package session

import (
	"github.com/einfachManu/marine-snow-tutor/internal/models"
)

// recentWindow is how many recent user messages are kept.
const recentWindow = 2

// ConversationMemory holds the follow-up state for one session. It is
// owned by the session and must only be touched while the session lock is
// held; the pipeline reads a snapshot at turn start and commits exactly
// once after the turn completes.
type ConversationMemory struct {
	state models.Memory
}

// NewConversationMemory returns an empty memory.
func NewConversationMemory() *ConversationMemory {
	return &ConversationMemory{}
}

// Read returns a snapshot of the current state. The snapshot is detached:
// later commits do not affect it.
func (m *ConversationMemory) Read() models.Memory {
	snap := m.state
	snap.Recent = make([]string, len(m.state.Recent))
	copy(snap.Recent, m.state.Recent)
	return snap
}

// Commit records the outcome of a completed turn. Empty topic or term
// arguments preserve the previously stored values, so follow-up chains keep
// their anchor across turns that carry no topic of their own.
func (m *ConversationMemory) Commit(answer string, topic models.Topic, term, userMsg string) {
	m.state.LastAnswer = answer
	if topic != "" {
		m.state.LastTopic = topic
	}
	if term != "" {
		m.state.LastTerm = term
	}
	if userMsg != "" {
		m.state.Recent = append(m.state.Recent, userMsg)
		if len(m.state.Recent) > recentWindow {
			m.state.Recent = m.state.Recent[len(m.state.Recent)-recentWindow:]
		}
	}
}
