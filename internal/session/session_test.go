package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/einfachManu/marine-snow-tutor/internal/models"
)

func TestCommitAndRead(t *testing.T) {
	m := NewConversationMemory()

	m.Commit("erste Antwort", models.TopicFormation, "", "Wie entsteht Meeresschnee?")

	got := m.Read()
	assert.Equal(t, "erste Antwort", got.LastAnswer)
	assert.Equal(t, models.TopicFormation, got.LastTopic)
	assert.Equal(t, []string{"Wie entsteht Meeresschnee?"}, got.Recent)
}

func TestCommitPreservesTopicAndTerm(t *testing.T) {
	m := NewConversationMemory()
	m.Commit("a1", models.TopicDegradation, "Aggregat", "f1")

	// A follow-up without its own topic or term keeps the previous ones.
	m.Commit("a2", "", "", "f2")

	got := m.Read()
	assert.Equal(t, "a2", got.LastAnswer)
	assert.Equal(t, models.TopicDegradation, got.LastTopic)
	assert.Equal(t, "Aggregat", got.LastTerm)
}

func TestRecentWindowDropsOldest(t *testing.T) {
	m := NewConversationMemory()
	m.Commit("a1", "", "", "f1")
	m.Commit("a2", "", "", "f2")
	m.Commit("a3", "", "", "f3")

	assert.Equal(t, []string{"f2", "f3"}, m.Read().Recent)
}

func TestReadReturnsDetachedSnapshot(t *testing.T) {
	m := NewConversationMemory()
	m.Commit("a1", "", "", "f1")

	snap := m.Read()
	snap.Recent[0] = "mutated"
	snap.LastAnswer = "mutated"

	got := m.Read()
	assert.Equal(t, "a1", got.LastAnswer)
	assert.Equal(t, []string{"f1"}, got.Recent)
}

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()

	sess := r.Create(models.LevelFriendly)
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, models.LevelFriendly, sess.Level)
	assert.Equal(t, 1, r.Len())

	got, err := r.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	r.Delete(sess.ID)
	assert.Equal(t, 0, r.Len())

	_, err = r.Get(sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionTurnCounter(t *testing.T) {
	sess := New(models.LevelNeutral)
	assert.Equal(t, 1, sess.NextTurn())
	assert.Equal(t, 2, sess.NextTurn())
}
