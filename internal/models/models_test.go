package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		name   string
		label  string
		want   Intent
		wantOK bool
	}{
		{"exact label", "core_topic", IntentCoreTopic, true},
		{"uppercase", "FOLLOW_UP", IntentFollowUp, true},
		{"surrounding whitespace", "  affect \n", IntentAffect, true},
		{"out of scope label", "out_of_scope", IntentOutOfScope, true},
		{"unknown label", "banana", IntentOutOfScope, false},
		{"empty", "", IntentOutOfScope, false},
		{"prose around label", "the intent is core_topic", IntentOutOfScope, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseIntent(tt.label)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestIntentIsValid(t *testing.T) {
	for _, in := range ValidIntents {
		assert.True(t, in.IsValid(), "intent %s", in)
	}
	assert.False(t, Intent("").IsValid())
	assert.False(t, Intent("smalltalk").IsValid())
}

func TestTopicIsValid(t *testing.T) {
	for _, topic := range ValidTopics {
		assert.True(t, topic.IsValid(), "topic %s", topic)
	}
	assert.False(t, Topic("weather").IsValid())
}

func TestStyleLevelIsValid(t *testing.T) {
	for _, level := range ValidStyleLevels {
		assert.True(t, level.IsValid(), "level %d", level)
	}
	assert.False(t, StyleLevel(-1).IsValid())
	assert.False(t, StyleLevel(3).IsValid())
}
