package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/einfachManu/marine-snow-tutor/internal/chatlog"
	"github.com/einfachManu/marine-snow-tutor/internal/conform"
	"github.com/einfachManu/marine-snow-tutor/internal/generator"
	"github.com/einfachManu/marine-snow-tutor/internal/intent"
	"github.com/einfachManu/marine-snow-tutor/internal/knowledge"
	"github.com/einfachManu/marine-snow-tutor/internal/models"
	"github.com/einfachManu/marine-snow-tutor/internal/oracle"
	"github.com/einfachManu/marine-snow-tutor/internal/selector"
	"github.com/einfachManu/marine-snow-tutor/internal/session"
	"github.com/einfachManu/marine-snow-tutor/internal/spell"
	"github.com/einfachManu/marine-snow-tutor/internal/style"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// rig wires an Engine with one scripted generator per concern so each test
// controls exactly the calls it cares about. Spelling is wired to fail,
// which passes the input through unchanged.
type rig struct {
	eng        *Engine
	intentGen  *generator.Scripted
	mainGen    *generator.Scripted
	conformGen *generator.Scripted
	styleGen   *generator.Scripted
	log        *recordingSink
}

func newRig(t *testing.T, intentLabels ...string) *rig {
	t.Helper()
	kb := knowledge.Default()
	logger := testLogger()

	r := &rig{
		intentGen:  &generator.Scripted{Responses: intentLabels},
		mainGen:    &generator.Scripted{Responses: []string{strings.Repeat("Meeresschnee besteht aus Aggregaten. ", 25)}},
		conformGen: &generator.Scripted{},
		styleGen:   &generator.Scripted{Err: errors.New("style offline")},
		log:        &recordingSink{},
	}

	r.eng = New(Params{
		KB:        kb,
		Generator: r.mainGen,
		Spell:     spell.New(&generator.Scripted{Err: errors.New("spell offline")}, logger),
		Intents:   intent.NewLLMClassifier(r.intentGen, logger),
		Topics:    intent.NewTopicClassifier(logger),
		Selector:  selector.New(kb),
		Conformer: conform.New(r.conformGen, 1, 10000, 5, logger),
		Styler:    style.New(r.styleGen, kb, logger),
		Oracle:    oracle.New(kb, 800, 1000),
		Chatlog:   r.log,
		Logger:    logger,
	})
	return r
}

// recordingSink captures chat log entries in memory.
type recordingSink struct {
	entries []chatlog.Entry
}

func (s *recordingSink) Record(_ context.Context, e chatlog.Entry) error {
	s.entries = append(s.entries, e)
	return nil
}

func (s *recordingSink) Close() error { return nil }

func TestOutOfScopeReturnsVerbatimFallback(t *testing.T) {
	r := newRig(t, "out_of_scope")
	sess := session.New(models.LevelNeutral)

	res, err := r.eng.HandleTurn(context.Background(), sess, "Wie wird das Wetter morgen?")
	require.NoError(t, err)

	assert.Equal(t, knowledge.Default().Fallback(models.LevelNeutral), res.Reply)
	assert.Equal(t, models.IntentOutOfScope, res.Intent)
	assert.Zero(t, r.mainGen.CallCount(), "refusals must not touch the generator")
	assert.Zero(t, r.styleGen.CallCount(), "refusal text is returned verbatim, never styled")
}

func TestRepeatRequestReturnsLastAnswerVerbatim(t *testing.T) {
	r := newRig(t, "core_topic")
	sess := session.New(models.LevelNeutral)

	first, err := r.eng.HandleTurn(context.Background(), sess, "Wie entsteht Meeresschnee?")
	require.NoError(t, err)
	intentCalls := r.intentGen.CallCount()
	mainCalls := r.mainGen.CallCount()

	second, err := r.eng.HandleTurn(context.Background(), sess, "Wiederhole das bitte.")
	require.NoError(t, err)

	assert.Equal(t, first.Reply, second.Reply, "repetition must be byte-identical")
	assert.Equal(t, models.IntentFollowUp, second.Intent)
	assert.Equal(t, intentCalls, r.intentGen.CallCount(), "no classification on the repeat fast path")
	assert.Equal(t, mainCalls, r.mainGen.CallCount(), "no generation on the repeat fast path")
}

func TestFollowUpInheritsTopicUnits(t *testing.T) {
	r := newRig(t, "core_topic", "follow_up")
	sess := session.New(models.LevelNeutral)

	_, err := r.eng.HandleTurn(context.Background(), sess, "Wie entsteht Meeresschnee?")
	require.NoError(t, err)
	assert.Equal(t, models.TopicFormation, sess.Memory().Read().LastTopic)

	_, err = r.eng.HandleTurn(context.Background(), sess, "Kannst du das genauer erklären?")
	require.NoError(t, err)

	calls := r.mainGen.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1].User, "Biologisch produzierte Aggregate",
		"follow-up must be grounded in the inherited topic's units")
}

func TestDetailQuestionWithoutPassageRefuses(t *testing.T) {
	r := newRig(t, "specific_detail")
	sess := session.New(models.LevelFriendly)

	res, err := r.eng.HandleTurn(context.Background(), sess, "Wie groß sind die Partikel genau?")
	require.NoError(t, err)

	assert.Equal(t, knowledge.Default().Fallback(models.LevelFriendly), res.Reply)
	assert.Zero(t, r.mainGen.CallCount(), "ungrounded detail questions must not reach the generator")
}

func TestAffectBypassesGenerationAndConformance(t *testing.T) {
	r := newRig(t, "affect")
	r.styleGen.Err = nil
	r.styleGen.Responses = []string{"Als Computerprogramm sind keine Emotionen vorhanden."}
	sess := session.New(models.LevelNeutral)

	res, err := r.eng.HandleTurn(context.Background(), sess, "Mir geht es heute nicht gut.")
	require.NoError(t, err)

	assert.Equal(t, "Als Computerprogramm sind keine Emotionen vorhanden.", res.Reply)
	assert.Zero(t, r.mainGen.CallCount())
	assert.Zero(t, r.conformGen.CallCount(), "affect responses are exempt from length rules")
}

func TestAffectErrorFallsBack(t *testing.T) {
	r := newRig(t, "affect")
	sess := session.New(models.LevelPersonal)

	res, err := r.eng.HandleTurn(context.Background(), sess, "Ich bin heute traurig.")
	require.NoError(t, err)

	assert.Equal(t, knowledge.Default().Fallback(models.LevelPersonal), res.Reply)
}

func TestGenerationErrorFallsBack(t *testing.T) {
	r := newRig(t, "core_topic")
	r.mainGen.Responses = nil
	r.mainGen.Err = errors.New("api down")
	sess := session.New(models.LevelNeutral)

	res, err := r.eng.HandleTurn(context.Background(), sess, "Was ist Meeresschnee?")
	require.NoError(t, err)

	assert.Equal(t, knowledge.Default().Fallback(models.LevelNeutral), res.Reply)
}

func TestSelfIdentityStylesPersona(t *testing.T) {
	r := newRig(t, "self_identity")
	r.styleGen.Err = nil
	r.styleGen.Responses = []string{"Ich bin AquaBot, dein Lernassistent."}
	sess := session.New(models.LevelFriendly)

	res, err := r.eng.HandleTurn(context.Background(), sess, "Wer bist du?")
	require.NoError(t, err)

	assert.Equal(t, "Ich bin AquaBot, dein Lernassistent.", res.Reply)
	assert.Zero(t, r.mainGen.CallCount(), "identity answers come from the persona text alone")

	styleCalls := r.styleGen.Calls()
	require.Len(t, styleCalls, 1)
	assert.Contains(t, styleCalls[0].User, "AquaBot")
}

func TestScopeOverviewPromptListsTopics(t *testing.T) {
	r := newRig(t, "scope_overview")
	sess := session.New(models.LevelNeutral)

	_, err := r.eng.HandleTurn(context.Background(), sess, "Was kann ich dich alles fragen?")
	require.NoError(t, err)

	calls := r.mainGen.Calls()
	require.Len(t, calls, 1)
	for _, title := range knowledge.Default().ScopeTopics() {
		assert.Contains(t, calls[0].User, title)
	}
}

func TestCoreTopicAnswersAreLengthConformed(t *testing.T) {
	r := newRig(t, "core_topic")
	r.mainGen.Responses = []string{"viel zu kurz"}
	r.conformGen.Responses = []string{strings.Repeat("k", 150)}

	kb := knowledge.Default()
	logger := testLogger()
	r.eng = New(Params{
		KB:        kb,
		Generator: r.mainGen,
		Spell:     spell.New(&generator.Scripted{Err: errors.New("spell offline")}, logger),
		Intents:   intent.NewLLMClassifier(r.intentGen, logger),
		Topics:    intent.NewTopicClassifier(logger),
		Selector:  selector.New(kb),
		Conformer: conform.New(r.conformGen, 100, 200, 5, logger),
		Styler:    style.New(r.styleGen, kb, logger),
		Oracle:    oracle.New(kb, 100, 200),
		Logger:    logger,
	})

	sess := session.New(models.LevelNeutral)
	res, err := r.eng.HandleTurn(context.Background(), sess, "Was ist Meeresschnee?")
	require.NoError(t, err)

	assert.Equal(t, strings.Repeat("k", 150), res.Reply)
	assert.Equal(t, 1, r.conformGen.CallCount())
}

func TestTurnCommitsMemoryAndLogsChat(t *testing.T) {
	r := newRig(t, "core_topic")
	sess := session.New(models.LevelNeutral)

	res, err := r.eng.HandleTurn(context.Background(), sess, "Wie entsteht Meeresschnee?")
	require.NoError(t, err)

	mem := sess.Memory().Read()
	assert.Equal(t, res.Reply, mem.LastAnswer)
	assert.Equal(t, models.TopicFormation, mem.LastTopic)
	assert.Equal(t, []string{"Wie entsteht Meeresschnee?"}, mem.Recent)

	require.Len(t, r.log.entries, 2)
	assert.Equal(t, "user", r.log.entries[0].Role)
	assert.Equal(t, "Wie entsteht Meeresschnee?", r.log.entries[0].Message)
	assert.Equal(t, "assistant", r.log.entries[1].Role)
	assert.Equal(t, res.Reply, r.log.entries[1].Message)
	assert.Equal(t, models.IntentCoreTopic, r.log.entries[1].Intent)
}

func TestAnswerRunsThrowawaySession(t *testing.T) {
	r := newRig(t, "core_topic")

	reply, err := r.eng.Answer(context.Background(), "Was ist Meeresschnee?", models.LevelNeutral)
	require.NoError(t, err)
	assert.NotEmpty(t, reply)
}

func TestTermDefinitionCommitsTerm(t *testing.T) {
	r := newRig(t, "term_definition")
	sess := session.New(models.LevelNeutral)

	_, err := r.eng.HandleTurn(context.Background(), sess, "Was bedeutet Aggregation?")
	require.NoError(t, err)

	assert.Equal(t, "Aggregation", sess.Memory().Read().LastTerm)
}
