// Package pipeline orchestrates one conversation turn: spelling
// normalization, intent classification, source gating, grounded generation,
// length conformance, style transformation, and memory commit. Every
// frontend (HTTP, CLI, MCP) goes through the Engine.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/einfachManu/marine-snow-tutor/internal/chatlog"
	"github.com/einfachManu/marine-snow-tutor/internal/conform"
	"github.com/einfachManu/marine-snow-tutor/internal/docindex"
	"github.com/einfachManu/marine-snow-tutor/internal/generator"
	"github.com/einfachManu/marine-snow-tutor/internal/intent"
	"github.com/einfachManu/marine-snow-tutor/internal/knowledge"
	"github.com/einfachManu/marine-snow-tutor/internal/metrics"
	"github.com/einfachManu/marine-snow-tutor/internal/models"
	"github.com/einfachManu/marine-snow-tutor/internal/oracle"
	"github.com/einfachManu/marine-snow-tutor/internal/selector"
	"github.com/einfachManu/marine-snow-tutor/internal/session"
	"github.com/einfachManu/marine-snow-tutor/internal/spell"
	"github.com/einfachManu/marine-snow-tutor/internal/style"
	"github.com/einfachManu/marine-snow-tutor/pkg/textutil"
	"github.com/einfachManu/marine-snow-tutor/pkg/xmlutil"
)

// generateTemperature keeps grounded answers near-deterministic while
// allowing mild phrasing variation.
const generateTemperature = 0.2

// systemPrompt carries the non-negotiable grounding rules for answer
// generation. Source gating happens before the model is called; the prompt
// reinforces it.
const systemPrompt = `You are a scientifically controlled tutor for the subject "marine snow" (Meeresschnee). You answer in the language of the user's question.

ABSOLUTE RULES:
- Use ONLY the source material provided below. No outside facts, no general world knowledge, even when correct.
- Paraphrase sources, never quote them verbatim.
- Return only the finished answer text: no explanations, no reasoning, no meta commentary, no mention of rules or character counts.`

// Params collects the Engine's collaborators. Retriever and Chatlog are
// optional; a nil Retriever degrades detail questions to the refusal path
// and a nil Chatlog disables logging.
type Params struct {
	KB        *knowledge.Base
	Generator generator.Generator
	Spell     *spell.Normalizer
	Intents   intent.Classifier
	Topics    *intent.TopicClassifier
	Selector  *selector.Selector
	Conformer *conform.Conformer
	Styler    *style.Transformer
	Retriever *docindex.Retriever
	Oracle    *oracle.Oracle
	Chatlog   chatlog.Sink
	Logger    *slog.Logger
}

// Engine runs the answer pipeline.
type Engine struct {
	kb        *knowledge.Base
	gen       generator.Generator
	spell     *spell.Normalizer
	intents   intent.Classifier
	topics    *intent.TopicClassifier
	sel       *selector.Selector
	conformer *conform.Conformer
	styler    *style.Transformer
	retriever *docindex.Retriever
	oracle    *oracle.Oracle
	chatlog   chatlog.Sink
	logger    *slog.Logger
}

// New creates an Engine from its collaborators.
func New(p Params) *Engine {
	cl := p.Chatlog
	if cl == nil {
		cl = chatlog.Nop{}
	}
	return &Engine{
		kb:        p.KB,
		gen:       p.Generator,
		spell:     p.Spell,
		intents:   p.Intents,
		topics:    p.Topics,
		sel:       p.Selector,
		conformer: p.Conformer,
		styler:    p.Styler,
		retriever: p.Retriever,
		oracle:    p.Oracle,
		chatlog:   cl,
		logger:    p.Logger,
	}
}

// TurnResult is the outcome of one turn.
type TurnResult struct {
	Reply  string        `json:"reply"`
	Intent models.Intent `json:"intent"`
	Topic  models.Topic  `json:"topic,omitempty"`
}

// HandleTurn processes one user message within a session. The reply is
// never empty: every failure path resolves to the level's fallback string.
// The returned error is non-nil only on context cancellation.
func (e *Engine) HandleTurn(ctx context.Context, sess *session.Session, userText string) (TurnResult, error) {
	sess.Lock()
	defer sess.Unlock()

	metrics.Inc(metrics.TurnsTotal)
	level := sess.Level
	mem := sess.Memory().Read()

	// Repetition requests return the previous answer byte for byte, with
	// no model involvement at all.
	if isRepeatRequest(userText) && mem.LastAnswer != "" {
		res := TurnResult{Reply: mem.LastAnswer, Intent: models.IntentFollowUp, Topic: mem.LastTopic}
		e.finishTurn(ctx, sess, userText, res)
		return res, nil
	}

	corrected := e.spell.Normalize(ctx, userText)

	classified, err := e.intents.Classify(ctx, corrected, mem)
	if err != nil {
		return TurnResult{}, fmt.Errorf("handling turn: %w", err)
	}
	e.logger.Debug("pipeline: classified turn",
		"session", sess.ID, "intent", classified, "input", textutil.Preview(corrected, 80))

	res, err := e.answer(ctx, classified, corrected, userText, level, mem)
	if err != nil {
		return TurnResult{}, err
	}

	e.finishTurn(ctx, sess, userText, res)
	return res, nil
}

// Answer runs a one-shot question in a throwaway session. It satisfies the
// validation harness's Answerer contract.
func (e *Engine) Answer(ctx context.Context, question string, level models.StyleLevel) (string, error) {
	sess := session.New(level)
	res, err := e.HandleTurn(ctx, sess, question)
	if err != nil {
		return "", err
	}
	return res.Reply, nil
}

// answer resolves the classified turn to a reply.
func (e *Engine) answer(ctx context.Context, it models.Intent, corrected, userText string, level models.StyleLevel, mem models.Memory) (TurnResult, error) {
	switch it {
	case models.IntentOutOfScope:
		metrics.Inc(metrics.OutOfScopeTotal)
		return TurnResult{Reply: e.kb.Fallback(level), Intent: it}, nil

	case models.IntentAffect:
		reply, err := e.styler.Affect(ctx, userText, level)
		if err != nil {
			if ctx.Err() != nil {
				return TurnResult{}, ctx.Err()
			}
			e.logger.Warn("pipeline: affect response failed, falling back", "error", err)
			metrics.Inc(metrics.FallbackTotal)
			reply = e.kb.Fallback(level)
		}
		return TurnResult{Reply: reply, Intent: it}, nil

	case models.IntentSelfIdentity:
		// The persona text is the answer; it only needs the level's tone.
		reply := e.styler.Rewrite(ctx, e.kb.Persona(level), level)
		return TurnResult{Reply: reply, Intent: it}, nil
	}

	topic := e.resolveTopic(it, corrected, mem)
	passage := e.retrievePassage(ctx, it, corrected)

	if it == models.IntentSpecificDetail && passage == "" {
		e.logger.Warn("pipeline: no passage for detail question, refusing")
		metrics.Inc(metrics.FallbackTotal)
		return TurnResult{Reply: e.kb.Fallback(level), Intent: it}, nil
	}

	sources := e.sel.Select(it, topic, passage, level, mem)

	raw, err := e.gen.Complete(ctx, systemPrompt, e.buildPrompt(it, corrected, sources, mem), generateTemperature)
	if err != nil {
		if ctx.Err() != nil {
			return TurnResult{}, ctx.Err()
		}
		e.logger.Warn("pipeline: generation failed, falling back", "intent", it, "error", err)
		metrics.Inc(metrics.FallbackTotal)
		return TurnResult{Reply: e.kb.Fallback(level), Intent: it, Topic: topic}, nil
	}

	if it == models.IntentCoreTopic || it == models.IntentSpecificDetail {
		raw = e.conformer.Conform(ctx, raw)
	}

	reply := e.styler.Rewrite(ctx, raw, level)

	if it == models.IntentCoreTopic && topic != "" {
		vr := e.oracle.Evaluate(reply, topic, level)
		e.logger.Debug("pipeline: answer validation",
			"topic", topic, "level", level,
			"length", vr.Length, "length_ok", vr.LengthOK,
			"keyword_ratio", vr.KeywordRatio, "emoji_count", vr.EmojiCount,
			"pronoun_ok", vr.PronounOK, "ok", vr.OK)
	}

	return TurnResult{Reply: reply, Intent: it, Topic: topic}, nil
}

// resolveTopic assigns a topic where one is needed: heuristically for core
// questions, inherited from memory for follow-ups.
func (e *Engine) resolveTopic(it models.Intent, corrected string, mem models.Memory) models.Topic {
	switch it {
	case models.IntentCoreTopic:
		topic, ok := e.topics.Classify(corrected)
		if !ok {
			e.logger.Debug("pipeline: no topic signal, defaulting", "topic", topic)
		}
		return topic
	case models.IntentFollowUp:
		return mem.LastTopic
	default:
		return ""
	}
}

// retrievePassage fetches the supporting passage for intents that may use
// one. Retrieval failure degrades to an empty passage.
func (e *Engine) retrievePassage(ctx context.Context, it models.Intent, corrected string) string {
	switch it {
	case models.IntentCoreTopic, models.IntentSpecificDetail, models.IntentFollowUp:
	default:
		return ""
	}
	if e.retriever == nil {
		return ""
	}

	passage, err := e.retriever.Passage(ctx, corrected)
	if err != nil {
		e.logger.Warn("pipeline: passage retrieval failed, continuing without", "error", err)
		return ""
	}
	return passage
}

// buildPrompt assembles the user prompt from the gated sources. User text
// and remembered answers are escaped before being embedded in the template.
func (e *Engine) buildPrompt(it models.Intent, corrected string, src selector.SourceSet, mem models.Memory) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "<user_input>%s</user_input>\n\n", xmlutil.Escape(corrected))

	if len(src.Units) > 0 {
		sb.WriteString("<information_units>\n")
		for _, u := range src.Units {
			fmt.Fprintf(&sb, "- %s\n", u)
		}
		sb.WriteString("</information_units>\n\n")
	}
	if src.Passage != "" {
		fmt.Fprintf(&sb, "<passage>%s</passage>\n\n", src.Passage)
	}
	if len(src.ScopeTopics) > 0 {
		sb.WriteString("<topics>\n")
		for _, t := range src.ScopeTopics {
			fmt.Fprintf(&sb, "- %s\n", t)
		}
		sb.WriteString("</topics>\n\n")
	}
	if src.Continuation != "" {
		fmt.Fprintf(&sb, "<last_answer>%s</last_answer>\n\n", xmlutil.Escape(src.Continuation))
	}

	switch it {
	case models.IntentCoreTopic:
		sb.WriteString("Answer the question using every information unit, paraphrased and woven into flowing prose. The passage, if present, may only guide phrasing; it adds no facts.")
	case models.IntentSpecificDetail:
		sb.WriteString("Answer the question using only the passage. Do not draw on anything else.")
	case models.IntentTermDefinition:
		sb.WriteString("Explain the meaning of the asked term in one to three sentences. No further detail.")
	case models.IntentFollowUp:
		if len(src.Units) > 0 {
			sb.WriteString("The question refers back to the previous exchange. Answer it from the information units, paraphrased.")
		} else {
			sb.WriteString("The question refers back to the previous answer. Rephrase or clarify that answer; add nothing new.")
		}
	case models.IntentScopeOverview:
		sb.WriteString("Give a short structured overview listing the topic areas above. No detail explanations.")
	}

	return sb.String()
}

// finishTurn commits memory and writes the chat log rows. Log failures are
// reported but never fail the turn.
func (e *Engine) finishTurn(ctx context.Context, sess *session.Session, userText string, res TurnResult) {
	term := ""
	if res.Intent == models.IntentTermDefinition {
		term = extractTerm(userText)
	}
	sess.Memory().Commit(res.Reply, res.Topic, term, userText)

	turn := sess.NextTurn()
	rows := []chatlog.Entry{
		{SessionID: sess.ID, Turn: turn, Role: "user", Message: userText, Level: sess.Level},
		{SessionID: sess.ID, Turn: turn, Role: "assistant", Message: res.Reply, Level: sess.Level, Intent: res.Intent},
	}
	for _, row := range rows {
		if err := e.chatlog.Record(ctx, row); err != nil {
			e.logger.Warn("pipeline: chat log write failed", "error", err)
		}
	}
}

// repeat request markers, German and English.
var repeatMarkers = []string{"wiederhol", "repeat"}

func isRepeatRequest(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range repeatMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// extractTerm pulls the asked-about term out of a definition question. It
// prefers a quoted span and otherwise takes the last word.
func extractTerm(text string) string {
	for _, quote := range []string{`"`, "„", "'"} {
		if start := strings.Index(text, quote); start >= 0 {
			rest := text[start+len(quote):]
			if end := strings.IndexAny(rest, `"'“`); end > 0 {
				return strings.TrimSpace(rest[:end])
			}
		}
	}

	cleaned := strings.TrimRight(strings.TrimSpace(text), "?!. ")
	fields := strings.Fields(cleaned)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
