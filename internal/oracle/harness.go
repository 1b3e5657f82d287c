package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/einfachManu/marine-snow-tutor/internal/models"
)

// Answerer produces one answer for a standalone question. The pipeline
// engine satisfies this; tests plug in scripted implementations.
type Answerer interface {
	Answer(ctx context.Context, question string, level models.StyleLevel) (string, error)
}

// CaseResult is the outcome of one validated question.
type CaseResult struct {
	Topic    models.Topic            `json:"topic"`
	Question string                  `json:"question"`
	Level    models.StyleLevel       `json:"level"`
	Answer   string                  `json:"answer"`
	Result   models.ValidationResult `json:"result"`
	Err      string                  `json:"error,omitempty"`
}

// Report aggregates a bulk run.
type Report struct {
	Cases    []CaseResult `json:"cases"`
	Passed   int          `json:"passed"`
	Failed   int          `json:"failed"`
	PassRate float64      `json:"pass_rate"`
}

// Harness drives the corpus through an Answerer and validates every answer.
type Harness struct {
	oracle   *Oracle
	answerer Answerer
	rng      *rand.Rand
	logger   *slog.Logger
}

// NewHarness creates a Harness. seed fixes the question/level sampling for
// reproducible runs.
func NewHarness(o *Oracle, a Answerer, seed int64, logger *slog.Logger) *Harness {
	return &Harness{
		oracle:   o,
		answerer: a,
		rng:      rand.New(rand.NewSource(seed)),
		logger:   logger,
	}
}

// RunSingle samples one question and level, answers it, and validates the
// answer.
func (h *Harness) RunSingle(ctx context.Context) (CaseResult, error) {
	topics := CorpusTopics()
	topic := topics[h.rng.Intn(len(topics))]
	questions := Corpus[topic]
	question := questions[h.rng.Intn(len(questions))]
	level := models.ValidStyleLevels[h.rng.Intn(len(models.ValidStyleLevels))]

	cr := CaseResult{Topic: topic, Question: question, Level: level}

	answer, err := h.answerer.Answer(ctx, question, level)
	if err != nil {
		if ctx.Err() != nil {
			return cr, ctx.Err()
		}
		cr.Err = err.Error()
		return cr, nil
	}

	cr.Answer = answer
	cr.Result = h.oracle.Evaluate(answer, topic, level)
	return cr, nil
}

// RunBulk runs n sampled cases sequentially and aggregates the results.
// Cases that error count as failed; the run only aborts on context
// cancellation.
func (h *Harness) RunBulk(ctx context.Context, n int) (Report, error) {
	if n <= 0 {
		return Report{}, fmt.Errorf("bulk run: case count must be positive, got %d", n)
	}

	report := Report{Cases: make([]CaseResult, 0, n)}
	for i := 0; i < n; i++ {
		cr, err := h.RunSingle(ctx)
		if err != nil {
			return report, fmt.Errorf("bulk run: case %d: %w", i+1, err)
		}

		ok := cr.Err == "" && cr.Result.OK
		if ok {
			report.Passed++
		} else {
			report.Failed++
		}
		report.Cases = append(report.Cases, cr)

		h.logger.Info("validation case",
			"case", i+1, "topic", cr.Topic, "level", cr.Level,
			"length", cr.Result.Length, "length_ok", cr.Result.LengthOK,
			"keyword_ratio", cr.Result.KeywordRatio, "keyword_ok", cr.Result.KeywordOK,
			"emojis", cr.Result.EmojiCount, "emoji_ok", cr.Result.EmojiOK,
			"pronoun_ok", cr.Result.PronounOK, "passed", ok)
	}

	report.PassRate = float64(report.Passed) / float64(n)
	return report, nil
}
