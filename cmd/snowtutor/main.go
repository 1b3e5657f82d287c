package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/einfachManu/marine-snow-tutor/internal/chatlog"
	"github.com/einfachManu/marine-snow-tutor/internal/config"
	"github.com/einfachManu/marine-snow-tutor/internal/conform"
	"github.com/einfachManu/marine-snow-tutor/internal/docindex"
	"github.com/einfachManu/marine-snow-tutor/internal/embedder"
	"github.com/einfachManu/marine-snow-tutor/internal/generator"
	"github.com/einfachManu/marine-snow-tutor/internal/intent"
	"github.com/einfachManu/marine-snow-tutor/internal/knowledge"
	"github.com/einfachManu/marine-snow-tutor/internal/models"
	"github.com/einfachManu/marine-snow-tutor/internal/oracle"
	"github.com/einfachManu/marine-snow-tutor/internal/pipeline"
	"github.com/einfachManu/marine-snow-tutor/internal/selector"
	"github.com/einfachManu/marine-snow-tutor/internal/spell"
	"github.com/einfachManu/marine-snow-tutor/internal/style"
)

var cfg *config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:   "snowtutor",
		Short: "snowtutor — policy-constrained tutoring chatbot for marine snow",
		Long:  "snowtutor answers questions about marine snow strictly from curated course material, with controlled answer length, configurable persona levels and an automated validation harness.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
	}

	rootCmd.AddCommand(
		serveCmd(),
		chatCmd(),
		askCmd(),
		ingestCmd(),
		validateCmd(),
		topicsCmd(),
		mcpCmd(),
	)

	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil && cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func newGenerator(model string, logger *slog.Logger) (generator.Generator, error) {
	if cfg.Anthropic.APIKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
	}
	return generator.NewClaudeGenerator(cfg.Anthropic.APIKey, model, logger), nil
}

func newEmbedder(logger *slog.Logger) embedder.Embedder {
	if cfg.Embedder.Provider == "openai" {
		return embedder.NewOpenAIEmbedder(
			cfg.Embedder.APIKey,
			cfg.Embedder.Model,
			int(cfg.Embedder.Dimension),
			logger,
		)
	}
	return embedder.NewOllamaEmbedder(
		cfg.Embedder.BaseURL,
		cfg.Embedder.Model,
		int(cfg.Embedder.Dimension),
		logger,
	)
}

func newIndex(logger *slog.Logger) (docindex.Index, error) {
	return docindex.NewQdrantIndex(
		cfg.Qdrant.Host,
		cfg.Qdrant.GRPCPort,
		cfg.Qdrant.Collection,
		cfg.Embedder.Dimension,
		cfg.Qdrant.UseTLS,
		logger,
	)
}

// newRetriever connects to the document index. When the index is down the
// tutor still runs; detail questions then resolve to the refusal response.
func newRetriever(logger *slog.Logger) *docindex.Retriever {
	idx, err := newIndex(logger)
	if err != nil {
		logger.Warn("document index unavailable, running without passage retrieval", "error", err)
		return nil
	}
	return docindex.NewRetriever(idx, newEmbedder(logger), logger)
}

func newChatlog(logger *slog.Logger) chatlog.Sink {
	if !cfg.Chatlog.Enabled {
		return chatlog.Nop{}
	}
	sink, err := chatlog.Open(cfg.Chatlog.Path, logger)
	if err != nil {
		logger.Warn("chat log unavailable, logging disabled", "path", cfg.Chatlog.Path, "error", err)
		return chatlog.Nop{}
	}
	return sink
}

// newEngine wires the full pipeline. The returned cleanup closes the chat
// log and must be called when the command exits.
func newEngine(logger *slog.Logger) (*pipeline.Engine, func(), error) {
	gen, err := newGenerator(cfg.Anthropic.Model, logger)
	if err != nil {
		return nil, nil, err
	}

	spellModel := cfg.Anthropic.SpellModel
	if spellModel == "" {
		spellModel = cfg.Anthropic.Model
	}
	spellGen, err := newGenerator(spellModel, logger)
	if err != nil {
		return nil, nil, err
	}

	kb := knowledge.Default()
	cl := newChatlog(logger)

	eng := pipeline.New(pipeline.Params{
		KB:        kb,
		Generator: gen,
		Spell:     spell.New(spellGen, logger),
		Intents:   intent.NewLLMClassifier(gen, logger),
		Topics:    intent.NewTopicClassifier(logger),
		Selector:  selector.New(kb),
		Conformer: conform.New(gen, cfg.Tutor.MinChars, cfg.Tutor.MaxChars, cfg.Tutor.MaxLengthAttempts, logger),
		Styler:    style.New(gen, kb, logger),
		Retriever: newRetriever(logger),
		Oracle:    oracle.New(kb, cfg.Tutor.MinChars, cfg.Tutor.MaxChars),
		Chatlog:   cl,
		Logger:    logger,
	})

	cleanup := func() { _ = cl.Close() }
	return eng, cleanup, nil
}

func defaultLevel() models.StyleLevel {
	return models.StyleLevel(cfg.Tutor.DefaultLevel)
}
