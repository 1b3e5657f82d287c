// Package docindex stores and retrieves document passages by vector
// similarity. It backs the specific-detail answer path and the phrasing
// support for core topic answers.
package docindex

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/einfachManu/marine-snow-tutor/internal/embedder"
	"github.com/einfachManu/marine-snow-tutor/internal/metrics"
	"github.com/einfachManu/marine-snow-tutor/internal/models"
)

// Index is the passage collection behind the retriever.
type Index interface {
	// EnsureCollection creates the vector collection if it doesn't exist.
	EnsureCollection(ctx context.Context) error

	// Count returns the number of stored passages.
	Count(ctx context.Context) (uint64, error)

	// Add stores a passage with its embedding vector.
	Add(ctx context.Context, passage models.Passage, vector []float32) error

	// Query returns the passages most similar to the vector, best first.
	Query(ctx context.Context, vector []float32, limit uint64) ([]models.Passage, error)

	// Close cleans up resources.
	Close() error
}

// Retriever embeds a query and fetches the single best passage for it.
type Retriever struct {
	idx    Index
	emb    embedder.Embedder
	logger *slog.Logger
}

// NewRetriever creates a Retriever over the given index and embedder.
func NewRetriever(idx Index, emb embedder.Embedder, logger *slog.Logger) *Retriever {
	return &Retriever{idx: idx, emb: emb, logger: logger}
}

// Passage returns the text of the best-matching passage, or "" when the
// collection holds nothing relevant. Errors are returned so the caller can
// decide how the turn degrades.
func (r *Retriever) Passage(ctx context.Context, query string) (string, error) {
	vec, err := r.emb.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("retrieving passage: embedding query: %w", err)
	}

	passages, err := r.idx.Query(ctx, vec, 1)
	if err != nil {
		return "", fmt.Errorf("retrieving passage: %w", err)
	}
	if len(passages) == 0 {
		metrics.Inc(metrics.RetrievalEmptyTotal)
		r.logger.Debug("docindex: no passage found for query")
		return "", nil
	}

	r.logger.Debug("docindex: retrieved passage",
		"id", passages[0].ID, "page", passages[0].Page, "score", passages[0].Score)
	return passages[0].Text, nil
}
