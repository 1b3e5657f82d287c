package docindex

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/einfachManu/marine-snow-tutor/internal/embedder"
	"github.com/einfachManu/marine-snow-tutor/internal/models"
)

// DefaultMinFragmentLen is the minimum fragment length in characters;
// shorter lines are headings or noise and get skipped.
const DefaultMinFragmentLen = 50

// ingestConcurrency bounds the embedding fan-out during ingestion.
const ingestConcurrency = 4

// Ingestor populates an Index from a source document exactly once.
// Ingestion is idempotent: a collection that already holds passages is
// left untouched.
type Ingestor struct {
	idx         Index
	emb         embedder.Embedder
	minFragment int
	logger      *slog.Logger
}

// NewIngestor creates an Ingestor over the given index and embedder.
func NewIngestor(idx Index, emb embedder.Embedder, minFragment int, logger *slog.Logger) *Ingestor {
	if minFragment <= 0 {
		minFragment = DefaultMinFragmentLen
	}
	return &Ingestor{idx: idx, emb: emb, minFragment: minFragment, logger: logger}
}

// IngestFile splits the text document at path into paragraph fragments,
// embeds them concurrently, and stores them. Form feeds delimit pages,
// matching the output of common PDF-to-text extraction. Returns the number
// of fragments stored; 0 with a nil error means the collection was already
// populated.
func (ig *Ingestor) IngestFile(ctx context.Context, path string) (int, error) {
	if err := ig.idx.EnsureCollection(ctx); err != nil {
		return 0, fmt.Errorf("ingesting %s: %w", path, err)
	}

	count, err := ig.idx.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("ingesting %s: %w", path, err)
	}
	if count > 0 {
		ig.logger.Info("collection already populated, skipping ingestion", "passages", count)
		return 0, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("ingesting %s: %w", path, err)
	}

	fragments := ig.split(string(data))
	if len(fragments) == 0 {
		return 0, fmt.Errorf("ingesting %s: no fragments of at least %d characters found", path, ig.minFragment)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ingestConcurrency)
	for _, frag := range fragments {
		frag := frag
		g.Go(func() error {
			vec, err := ig.emb.Embed(gctx, frag.Text)
			if err != nil {
				return fmt.Errorf("embedding fragment on page %d: %w", frag.Page, err)
			}
			if err := ig.idx.Add(gctx, frag, vec); err != nil {
				return fmt.Errorf("storing fragment on page %d: %w", frag.Page, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("ingesting %s: %w", path, err)
	}

	ig.logger.Info("ingested document", "path", path, "fragments", len(fragments))
	return len(fragments), nil
}

// split breaks the document into per-line fragments of at least the
// minimum length, tracking 1-based page numbers across form feeds.
func (ig *Ingestor) split(text string) []models.Passage {
	var fragments []models.Passage
	for pageNum, page := range strings.Split(text, "\f") {
		for _, line := range strings.Split(page, "\n") {
			line = strings.TrimSpace(line)
			if utf8.RuneCountInString(line) < ig.minFragment {
				continue
			}
			fragments = append(fragments, models.Passage{
				ID:   uuid.NewString(),
				Text: line,
				Page: pageNum + 1,
			})
		}
	}
	return fragments
}
