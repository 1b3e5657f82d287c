package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/einfachManu/marine-snow-tutor/internal/docindex"
)

func ingestCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Index the source document into the vector store",
		Long: `Splits the source document into fragments, embeds them and writes them
to the document index. When the collection already contains points the
command is a no-op, so repeated runs are safe.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			if source == "" {
				source = cfg.Index.SourcePath
			}
			if source == "" {
				return fmt.Errorf("ingest: no source document; pass --source or set index.source_path")
			}

			idx, err := newIndex(logger)
			if err != nil {
				return fmt.Errorf("ingest: connecting to index: %w", err)
			}
			defer func() { _ = idx.Close() }()

			ing := docindex.NewIngestor(idx, newEmbedder(logger), cfg.Index.MinFragmentLen, logger)

			n, err := ing.IngestFile(ctx, source)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			if n == 0 {
				fmt.Println("Collection already populated, nothing ingested.")
			} else {
				fmt.Printf("Ingested %d fragments from %s\n", n, source)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "path to the source document (default: index.source_path)")
	return cmd
}
