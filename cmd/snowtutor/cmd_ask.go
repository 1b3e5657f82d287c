package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/einfachManu/marine-snow-tutor/internal/models"
)

func askCmd() *cobra.Command {
	var level int

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question and print the answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			if level < 0 {
				level = cfg.Tutor.DefaultLevel
			}
			lv := models.StyleLevel(level)
			if !lv.IsValid() {
				return fmt.Errorf("ask: level must be 0, 1 or 2, got %d", level)
			}

			eng, cleanup, err := newEngine(logger)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer cleanup()

			reply, err := eng.Answer(cmd.Context(), args[0], lv)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			fmt.Println(reply)
			return nil
		},
	}

	cmd.Flags().IntVar(&level, "level", -1, "style level 0-2 (default: configured level)")
	return cmd
}
