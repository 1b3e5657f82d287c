package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/einfachManu/marine-snow-tutor/internal/knowledge"
	"github.com/einfachManu/marine-snow-tutor/internal/models"
	"github.com/einfachManu/marine-snow-tutor/internal/session"
)

func chatCmd() *cobra.Command {
	var level int

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive tutoring session on the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			if level < 0 {
				level = cfg.Tutor.DefaultLevel
			}
			lv := models.StyleLevel(level)
			if !lv.IsValid() {
				return fmt.Errorf("chat: level must be 0, 1 or 2, got %d", level)
			}

			eng, cleanup, err := newEngine(logger)
			if err != nil {
				return fmt.Errorf("chat: %w", err)
			}
			defer cleanup()

			kb := knowledge.Default()
			sess := session.New(lv)

			fmt.Printf("%s %s\n\n", kb.Avatar(lv), kb.Greeting(lv))

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "/quit" || line == "/exit" {
					break
				}

				fmt.Println(kb.SpinnerText(lv))

				res, turnErr := eng.HandleTurn(ctx, sess, line)
				if turnErr != nil {
					return fmt.Errorf("chat: %w", turnErr)
				}

				fmt.Printf("\n%s %s\n\n", kb.Avatar(lv), res.Reply)
			}

			return scanner.Err()
		},
	}

	cmd.Flags().IntVar(&level, "level", -1, "style level 0-2 (default: configured level)")
	return cmd
}
