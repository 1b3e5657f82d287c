package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/einfachManu/marine-snow-tutor/internal/knowledge"
	"github.com/einfachManu/marine-snow-tutor/internal/oracle"
)

func validateCmd() *cobra.Command {
	var (
		cases  int
		seed   int64
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run the automated validation harness against the live pipeline",
		Long: `Samples random questions from the built-in test corpus, answers each one
through the full pipeline at a random style level, and checks every answer
against the policy: length band, keyword coverage, emoji caps and pronoun
rules. Prints the aggregate pass rate.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			eng, cleanup, err := newEngine(logger)
			if err != nil {
				return fmt.Errorf("validate: %w", err)
			}
			defer cleanup()

			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			o := oracle.New(knowledge.Default(), cfg.Tutor.MinChars, cfg.Tutor.MaxChars)
			h := oracle.NewHarness(o, eng, seed, logger)

			report, err := h.RunBulk(ctx, cases)
			if err != nil {
				return fmt.Errorf("validate: %w", err)
			}

			if asJSON {
				out, marshalErr := json.MarshalIndent(report, "", "  ")
				if marshalErr != nil {
					return fmt.Errorf("validate: marshaling report: %w", marshalErr)
				}
				fmt.Println(string(out))
				return nil
			}

			for _, c := range report.Cases {
				status := "PASS"
				if c.Err != "" || !c.Result.OK {
					status = "FAIL"
				}
				fmt.Printf("[%s] level=%d topic=%s  %s\n", status, c.Level, c.Topic, c.Question)
			}
			fmt.Printf("\n%d/%d passed (%.0f%%)\n", report.Passed, report.Passed+report.Failed, report.PassRate*100)
			return nil
		},
	}

	cmd.Flags().IntVar(&cases, "cases", 20, "number of sampled test cases")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default: current time)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the full report as JSON")
	return cmd
}
