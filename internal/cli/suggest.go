package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/taskrank/internal/config"
	"github.com/ppiankov/taskrank/internal/reporter"
	"github.com/ppiankov/taskrank/internal/scoring"
)

func newSuggestCmd() *cobra.Command {
	var (
		top     int
		format  string
		today   string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "suggest [file...]",
		Short: "Show the tasks to work on next",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(today)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("top") && e.settings.TopN > 0 {
				top = e.settings.TopN
			}
			if top < 0 {
				return fmt.Errorf("--top must not be negative, got %d", top)
			}
			format, err := e.format(cmd, format)
			if err != nil {
				return err
			}

			tf, _, err := config.LoadAll(taskFiles(args))
			if err != nil {
				return fmt.Errorf("load tasks: %w", err)
			}
			suggestions, err := e.analyzer().SuggestTop(tf.Tasks, top)
			if err != nil {
				return fmt.Errorf("analyze: %w", err)
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				return reporter.WriteJSON(out, suggestions)
			}
			reporter.NewTextReporter(out, useColor(out, noColor)).PrintSuggestions(suggestions)
			return nil
		},
	}

	cmd.Flags().IntVarP(&top, "top", "n", scoring.DefaultTopN, "number of suggestions")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	cmd.Flags().StringVar(&today, "today", "", "reference date YYYY-MM-DD (default: current date)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	return cmd
}
