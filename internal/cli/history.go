package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/taskrank/internal/history"
	"github.com/ppiankov/taskrank/internal/reporter"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit   int
		dbPath  string
		format  string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded analyze runs",
		Long: `History lists runs recorded with "analyze --record" (or record_history in
the config file), newest first. Use "history show <run-id>" to print the
ranking of one run; a unique id prefix is enough.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv("")
			if err != nil {
				return err
			}
			format, err := e.format(cmd, format)
			if err != nil {
				return err
			}

			store, err := history.Open(cmd.Context(), e.historyPath(dbPath))
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				if runs == nil {
					runs = []history.Run{}
				}
				return reporter.WriteJSON(out, runs)
			}
			reporter.NewTextReporter(out, useColor(out, noColor)).PrintRuns(runs)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "history database path (default .taskrank/history.db)")
	cmd.PersistentFlags().StringVar(&format, "format", "text", "output format: text or json")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list (0 = all)")

	cmd.AddCommand(newHistoryShowCmd(&dbPath, &format, &noColor))
	return cmd
}

func newHistoryShowCmd(dbPath, format *string, noColor *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the ranking of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv("")
			if err != nil {
				return err
			}
			f, err := e.format(cmd, *format)
			if err != nil {
				return err
			}

			store, err := history.Open(cmd.Context(), e.historyPath(*dbPath))
			if err != nil {
				return err
			}
			defer store.Close()

			run, scores, err := store.Scores(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("history show: %w", err)
			}

			out := cmd.OutOrStdout()
			if f == "json" {
				return reporter.WriteJSON(out, struct {
					history.Run
					Scores []history.Score `json:"scores"`
				}{run, scores})
			}
			reporter.NewTextReporter(out, useColor(out, *noColor)).PrintRun(run, scores)
			return nil
		},
	}
}
