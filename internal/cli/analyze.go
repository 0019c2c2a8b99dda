package cli

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ppiankov/taskrank/internal/config"
	"github.com/ppiankov/taskrank/internal/history"
	"github.com/ppiankov/taskrank/internal/reporter"
	"github.com/ppiankov/taskrank/internal/task"
)

type analyzeOptions struct {
	format      string
	top         int
	today       string
	tui         bool
	record      bool
	historyDB   string
	failOnCycle bool
	noColor     bool
	output      string
}

func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze [file...]",
		Short: "Score and rank every task",
		Long: `Analyze loads one or more task files (JSON, YAML or TOML; "-" reads JSON
from stdin), scores every task and prints the ranking with an explanation
of each score. Files may be glob patterns.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, taskFiles(args), opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "text", "output format: text or json")
	cmd.Flags().IntVar(&opts.top, "top", 0, "show only the N highest-ranked tasks (0 = all)")
	cmd.Flags().StringVar(&opts.today, "today", "", "reference date YYYY-MM-DD (default: current date)")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "browse the ranking interactively")
	cmd.Flags().BoolVar(&opts.record, "record", false, "record this run in the history database")
	cmd.Flags().StringVar(&opts.historyDB, "db", "", "history database path (default .taskrank/history.db)")
	cmd.Flags().BoolVar(&opts.failOnCycle, "fail-on-cycle", false, "exit with code 3 when circular dependencies are found")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	cmd.Flags().StringVar(&opts.output, "output", "", "also write the full JSON report to this path")

	return cmd
}

func runAnalyze(cmd *cobra.Command, files []string, opts analyzeOptions) error {
	e, err := loadEnv(opts.today)
	if err != nil {
		return err
	}
	format, err := e.format(cmd, opts.format)
	if err != nil {
		return err
	}
	if opts.top < 0 {
		return fmt.Errorf("--top must not be negative, got %d", opts.top)
	}

	report, err := buildReport(e, files)
	if err != nil {
		return err
	}

	if opts.record || e.settings.RecordHistory {
		if err := recordRun(cmd.Context(), e.historyPath(opts.historyDB), report); err != nil {
			return err
		}
	}
	if opts.output != "" {
		if err := reporter.WriteJSONReport(report, opts.output); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	switch {
	case opts.tui:
		p := tea.NewProgram(reporter.NewRankingModel(report), tea.WithAltScreen(), tea.WithOutput(out))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("tui: %w", err)
		}
	case format == "json":
		if err := reporter.WriteJSON(out, topResults(report.Results, opts.top)); err != nil {
			return err
		}
	default:
		reporter.NewTextReporter(out, useColor(out, opts.noColor)).PrintRanking(report, opts.top)
	}

	if opts.failOnCycle && len(report.Cycles) > 0 {
		return &CycleError{Count: len(report.Cycles)}
	}
	return nil
}

// buildReport loads and analyzes files.
func buildReport(e *env, files []string) (*task.Report, error) {
	tf, paths, err := config.LoadAll(files)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	if len(paths) > 1 {
		slog.Info("loaded multiple task files", "files", len(paths), "total_tasks", len(tf.Tasks))
	}

	report, err := e.analyzer().Report(tf.Tasks)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	report.Sources = paths
	return report, nil
}

func recordRun(ctx context.Context, path string, report *task.Report) error {
	store, err := history.Open(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Record(ctx, report)
	if err != nil {
		return err
	}
	slog.Info("recorded run", "id", run.ID, "db", path)
	return nil
}

func topResults(results []task.ScoredTask, n int) []task.ScoredTask {
	if n <= 0 || n >= len(results) {
		return results
	}
	return results[:n]
}
