package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ppiankov/taskrank/internal/reporter"
	"github.com/ppiankov/taskrank/internal/watch"
)

type watchOptions struct {
	poll     bool
	interval time.Duration
	debounce time.Duration
	top      int
	today    string
	tui      bool
	noColor  bool
	format   string
}

func newWatchCmd() *cobra.Command {
	var opts watchOptions

	cmd := &cobra.Command{
		Use:   "watch [file]",
		Short: "Re-rank a task file every time it changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, taskFiles(args)[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.poll, "poll", false, "poll the file instead of using filesystem events")
	cmd.Flags().DurationVar(&opts.interval, "interval", watch.DefaultPollInterval, "poll interval")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", watch.DefaultDebounce, "wait this long after the last change before re-ranking")
	cmd.Flags().IntVar(&opts.top, "top", 0, "show only the N highest-ranked tasks (0 = all)")
	cmd.Flags().StringVar(&opts.today, "today", "", "reference date YYYY-MM-DD (default: current date)")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "show the ranking in an interactive view")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	cmd.Flags().StringVar(&opts.format, "format", "text", "output format: text or json")

	return cmd
}

func runWatch(cmd *cobra.Command, path string, opts watchOptions) error {
	if path == "-" {
		return fmt.Errorf("watch needs a file, not stdin")
	}
	if opts.top < 0 {
		return fmt.Errorf("--top must not be negative, got %d", opts.top)
	}
	e, err := loadEnv(opts.today)
	if err != nil {
		return err
	}
	format, err := e.format(cmd, opts.format)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	w := &watch.Watcher{
		Path:         path,
		Debounce:     opts.debounce,
		Poll:         opts.poll,
		PollInterval: opts.interval,
	}
	out := cmd.OutOrStdout()

	if opts.tui {
		return watchTUI(ctx, cancel, w, e, out)
	}

	color := useColor(out, opts.noColor)
	w.OnChange = func(context.Context) error {
		report, err := buildReport(e, []string{path})
		if err != nil {
			return err
		}
		if format == "json" {
			return reporter.WriteJSON(out, topResults(report.Results, opts.top))
		}
		if color {
			fmt.Fprint(out, "\033[H\033[2J")
		}
		reporter.NewTextReporter(out, color).PrintRanking(report, opts.top)
		return nil
	}
	return w.Run(ctx)
}

// watchTUI feeds each refresh into a running ranking view. Quitting the view
// stops the watcher.
func watchTUI(ctx context.Context, cancel context.CancelFunc, w *watch.Watcher, e *env, out io.Writer) error {
	p := tea.NewProgram(reporter.NewRankingModel(nil), tea.WithAltScreen(), tea.WithOutput(out), tea.WithContext(ctx))
	w.OnChange = func(context.Context) error {
		report, err := buildReport(e, []string{w.Path})
		if err != nil {
			p.Send(reporter.ErrorMsg{Err: err})
			return err
		}
		p.Send(reporter.ReportMsg{Report: report})
		return nil
	}

	errCh := make(chan error, 1)
	go func() {
		err := w.Run(ctx)
		if err != nil {
			p.Quit()
		}
		errCh <- err
	}()

	_, runErr := p.Run()
	cancel()
	if err := <-errCh; err != nil {
		return err
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", runErr)
	}
	return nil
}
