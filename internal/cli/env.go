package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/taskrank/internal/config"
	"github.com/ppiankov/taskrank/internal/history"
	"github.com/ppiankov/taskrank/internal/scoring"
)

// defaultTasksFile is read when a command gets no file arguments.
const defaultTasksFile = "tasks.json"

// env holds the settings and analyzer options shared by the ranking commands.
type env struct {
	settings *config.Settings
	opts     []scoring.Option
}

// loadEnv reads the config file and turns it into analyzer options. today
// overrides the pinned date from the config file.
func loadEnv(today string) (*env, error) {
	cfg, err := config.LoadSettings(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	opts := []scoring.Option{
		scoring.WithPolicy(cfg.ScoringPolicy()),
		scoring.WithLocation(loc),
	}
	if today == "" {
		today = cfg.Today
	}
	if today != "" {
		d, err := time.Parse(time.DateOnly, today)
		if err != nil {
			return nil, fmt.Errorf("--today must be YYYY-MM-DD, got %q", today)
		}
		opts = append(opts, scoring.WithToday(d))
	}
	return &env{settings: cfg, opts: opts}, nil
}

// analyzer builds an analyzer; extra options are applied last.
func (e *env) analyzer(extra ...scoring.Option) *scoring.Analyzer {
	opts := append(append([]scoring.Option(nil), e.opts...), extra...)
	return scoring.NewAnalyzer(opts...)
}

// format returns the --format flag, falling back to the config file.
func (e *env) format(cmd *cobra.Command, flag string) (string, error) {
	if !cmd.Flags().Changed("format") && e.settings.Format != "" {
		flag = e.settings.Format
	}
	switch flag {
	case "text", "json":
		return flag, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text or json)", flag)
	}
}

// historyPath returns the --db flag, the config file value, or the default.
func (e *env) historyPath(flag string) string {
	if flag != "" {
		return flag
	}
	if e.settings.HistoryDB != "" {
		return e.settings.HistoryDB
	}
	return history.DefaultPath()
}

func taskFiles(args []string) []string {
	if len(args) == 0 {
		return []string{defaultTasksFile}
	}
	return args
}

// useColor enables ANSI output only for an interactive stdout.
func useColor(w io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return w == io.Writer(os.Stdout) && isTerminal()
}

// isTerminal checks if stdout is a terminal.
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
