package reporter

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/taskrank/internal/history"
	"github.com/ppiankov/taskrank/internal/scoring"
	"github.com/ppiankov/taskrank/internal/task"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

// Score bands used to color rankings.
const (
	BandHigh   = "high"
	BandMedium = "medium"
	BandLow    = "low"

	highThreshold   = 100
	mediumThreshold = 60
)

// Band classifies a score for display.
func Band(score float64) string {
	switch {
	case score >= highThreshold:
		return BandHigh
	case score >= mediumThreshold:
		return BandMedium
	default:
		return BandLow
	}
}

func bandColor(band string) string {
	switch band {
	case BandHigh:
		return colorRed
	case BandMedium:
		return colorYellow
	default:
		return colorGreen
	}
}

// TextReporter writes human-readable output to a writer.
type TextReporter struct {
	w     io.Writer
	color bool
}

// NewTextReporter creates a text reporter.
// If w is nil, defaults to os.Stdout.
// color enables ANSI codes.
func NewTextReporter(w io.Writer, color bool) *TextReporter {
	if w == nil {
		w = os.Stdout
	}
	return &TextReporter{w: w, color: color}
}

// PrintHeader writes the banner line for a report.
func (r *TextReporter) PrintHeader(report *task.Report) {
	fmt.Fprintf(r.w, "%staskrank%s — %d tasks, today %s", r.c(colorBold), r.c(colorReset), report.TotalTasks, report.Today)
	if len(report.Sources) > 0 {
		fmt.Fprintf(r.w, " %s(%s)%s", r.c(colorDim), strings.Join(report.Sources, ", "), r.c(colorReset))
	}
	fmt.Fprint(r.w, "\n\n")
}

// PrintRanking writes one card per ranked task. top limits the number of
// cards; zero or less prints all of them.
func (r *TextReporter) PrintRanking(report *task.Report, top int) {
	r.PrintHeader(report)

	results := report.Results
	if top > 0 && top < len(results) {
		results = results[:top]
	}
	for i, res := range results {
		r.printCard(i+1, res)
	}
	if len(results) < len(report.Results) {
		fmt.Fprintf(r.w, "  %s… %d more%s\n\n", r.c(colorDim), len(report.Results)-len(results), r.c(colorReset))
	}
	r.PrintCycles(report)
}

func (r *TextReporter) printCard(rank int, res task.ScoredTask) {
	band := Band(res.Score)
	fmt.Fprintf(r.w, "  %s%2d. %-40s %8s  %-6s%s\n",
		r.c(bandColor(band)), rank, res.DisplayTitle(), FormatScore(res.Score), strings.ToUpper(band), r.c(colorReset))
	if res.Explanation != "" {
		fmt.Fprintf(r.w, "      %s\n", res.Explanation)
	}
	fmt.Fprintf(r.w, "      %s%s%s\n\n", r.c(colorDim), DetailLine(res.Task), r.c(colorReset))
}

// PrintCycles writes a warning naming the tasks on a dependency cycle.
func (r *TextReporter) PrintCycles(report *task.Report) {
	if len(report.Cycles) == 0 {
		return
	}
	names := make([]string, 0, len(report.Cycles))
	titles := titlesByPosition(report)
	for _, pos := range report.Cycles {
		names = append(names, fmt.Sprintf("#%d %s", pos, titles[pos]))
	}
	fmt.Fprintf(r.w, "%s⚠ %d task(s) in circular dependencies:%s %s\n",
		r.c(colorYellow), len(report.Cycles), r.c(colorReset), strings.Join(names, ", "))
}

// titlesByPosition maps input positions back to titles.
func titlesByPosition(report *task.Report) map[int]string {
	m := make(map[int]string, len(report.Results))
	for _, res := range report.Results {
		m[res.Position] = res.DisplayTitle()
	}
	return m
}

// PrintSuggestions writes the top-N suggestion list.
func (r *TextReporter) PrintSuggestions(suggestions []task.Suggestion) {
	if len(suggestions) == 0 {
		fmt.Fprintln(r.w, "no tasks to suggest")
		return
	}
	fmt.Fprintf(r.w, "%sSuggested next:%s\n", r.c(colorCyan), r.c(colorReset))
	for i, s := range suggestions {
		fmt.Fprintf(r.w, "  %s%d. %s%s (%s)\n", r.c(bandColor(Band(s.Score))), i+1, s.Title, r.c(colorReset), FormatScore(s.Score))
		fmt.Fprintf(r.w, "     %s%s%s\n", r.c(colorDim), s.Explanation, r.c(colorReset))
	}
}

// ValidationSummary describes a loaded task set without scoring it.
type ValidationSummary struct {
	Sources      []string
	Tasks        int
	Dependencies int
	Issues       []scoring.Issue
}

// PrintValidation writes the result of `taskrank validate`.
func (r *TextReporter) PrintValidation(v ValidationSummary) {
	blocking := 0
	for _, is := range v.Issues {
		if is.Blocking() {
			blocking++
		}
	}
	if blocking > 0 {
		fmt.Fprintf(r.w, "%sinvalid:%s", r.c(colorRed), r.c(colorReset))
	} else {
		fmt.Fprintf(r.w, "%svalid:%s", r.c(colorGreen), r.c(colorReset))
	}
	fmt.Fprintf(r.w, " %d tasks, %d dependencies, %d issue(s)\n", v.Tasks, v.Dependencies, len(v.Issues))

	for _, is := range v.Issues {
		color := colorDim
		switch SARIFLevel(is.Rule) {
		case "error":
			color = colorRed
		case "warning":
			color = colorYellow
		}
		fmt.Fprintf(r.w, "  %s%-22s%s #%d %s: %s\n", r.c(color), is.Rule, r.c(colorReset), is.Position, is.Title, is.Message)
	}
}

// PrintRuns writes the recorded run list.
func (r *TextReporter) PrintRuns(runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(r.w, "no recorded runs")
		return
	}
	fmt.Fprintf(r.w, "%-36s  %-20s  %5s  %6s  %s\n", "RUN", "CREATED", "TASKS", "CYCLES", "SOURCE")
	for _, run := range runs {
		cycles := strconv.Itoa(run.CycleCount)
		if run.CycleCount > 0 {
			cycles = r.c(colorYellow) + cycles + r.c(colorReset)
		}
		fmt.Fprintf(r.w, "%-36s  %-20s  %5d  %6s  %s\n",
			run.ID, run.CreatedAt.Local().Format(time.DateTime), run.TaskCount, cycles, run.Source)
	}
}

// PrintRun writes one recorded run and its ranking.
func (r *TextReporter) PrintRun(run history.Run, scores []history.Score) {
	fmt.Fprintf(r.w, "%srun %s%s  %s  %d tasks", r.c(colorBold), run.ID, r.c(colorReset),
		run.CreatedAt.Local().Format(time.DateTime), run.TaskCount)
	if run.Source != "" {
		fmt.Fprintf(r.w, "  %s(%s)%s", r.c(colorDim), run.Source, r.c(colorReset))
	}
	fmt.Fprint(r.w, "\n\n")
	for _, s := range scores {
		fmt.Fprintf(r.w, "  %s%2d. %-40s %8s%s\n", r.c(bandColor(Band(s.Score))), s.Rank, s.Title, FormatScore(s.Score), r.c(colorReset))
		fmt.Fprintf(r.w, "      %s%s%s\n", r.c(colorDim), s.Explanation, r.c(colorReset))
	}
}

// FormatScore renders a score with at most two decimals.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// DetailLine renders the due date, effective effort and importance of t.
func DetailLine(t task.Task) string {
	due := t.DueDate
	if due == "" {
		due = "none"
	}
	est := effective(t.EstimatedHours, scoring.DefaultEstimatedHours)
	imp := effective(t.Importance, scoring.DefaultImportance)
	return fmt.Sprintf("Due: %s • Est: %sh • Importance: %s", due, est, imp)
}

func effective(n task.Number, def int) string {
	if n.Falsy() {
		return strconv.Itoa(def)
	}
	v, err := n.IntOr(def)
	if err != nil {
		return n.String()
	}
	return strconv.Itoa(v)
}

func (r *TextReporter) c(code string) string {
	if !r.color {
		return ""
	}
	return code
}
