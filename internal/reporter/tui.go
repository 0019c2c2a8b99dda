package reporter

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/taskrank/internal/task"
)

// TUI styles
var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	highStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	mediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	lowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // gray
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// ReportMsg replaces the report shown by a running RankingModel.
type ReportMsg struct {
	Report *task.Report
}

// ErrorMsg shows a refresh failure without dropping the last good report.
type ErrorMsg struct {
	Err error
}

// RankingModel is the Bubbletea model for browsing a ranking.
type RankingModel struct {
	report   *task.Report
	err      error
	cursor   int
	offset   int
	expanded map[int]bool // keyed by result index
	width    int
	height   int
}

// NewRankingModel creates a ranking browser. report may be nil until the
// first ReportMsg arrives.
func NewRankingModel(report *task.Report) RankingModel {
	return RankingModel{
		report:   report,
		expanded: make(map[int]bool),
	}
}

// Init implements tea.Model.
func (m RankingModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m RankingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit

		case "j", "down":
			m.move(1)

		case "k", "up":
			m.move(-1)

		case "g", "home":
			m.cursor = 0

		case "G", "end":
			m.cursor = max(0, m.count()-1)

		case "pgdown":
			m.move(m.visibleRows())

		case "pgup":
			m.move(-m.visibleRows())

		case "enter", " ":
			if m.count() > 0 {
				m.expanded[m.cursor] = !m.expanded[m.cursor]
			}
		}
		m.clampOffset()

	case ReportMsg:
		m.report = msg.Report
		m.err = nil
		m.expanded = make(map[int]bool)
		if m.cursor >= m.count() {
			m.cursor = max(0, m.count()-1)
		}
		m.clampOffset()

	case ErrorMsg:
		m.err = msg.Err

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampOffset()
	}

	return m, nil
}

func (m RankingModel) count() int {
	if m.report == nil {
		return 0
	}
	return len(m.report.Results)
}

func (m *RankingModel) move(n int) {
	m.cursor += n
	if m.cursor >= m.count() {
		m.cursor = m.count() - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m RankingModel) visibleRows() int {
	// header(2) + status(1) + help(1) = 4 reserved lines
	avail := m.height - 4
	if avail < 3 {
		return 3
	}
	return avail
}

// clampOffset keeps the cursor inside the scroll window.
func (m *RankingModel) clampOffset() {
	vis := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+vis {
		m.offset = m.cursor - vis + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// View implements tea.Model.
func (m RankingModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	if m.report == nil {
		b.WriteString(headerStyle.Render("taskrank — waiting for tasks"))
		b.WriteString("\n")
	} else {
		header := fmt.Sprintf("taskrank — %d tasks, today %s", m.report.TotalTasks, m.report.Today)
		if n := len(m.report.Cycles); n > 0 {
			header += "  " + mediumStyle.Render(fmt.Sprintf("⚠ %d in cycles", n))
		}
		b.WriteString(headerStyle.Render(header))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errStyle.Render("  refresh failed: " + m.err.Error()))
	}
	b.WriteString("\n")

	lines := m.buildLines()
	vis := m.visibleRows()
	used := 0
	for _, l := range lines {
		if l.index < m.offset {
			continue
		}
		if used >= vis {
			break
		}
		b.WriteString(l.text)
		b.WriteString("\n")
		used++
	}
	for i := used; i < vis; i++ {
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("  ↑↓/jk: move  g/G: top/bottom  enter: details  q: quit"))
	return b.String()
}

type viewLine struct {
	index int // result the line belongs to
	text  string
}

func (m RankingModel) buildLines() []viewLine {
	if m.report == nil {
		return nil
	}
	var lines []viewLine
	for i, res := range m.report.Results {
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("▸ ")
		}
		row := fmt.Sprintf("%2d. %-40s %8s", i+1, truncate(res.DisplayTitle(), 40), FormatScore(res.Score))
		lines = append(lines, viewLine{i, marker + bandStyle(Band(res.Score)).Render(row)})

		if m.expanded[i] {
			for _, part := range strings.Split(res.Explanation, "; ") {
				if part == "" {
					continue
				}
				lines = append(lines, viewLine{i, "      " + part})
			}
			lines = append(lines, viewLine{i, "      " + dimStyle.Render(DetailLine(res.Task))})
		}
	}
	return lines
}

func bandStyle(band string) lipgloss.Style {
	switch band {
	case BandHigh:
		return highStyle
	case BandMedium:
		return mediumStyle
	default:
		return lowStyle
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
