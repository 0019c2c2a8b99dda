package reporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/ppiankov/taskrank/internal/scoring"
)

const (
	sarifSchema  = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json"
	sarifVersion = "2.1.0"
)

type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name string `json:"name"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

// SARIFLevel maps a check rule to a SARIF result level.
func SARIFLevel(rule string) string {
	switch rule {
	case scoring.RuleNonNumeric:
		return "error"
	case scoring.RuleCycle:
		return "warning"
	default:
		return "note"
	}
}

// WriteSARIF writes a SARIF v2.1.0 log for the given check issues. source
// is recorded as the artifact location when it names a file.
func WriteSARIF(w io.Writer, issues []scoring.Issue, source string) error {
	issues = slices.Clone(issues)
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Position < issues[j].Position
	})

	results := make([]sarifResult, 0, len(issues))
	for _, is := range issues {
		sr := sarifResult{
			RuleID:  is.Rule,
			Level:   SARIFLevel(is.Rule),
			Message: sarifMessage{Text: fmt.Sprintf("task %d (%s): %s", is.Position, is.Title, is.Message)},
		}
		if source != "" && source != "-" {
			sr.Locations = []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: filepath.ToSlash(source)},
				},
			}}
		}
		results = append(results, sr)
	}

	sarif := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{{
			Tool: sarifTool{
				Driver: sarifDriver{Name: "taskrank"},
			},
			Results: results,
		}},
	}
	return WriteJSON(w, sarif)
}

// WriteSARIFReport writes the SARIF log to path.
func WriteSARIFReport(issues []scoring.Issue, source, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write sarif: %w", err)
	}
	if err := WriteSARIF(f, issues, source); err != nil {
		_ = f.Close()
		return fmt.Errorf("write sarif: %w", err)
	}
	return f.Close()
}
