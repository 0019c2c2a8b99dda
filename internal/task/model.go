package task

import (
	"encoding/json"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultTitle is reported for tasks that arrive without a title.
const DefaultTitle = "Untitled"

// Task is a single entry of a task list as supplied by the user.
// Dependencies are positions in the list passed to one analysis call, not
// stable identifiers. ID and DependsOn are the stable alternative; they are
// translated to positions by ResolveDependsOn before analysis.
type Task struct {
	ID             string     `json:"id,omitempty" yaml:"id,omitempty"`
	Title          string     `json:"title" yaml:"title"`
	DueDate        string     `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	Importance     Number     `json:"importance,omitzero" yaml:"importance,omitempty"`
	EstimatedHours Number     `json:"estimated_hours,omitzero" yaml:"estimated_hours,omitempty"`
	Dependencies   []int      `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	DependsOn      StringList `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

// Clone returns a copy of t that shares no slices with the original.
func (t Task) Clone() Task {
	t.Dependencies = slices.Clone(t.Dependencies)
	t.DependsOn = slices.Clone(t.DependsOn)
	return t
}

// DisplayTitle returns the title, or DefaultTitle when it is empty.
func (t Task) DisplayTitle() string {
	if t.Title == "" {
		return DefaultTitle
	}
	return t.Title
}

// ScoredTask is a task annotated with its priority score and the factors
// that produced it.
type ScoredTask struct {
	Task        `yaml:",inline"`
	Score       float64 `json:"score" yaml:"score"`
	Explanation string  `json:"explanation" yaml:"explanation"`

	Position int `json:"-" yaml:"-"` // index in the analyzed list
}

// Suggestion is the compact projection of a ScoredTask.
type Suggestion struct {
	Title       string  `json:"title"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// TaskFile is the top-level structure of a task list file. A file may also
// hold a bare array of tasks; loaders normalize both forms into TaskFile.
type TaskFile struct {
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Tasks       []Task `json:"tasks" yaml:"tasks"`

	Path string `json:"-" yaml:"-"` // populated by the loader
}

// Report is the result of one analysis run.
type Report struct {
	RunID      string       `json:"run_id"`
	Timestamp  time.Time    `json:"timestamp"`
	Today      string       `json:"today"`
	Sources    []string     `json:"sources,omitempty"`
	TotalTasks int          `json:"total_tasks"`
	Cycles     []int        `json:"cycles,omitempty"` // positions on a dependency cycle
	Results    []ScoredTask `json:"results"`
}

// StringList accepts either a single string or a list of strings.
// String: "depends_on": "task-a" → []string{"task-a"}
// Array:  "depends_on": ["task-a", "task-b"] → []string{"task-a", "task-b"}
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}

	// Try string first.
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "" {
			*l = StringList{s}
		} else {
			*l = nil
		}
		return nil
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	*l = arr
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || value.Value == "" {
			*l = nil
			return nil
		}
		*l = StringList{value.Value}
		return nil
	default:
		var arr []string
		if err := value.Decode(&arr); err != nil {
			return err
		}
		*l = arr
		return nil
	}
}
