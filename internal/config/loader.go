package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/taskrank/internal/task"
)

// StdinPath is the path that makes Load read JSON from standard input.
const StdinPath = "-"

// stdin is swapped out by tests.
var stdin io.Reader = os.Stdin

// Load reads a task list file. The format is chosen by extension: .yaml and
// .yml are YAML, .toml is TOML, anything else is JSON. A file may hold a
// bare array of tasks or an object with a "tasks" key.
func Load(path string) (*task.TaskFile, error) {
	var (
		data []byte
		err  error
	)
	if path == StdinPath {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read tasks file: %w", err)
	}

	tf, err := Parse(data, formatOf(path))
	if err != nil {
		return nil, fmt.Errorf("parse tasks file %s: %w", path, err)
	}
	tf.Path = path

	if len(tf.Tasks) == 0 {
		return nil, fmt.Errorf("tasks file %s contains no tasks", path)
	}
	return tf, nil
}

// Format identifies a task file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

func formatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Parse decodes a task list in the given format.
func Parse(data []byte, format Format) (*task.TaskFile, error) {
	switch format {
	case FormatYAML:
		return parseYAML(data)
	case FormatTOML:
		return parseTOML(data)
	default:
		return parseJSON(data)
	}
}

func parseJSON(data []byte) (*task.TaskFile, error) {
	data = bytes.TrimSpace(data)
	if bytes.HasPrefix(data, []byte("[")) {
		var tasks []task.Task
		if err := json.Unmarshal(data, &tasks); err != nil {
			return nil, err
		}
		return &task.TaskFile{Tasks: tasks}, nil
	}
	var tf task.TaskFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, err
	}
	return &tf, nil
}

func parseYAML(data []byte) (*task.TaskFile, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return &task.TaskFile{}, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.SequenceNode {
		var tasks []task.Task
		if err := root.Decode(&tasks); err != nil {
			return nil, err
		}
		return &task.TaskFile{Tasks: tasks}, nil
	}
	var tf task.TaskFile
	if err := root.Decode(&tf); err != nil {
		return nil, err
	}
	return &tf, nil
}

// tomlTask mirrors task.Task with loosely typed fields; go-toml hands
// numbers, strings and booleans back as int64, float64, string and bool.
type tomlTask struct {
	ID             string `toml:"id"`
	Title          string `toml:"title"`
	DueDate        any    `toml:"due_date"`
	Importance     any    `toml:"importance"`
	EstimatedHours any    `toml:"estimated_hours"`
	Dependencies   []int  `toml:"dependencies"`
	DependsOn      any    `toml:"depends_on"`
}

type tomlFile struct {
	Description string     `toml:"description"`
	Tasks       []tomlTask `toml:"tasks"`
}

func parseTOML(data []byte) (*task.TaskFile, error) {
	var f tomlFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	tf := &task.TaskFile{Description: f.Description}
	for i, t := range f.Tasks {
		dependsOn, err := stringList(t.DependsOn)
		if err != nil {
			return nil, fmt.Errorf("task %d depends_on: %w", i, err)
		}
		tf.Tasks = append(tf.Tasks, task.Task{
			ID:             t.ID,
			Title:          t.Title,
			DueDate:        dateString(t.DueDate),
			Importance:     task.NumberOf(t.Importance),
			EstimatedHours: task.NumberOf(t.EstimatedHours),
			Dependencies:   t.Dependencies,
			DependsOn:      dependsOn,
		})
	}
	return tf, nil
}

// dateString accepts a TOML string or a native TOML date/datetime.
func dateString(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case string:
		return d
	case toml.LocalDate:
		return d.String()
	case toml.LocalDateTime:
		return d.String()
	case time.Time:
		return d.Format(time.RFC3339)
	default:
		return fmt.Sprint(d)
	}
}

func stringList(v any) (task.StringList, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		if x == "" {
			return nil, nil
		}
		return task.StringList{x}, nil
	case []any:
		out := make(task.StringList, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("expected string id, got %v", e)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %v", v)
	}
}

// ResolveGlob expands a file pattern. A literal path is returned as-is,
// even if it does not exist, so that Load reports the real error.
func ResolveGlob(pattern string) ([]string, error) {
	if pattern == StdinPath || !strings.ContainsAny(pattern, "*?[") {
		return []string{pattern}, nil
	}
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match %q", pattern)
	}
	sort.Strings(matches)
	return matches, nil
}

// LoadMulti loads several task files in order.
func LoadMulti(paths []string) ([]*task.TaskFile, error) {
	files := make([]*task.TaskFile, 0, len(paths))
	for _, p := range paths {
		tf, err := Load(p)
		if err != nil {
			return nil, err
		}
		files = append(files, tf)
	}
	return files, nil
}

// MergeTaskFiles concatenates task files into one list. Positional
// dependencies of later files are shifted by the number of tasks before
// them so they keep pointing at the same task. Positions that were out of
// range in their own file become -1 so the shift cannot make them valid.
func MergeTaskFiles(files []*task.TaskFile) *task.TaskFile {
	if len(files) == 1 {
		return files[0]
	}

	merged := &task.TaskFile{}
	var descriptions []string
	for _, f := range files {
		if f.Description != "" {
			descriptions = append(descriptions, f.Description)
		}
		base := len(merged.Tasks)
		n := len(f.Tasks)
		for _, t := range f.Tasks {
			c := t.Clone()
			for i, d := range c.Dependencies {
				if d < 0 || d >= n {
					c.Dependencies[i] = -1
					continue
				}
				c.Dependencies[i] = d + base
			}
			merged.Tasks = append(merged.Tasks, c)
		}
	}
	merged.Description = strings.Join(descriptions, "; ")
	return merged
}

// LoadAll expands every pattern, loads and merges the files, and resolves
// depends_on ids to positions. It returns the merged file and the list of
// paths that were read.
func LoadAll(patterns []string) (*task.TaskFile, []string, error) {
	var paths []string
	for _, p := range patterns {
		matched, err := ResolveGlob(p)
		if err != nil {
			return nil, nil, err
		}
		paths = append(paths, matched...)
	}
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("no task files given")
	}

	files, err := LoadMulti(paths)
	if err != nil {
		return nil, nil, err
	}
	merged := MergeTaskFiles(files)
	resolved, err := task.ResolveDependsOn(merged.Tasks)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve depends_on: %w", err)
	}
	return &task.TaskFile{
		Description: merged.Description,
		Tasks:       resolved,
		Path:        merged.Path,
	}, paths, nil
}
