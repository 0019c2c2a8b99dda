package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/taskrank/internal/task"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_BareArray(t *testing.T) {
	path := writeFile(t, "tasks.json", `[
		{"title":"Fix login bug","due_date":"2025-11-30","estimated_hours":3,"importance":8,"dependencies":[]},
		{"title":"Write README","due_date":"2025-12-02","estimated_hours":1,"importance":6,"dependencies":[0]}
	]`)

	tf, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tf.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tf.Tasks))
	}
	if tf.Tasks[1].Title != "Write README" {
		t.Errorf("expected Write README, got %q", tf.Tasks[1].Title)
	}
	if !reflect.DeepEqual(tf.Tasks[1].Dependencies, []int{0}) {
		t.Errorf("expected dependencies [0], got %v", tf.Tasks[1].Dependencies)
	}
	if tf.Path != path {
		t.Errorf("expected Path %q, got %q", path, tf.Path)
	}
}

func TestLoad_Object(t *testing.T) {
	path := writeFile(t, "tasks.json", `{
		"description": "sprint 12",
		"tasks": [{"title":"A","importance":"7"}]
	}`)

	tf, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tf.Description != "sprint 12" {
		t.Errorf("description: got %q", tf.Description)
	}
	if v, _ := tf.Tasks[0].Importance.IntOr(5); v != 7 {
		t.Errorf("importance: got %d, want 7", v)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "tasks.yaml", `
tasks:
  - id: login
    title: Fix login bug
    due_date: 2025-11-30
    importance: 8
    estimated_hours: 3
  - title: Write README
    depends_on: login
`)

	tf, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tf.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tf.Tasks))
	}
	if tf.Tasks[0].DueDate != "2025-11-30" {
		t.Errorf("due_date: got %q", tf.Tasks[0].DueDate)
	}
	if tf.Tasks[1].DependsOn[0] != "login" {
		t.Errorf("depends_on: got %v", tf.Tasks[1].DependsOn)
	}
}

func TestLoad_YAMLSequence(t *testing.T) {
	path := writeFile(t, "tasks.yml", `
- title: A
  importance: 3
- title: B
  dependencies: [0]
`)

	tf, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tf.Tasks) != 2 || tf.Tasks[1].Dependencies[0] != 0 {
		t.Errorf("unexpected tasks: %+v", tf.Tasks)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "tasks.toml", `
description = "backlog"

[[tasks]]
id = "pay"
title = "Hotfix payment"
due_date = 2025-11-25
importance = 9
estimated_hours = "4"

[[tasks]]
title = "Write README"
due_date = "2025-12-02"
dependencies = [0]
depends_on = ["pay"]
`)

	tf, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tf.Description != "backlog" {
		t.Errorf("description: got %q", tf.Description)
	}
	first := tf.Tasks[0]
	if first.DueDate != "2025-11-25" {
		t.Errorf("native TOML date should become a string, got %q", first.DueDate)
	}
	if v, _ := first.Importance.IntOr(5); v != 9 {
		t.Errorf("importance: got %d", v)
	}
	if v, _ := first.EstimatedHours.IntOr(1); v != 4 {
		t.Errorf("estimated_hours: got %d", v)
	}
	if !first.EstimatedHours.Equal(task.Text("4")) {
		t.Errorf("estimated_hours should keep its string form, got %v", first.EstimatedHours)
	}
	if got := tf.Tasks[1].DependsOn; len(got) != 1 || got[0] != "pay" {
		t.Errorf("depends_on: got %v", got)
	}
}

func TestLoad_Stdin(t *testing.T) {
	old := stdin
	stdin = strings.NewReader(`[{"title":"from stdin"}]`)
	defer func() { stdin = old }()

	tf, err := Load(StdinPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tf.Tasks[0].Title != "from stdin" {
		t.Errorf("got %q", tf.Tasks[0].Title)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/tasks.json")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := writeFile(t, "tasks.json", `{invalid`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeFile(t, "tasks.yaml", "tasks: [invalid\n")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad_EmptyTasks(t *testing.T) {
	for _, content := range []string{`{"tasks": []}`, `[]`} {
		path := writeFile(t, "tasks.json", content)
		_, err := Load(path)
		if err == nil {
			t.Errorf("expected error for empty tasks in %s", content)
		}
	}
}

func TestLoad_BadNumberDefersToAnalysis(t *testing.T) {
	path := writeFile(t, "tasks.json", `[{"title":"A","importance":"very"}]`)
	tf, err := Load(path)
	if err != nil {
		t.Fatalf("load should succeed, got %v", err)
	}
	if _, err := tf.Tasks[0].Importance.IntOr(5); !errors.Is(err, task.ErrConversion) {
		t.Errorf("expected ErrConversion from IntOr, got %v", err)
	}
}

func TestResolveGlob_LiteralPath(t *testing.T) {
	paths, err := ResolveGlob("/some/file.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 1 || paths[0] != "/some/file.json" {
		t.Errorf("expected [/some/file.json], got %v", paths)
	}
}

func TestResolveGlob_Pattern(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.json", "a.json", "c.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("[]"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	paths, err := ResolveGlob(filepath.Join(dir, "*.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 matches, got %d: %v", len(paths), paths)
	}
	if filepath.Base(paths[0]) != "a.json" || filepath.Base(paths[1]) != "b.json" {
		t.Errorf("unexpected matches: %v", paths)
	}
}

func TestResolveGlob_NoMatches(t *testing.T) {
	_, err := ResolveGlob(filepath.Join(t.TempDir(), "*.json"))
	if err == nil {
		t.Fatal("expected error for no matches")
	}
	if !strings.Contains(err.Error(), "no files match") {
		t.Errorf("expected 'no files match' error, got: %v", err)
	}
}

func TestMergeTaskFiles_ShiftsPositions(t *testing.T) {
	tf1 := &task.TaskFile{Tasks: []task.Task{
		{Title: "A"},
		{Title: "B", Dependencies: []int{0}},
	}}
	tf2 := &task.TaskFile{Tasks: []task.Task{
		{Title: "C"},
		{Title: "D", Dependencies: []int{0, 5, -1}},
	}}

	merged := MergeTaskFiles([]*task.TaskFile{tf1, tf2})
	if len(merged.Tasks) != 4 {
		t.Fatalf("expected 4 tasks, got %d", len(merged.Tasks))
	}
	if !reflect.DeepEqual(merged.Tasks[1].Dependencies, []int{0}) {
		t.Errorf("B deps: got %v, want [0]", merged.Tasks[1].Dependencies)
	}
	if !reflect.DeepEqual(merged.Tasks[3].Dependencies, []int{2, -1, -1}) {
		t.Errorf("D deps: got %v, want [2 -1 -1]", merged.Tasks[3].Dependencies)
	}
	if tf2.Tasks[1].Dependencies[0] != 0 {
		t.Error("merge should not modify input files")
	}
}

func TestMergeTaskFiles_SingleFile(t *testing.T) {
	tf := &task.TaskFile{Tasks: []task.Task{{Title: "A"}}}
	if merged := MergeTaskFiles([]*task.TaskFile{tf}); merged != tf {
		t.Error("single file merge should return the original pointer")
	}
}

func TestLoadAll_CrossFileDependsOn(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.yaml")
	if err := os.WriteFile(a, []byte(`[{"id":"base","title":"Base"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("- title: Top\n  depends_on: [base]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tf, paths, err := LoadAll([]string{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 2 {
		t.Errorf("expected 2 paths, got %v", paths)
	}
	if !reflect.DeepEqual(tf.Tasks[1].Dependencies, []int{0}) {
		t.Errorf("Top deps: got %v, want [0]", tf.Tasks[1].Dependencies)
	}
}

func TestLoadAll_UnknownDependsOn(t *testing.T) {
	path := writeFile(t, "tasks.json", `[{"title":"A","depends_on":"ghost"}]`)

	_, _, err := LoadAll([]string{path})
	if !errors.Is(err, task.ErrUnknownTask) {
		t.Fatalf("expected ErrUnknownTask, got %v", err)
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("error should mention the id, got %v", err)
	}
}

func TestLoadAll_NoFiles(t *testing.T) {
	_, _, err := LoadAll(nil)
	if err == nil {
		t.Fatal("expected error with no files")
	}
}
