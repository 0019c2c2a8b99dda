package mcpserver

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ppiankov/taskrank/internal/config"
	"github.com/ppiankov/taskrank/internal/scoring"
	"github.com/ppiankov/taskrank/internal/task"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: text,
			},
		},
	}
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: err.Error(),
			},
		},
		IsError: true,
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}
	return textResult(string(data))
}

// tasksArg reads the task list from the "tasks" argument (JSON text) or,
// when that is empty, from the file named by "path".
func tasksArg(request mcp.CallToolRequest) ([]task.Task, error) {
	var tf *task.TaskFile
	if raw := request.GetString("tasks", ""); raw != "" {
		parsed, err := config.Parse([]byte(raw), config.FormatJSON)
		if err != nil {
			return nil, fmt.Errorf("parse tasks: %w", err)
		}
		tf = parsed
	} else if path := request.GetString("path", ""); path != "" {
		loaded, _, err := config.LoadAll([]string{path})
		if err != nil {
			return nil, err
		}
		tf = loaded
	} else {
		return nil, fmt.Errorf("either tasks or path is required")
	}

	tasks, err := task.ResolveDependsOn(tf.Tasks)
	if err != nil {
		return nil, fmt.Errorf("resolve depends_on: %w", err)
	}
	return tasks, nil
}

// analyzerArg applies the optional "today" argument.
func analyzerArg(cfg *Config, request mcp.CallToolRequest) (*scoring.Analyzer, error) {
	s := request.GetString("today", "")
	if s == "" {
		return cfg.NewAnalyzer(), nil
	}
	today, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("today must be YYYY-MM-DD, got %q", s)
	}
	return cfg.NewAnalyzer(scoring.WithToday(today)), nil
}
