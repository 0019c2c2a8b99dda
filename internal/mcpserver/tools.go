package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ppiankov/taskrank/internal/scoring"
)

const tasksDescription = `Task list as JSON: an array of {"title", "due_date", "importance", "estimated_hours", "dependencies"} objects, or {"tasks": [...]}. Dependencies are 0-based positions in the list.`

func registerRankTools(s *server.MCPServer, cfg *Config) {
	analyze := mcp.NewTool("analyze_tasks",
		mcp.WithDescription("Score and rank tasks by urgency, importance, effort and dependents. Returns every task, highest score first, with an explanation of each score."),
		mcp.WithString("tasks", mcp.Description(tasksDescription)),
		mcp.WithString("path", mcp.Description("Path to a JSON, YAML or TOML task file; used when tasks is empty")),
		mcp.WithString("today", mcp.Description("Reference date YYYY-MM-DD; defaults to the current date")),
	)

	suggest := mcp.NewTool("suggest_tasks",
		mcp.WithDescription("Return the top N tasks to work on next, with the reason for each."),
		mcp.WithString("tasks", mcp.Description(tasksDescription)),
		mcp.WithString("path", mcp.Description("Path to a JSON, YAML or TOML task file; used when tasks is empty")),
		mcp.WithNumber("n", mcp.Description("Number of suggestions (default 3)")),
		mcp.WithString("today", mcp.Description("Reference date YYYY-MM-DD; defaults to the current date")),
	)

	s.AddTool(analyze, makeAnalyzeHandler(cfg))
	s.AddTool(suggest, makeSuggestHandler(cfg))
}

func registerCheckTools(s *server.MCPServer, cfg *Config) {
	check := mcp.NewTool("check_tasks",
		mcp.WithDescription("Report problems in a task list: circular dependencies, dependencies outside the list, unparseable due dates and non-numeric fields."),
		mcp.WithString("tasks", mcp.Description(tasksDescription)),
		mcp.WithString("path", mcp.Description("Path to a JSON, YAML or TOML task file; used when tasks is empty")),
	)

	s.AddTool(check, makeCheckHandler(cfg))
}

func makeAnalyzeHandler(cfg *Config) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tasks, err := tasksArg(request)
		if err != nil {
			return errorResult(err), nil
		}
		a, err := analyzerArg(cfg, request)
		if err != nil {
			return errorResult(err), nil
		}

		results, err := a.Analyze(tasks)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(results), nil
	}
}

func makeSuggestHandler(cfg *Config) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tasks, err := tasksArg(request)
		if err != nil {
			return errorResult(err), nil
		}
		a, err := analyzerArg(cfg, request)
		if err != nil {
			return errorResult(err), nil
		}

		n := int(request.GetFloat("n", scoring.DefaultTopN))
		if n < 0 {
			return errorResult(fmt.Errorf("n must not be negative, got %d", n)), nil
		}
		suggestions, err := a.SuggestTop(tasks, n)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(suggestions), nil
	}
}

func makeCheckHandler(cfg *Config) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tasks, err := tasksArg(request)
		if err != nil {
			return errorResult(err), nil
		}
		issues := scoring.Check(tasks, cfg.NewAnalyzer().Today().Location())
		if issues == nil {
			issues = []scoring.Issue{}
		}
		return jsonResult(issues), nil
	}
}
