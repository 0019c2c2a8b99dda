// Package mcpserver exposes task ranking as Model Context Protocol tools so
// agents can ask which task to work on next.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ppiankov/taskrank/internal/scoring"
)

// Config is shared by every tool handler.
type Config struct {
	// NewAnalyzer builds the analyzer for one call. Tools that accept a
	// "today" argument pass extra options.
	NewAnalyzer func(opts ...scoring.Option) *scoring.Analyzer
}

// New creates an MCP server with all tools registered.
func New(version string, cfg *Config) *server.MCPServer {
	s := server.NewMCPServer(
		"taskrank",
		version,
		server.WithToolCapabilities(true),
	)
	RegisterAll(s, cfg)
	return s
}

// RegisterAll adds the ranking tools to s.
func RegisterAll(s *server.MCPServer, cfg *Config) {
	registerRankTools(s, cfg)
	registerCheckTools(s, cfg)
}
