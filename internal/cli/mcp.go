package cli

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/ppiankov/taskrank/internal/mcpserver"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve ranking tools over MCP on stdio",
		Long: `Mcp runs a Model Context Protocol server on stdin/stdout exposing the
analyze_tasks, suggest_tasks and check_tasks tools. Scoring weights,
timezone and a pinned date come from the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv("")
			if err != nil {
				return err
			}
			s := mcpserver.New(Version, &mcpserver.Config{NewAnalyzer: e.analyzer})
			if err := server.ServeStdio(s); err != nil {
				return fmt.Errorf("mcp: %w", err)
			}
			return nil
		},
	}
}
