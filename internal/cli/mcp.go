package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	tdmcp "github.com/valter-silva-au/taskdeck/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the tdeck MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tdeck MCP server on stdio",
	Long: `Start the tdeck MCP server on stdio transport.

The server acts as the logged-in user and exposes these tools to AI
assistants: list_tasks, get_task, create_task, update_task_status,
delete_task, get_analytics, get_metrics, get_alerts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}
		if Auth == nil {
			return fmt.Errorf("auth service not initialized")
		}

		srv := tdmcp.NewServer(TaskMgr, Auth, tdmcp.Options{
			Version:       appVersion,
			QueryDefaults: QueryDefaults,
			Metrics:       MetricsCalc,
			Alerts:        AlertEngine,
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
