package cmd

import (
	"fmt"

	"github.com/huangsam/minigraph/internal/history"
	"github.com/huangsam/minigraph/internal/mcp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the minigraph MCP server",
	Long: `Launch an MCP server that allows AI agents to render entity graphs and list
recorded entities via standard tools. Flags and the config file set the defaults
of every render; each tool call can override the entity, chart, aggregate and window.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		if err := loadInput(args, false); err != nil {
			return err
		}
		// Entities are listed from the store even when renders read a file
		if err := history.Manager.Init(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
			return fmt.Errorf("failed to initialize persistence: %w", err)
		}
		return nil
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, historySource(), history.Manager.GetStore())
	},
}
