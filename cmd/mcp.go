package cmd

import (
	"github.com/huangsam/lochist/internal/iocache"
	"github.com/huangsam/lochist/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the LOC history MCP server",
	Long:  `Launch an MCP server over stdio that lets AI agents read monthly series and stored measurements.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, iocache.Manager.GetStore())
	},
}
