package cmd

import (
	"github.com/spf13/cobra"

	"github.com/essalab/essa/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the ESSA MCP server",
	Long:  `Launch an MCP server that allows AI agents to run essential site scans and pocket rankings via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Store setup only: tool calls carry their own structure paths,
		// and stdout belongs to the protocol.
		return storeSetup()
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
