package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/guidepro/guidepro/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing document search, booking listing and the hotel catalog to AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(context.Background())
		if err != nil {
			return err
		}
		defer a.Close()

		mcpserver.Version = Version
		fmt.Fprintf(os.Stderr, "guidepro MCP server started on stdio (chunks=%d)\n", a.docs.Len())

		return mcpserver.NewServer(a.docs, a.bookings).Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
