// WorkSync: shared work tracking MCP server for multi-agent coordination.
//
// Provides single-writer access to per-project work-index.yaml files with
// automatic Obsidian vault regeneration.
//
// Usage:
//
//	worksync serve            # Start MCP server (stdio transport)
//	worksync sync [project]   # Regenerate the vault
//	worksync version          # Print the version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/worksync/worksync/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "worksync",
	Short: "Shared work tracking for multi-agent coordination",
	Long: `WorkSync is an MCP server that gives multiple AI coding agents
serialized access to per-project work indexes (sprints, backlog, history),
with automatic regeneration of a derived Obsidian vault.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       server.Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("worksync %s\n", server.Version))
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(syncCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
