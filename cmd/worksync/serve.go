package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/worksync/worksync/internal/config"
	"github.com/worksync/worksync/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server on stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromEnv()

		s, cleanup, err := server.New(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		// Flush pending work when the host kills us instead of
		// closing stdin.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigCh
			log.Printf("received %v, shutting down", sig)
			cleanup()
			os.Exit(0)
		}()

		log.Printf("worksync %s serving on stdio (data root %s)", server.Version, cfg.DataRoot)
		return mcpserver.ServeStdio(s)
	},
}
