package main

import (
	"github.com/spf13/cobra"

	"github.com/worksync/worksync/internal/config"
	"github.com/worksync/worksync/internal/vault"
)

var syncRoot string

var syncCmd = &cobra.Command{
	Use:   "sync [project]",
	Short: "Regenerate the vault from the work indexes",
	Long: `Regenerates the derived Obsidian vault from the registered projects'
work indexes. With a project argument only that project is regenerated;
without one every registered project plus the global dashboard is rebuilt.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := syncRoot
		if root == "" {
			root = config.FromEnv().DataRoot
		}
		project := ""
		if len(args) == 1 {
			project = args[0]
		}
		return vault.New(root).Run(project, cmd.OutOrStdout())
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncRoot, "root", "", "data root directory (default $WORKSYNC_DATA_ROOT or ~/.worksync)")
}
