package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ragserve/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize ragserve configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure providers, chunking and retrieval, and generates a .ragserve.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
