package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ragserve",
	Short: "Retrieval-augmented question answering over your documents",
	Long: `ragserve ingests documents into a local vector store and answers
questions grounded in them, with cited sources and per-query quality
metrics. It serves a REST API with streaming responses and integrates
with AI agents via MCP.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".ragserve.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
