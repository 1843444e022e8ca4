package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ragserve/internal/cache"
	"github.com/ziadkadry99/ragserve/internal/db"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the embedding cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached embeddings",
	Long:  `Removes every cached embedding. The next ingest or query re-embeds from the provider; nothing else is touched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
		database, err := db.Open(filepath.Join(cfg.DataDir, "ragserve.db"))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		store := cache.NewSQLiteStore(database)
		if err := store.DeletePrefix(cmd.Context(), "emb:"); err != nil {
			return fmt.Errorf("clearing embedding cache: %w", err)
		}
		fmt.Println("Embedding cache cleared.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
