package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ragserve/internal/auth"
	"github.com/ziadkadry99/ragserve/internal/db"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage API tokens for the HTTP server",
	Long: `Create, list and revoke bearer tokens for the ragserve HTTP API.
The raw token is shown once at creation; only its hash is stored.`,
}

// openTokenStore opens just the database; token management does not need the
// embedding or LLM providers.
func openTokenStore() (*auth.TokenStore, *db.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating data directory: %w", err)
	}
	database, err := db.Open(filepath.Join(cfg.DataDir, "ragserve.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return auth.NewTokenStore(database), database, nil
}

var tokenCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new API token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, _ := cmd.Flags().GetString("scope")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		store, database, err := openTokenStore()
		if err != nil {
			return err
		}
		defer database.Close()

		raw, token, err := store.Create(cmd.Context(), args[0], scope, ttl)
		if err != nil {
			return err
		}

		fmt.Printf("Token created: %s\n", token.ID)
		fmt.Printf("  Scope: %s\n", token.Scope)
		if token.ExpiresAt != nil {
			fmt.Printf("  Expires: %s\n", token.ExpiresAt.Format(time.RFC3339))
		}
		fmt.Printf("\n%s\n\nStore this token now; it will not be shown again.\n", raw)
		return nil
	},
}

var tokenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List API tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, database, err := openTokenStore()
		if err != nil {
			return err
		}
		defer database.Close()

		tokens, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(tokens) == 0 {
			fmt.Println("No tokens.")
			return nil
		}

		for _, t := range tokens {
			fmt.Printf("%s  %-20s %-10s created %s", t.ID, t.Name, t.Scope, t.CreatedAt.Format("2006-01-02"))
			if t.ExpiresAt != nil {
				fmt.Printf("  expires %s", t.ExpiresAt.Format("2006-01-02"))
			}
			if t.LastUsed != nil {
				fmt.Printf("  last used %s", t.LastUsed.Format("2006-01-02"))
			}
			fmt.Println()
		}
		return nil
	},
}

var tokenRevokeCmd = &cobra.Command{
	Use:   "revoke [id]",
	Short: "Revoke an API token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, database, err := openTokenStore()
		if err != nil {
			return err
		}
		defer database.Close()

		if err := store.Revoke(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Token revoked.")
		return nil
	},
}

func init() {
	tokenCreateCmd.Flags().String("scope", "read", "token scope: read, readwrite or admin")
	tokenCreateCmd.Flags().Duration("ttl", 0, "token lifetime (0 = never expires)")
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenCreateCmd)
	tokenCmd.AddCommand(tokenListCmd)
	tokenCmd.AddCommand(tokenRevokeCmd)
}
