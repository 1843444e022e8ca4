package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ragserve/internal/auth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage API credentials for LLM providers",
	Long: `Store and manage API credentials for LLM providers.

Credentials are stored in ~/.ragserve/credentials.json and used
as a fallback when environment variables are not set.`,
}

var authOpenAICmd = &cobra.Command{
	Use:   "openai",
	Short: "Store OpenAI API key",
	Long: `Store your OpenAI API key for persistent use.

Get your API key at https://platform.openai.com/api-keys`,
	RunE: runAuthOpenAI,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which providers have stored credentials",
	RunE:  runAuthStatus,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials",
	RunE:  runAuthLogout,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authOpenAICmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
}

func runAuthOpenAI(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("OpenAI API key: ")
	input, _ := reader.ReadString('\n')
	apiKey := strings.TrimSpace(input)
	if apiKey == "" {
		return fmt.Errorf("API key is required")
	}

	creds, err := auth.Load()
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	creds.OpenAI = &auth.APIKeyCredentials{APIKey: apiKey}

	if err := auth.Save(creds); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}

	fmt.Println("OpenAI credentials stored successfully!")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	creds, err := auth.Load()
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	path, _ := auth.CredentialPath()
	fmt.Printf("Credentials file: %s\n\n", path)

	fmt.Println("Provider     Status")
	fmt.Println("--------     ------")

	if env := os.Getenv("OPENAI_API_KEY"); env != "" {
		fmt.Println("openai       configured (env var)")
	} else if creds.OpenAI != nil && creds.OpenAI.APIKey != "" {
		fmt.Println("openai       configured (stored)")
	} else {
		fmt.Println("openai       not configured")
	}

	// Ollama needs no credentials.
	fmt.Println("ollama       available (local)")

	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	if err := auth.Save(&auth.Credentials{}); err != nil {
		return err
	}
	fmt.Println("Stored credentials removed.")
	return nil
}
