package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .ragserve.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to ragserve! Let's configure your document service.")
	fmt.Println()

	// 1. Completion provider.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)

	model := "gpt-4o-mini"
	if provider == ProviderOllama {
		model = "llama3.1"
	}
	modelPrompt := promptui.Prompt{
		Label:   "Completion model",
		Default: model,
	}
	model, err = modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model selection: %w", err)
	}

	// 2. Embedding provider. Ollama completions can still use OpenAI embeddings.
	embPrompt := promptui.Select{
		Label: "Select embedding provider",
		Items: []string{"openai", "ollama"},
	}
	_, embStr, err := embPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("embedding provider selection: %w", err)
	}
	embProvider := ProviderType(embStr)
	embModel, dimension := DefaultEmbeddingModel(embProvider)

	// 3. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory (database, vectors, blobs)",
		Default: ".ragserve",
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// 4. Server port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP server port",
		Default: "8080",
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server port: %w", err)
	}
	port, _ := strconv.Atoi(portStr)

	// 5. Include patterns for CLI ingest.
	includePrompt := promptui.Prompt{
		Label:   "Ingest include patterns (comma-separated globs)",
		Default: "**/*.txt, **/*.md",
	}
	includeStr, err := includePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("include patterns: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Provider = provider
	cfg.Model = model
	cfg.EmbeddingProvider = embProvider
	cfg.EmbeddingModel = embModel
	cfg.VectorDimension = dimension
	cfg.DataDir = dataDir
	cfg.Server.Port = port
	cfg.Include = splitAndTrim(includeStr)

	if provider == ProviderOpenAI || embProvider == ProviderOpenAI {
		if os.Getenv("OPENAI_API_KEY") == "" {
			fmt.Println("\nNote: Set OPENAI_API_KEY in your environment before running ragserve serve.")
		}
	}

	if err := cfg.Save(DefaultFileName); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", DefaultFileName)
	return cfg, nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
