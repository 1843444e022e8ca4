package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ragserve/internal/rag"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question grounded in the ingested documents",
	Long:  `Retrieves the most relevant document chunks, generates a cited answer and prints it with its sources and confidence.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().Int("limit", 0, "maximum number of source documents (default from config)")
	queryCmd.Flags().String("tag", "", "restrict retrieval to documents carrying this tag")
	queryCmd.Flags().Bool("json", false, "output the full result as JSON")
	queryCmd.Flags().Bool("stream", false, "stream the answer token by token")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	question := args[0]

	limit, _ := cmd.Flags().GetInt("limit")
	tag, _ := cmd.Flags().GetString("tag")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	streamOutput, _ := cmd.Flags().GetBool("stream")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	application, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close(context.Background())

	if application.vectors.Count() == 0 {
		fmt.Println("Document store is empty. Run `ragserve ingest` first.")
		return nil
	}

	req := rag.QueryRequest{Query: question, MaxDocuments: limit}
	if tag != "" {
		req.Filters = map[string]any{"tags": []string{tag}}
	}

	if streamOutput {
		return streamQuery(ctx, application, req)
	}

	result, err := application.engine.Query(ctx, req)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printQueryResult(result)
	return nil
}

func streamQuery(ctx context.Context, application *app, req rag.QueryRequest) error {
	var sources []rag.Source

	for event := range application.engine.QueryStream(ctx, req) {
		switch event.Type {
		case rag.EventSources:
			sources = event.Sources
		case rag.EventToken:
			fmt.Print(event.Content)
		case rag.EventMetadata:
			fmt.Println()
			printSources(sources)
			fmt.Printf("\nConfidence: %.0f%%  Time: %.0fms  Tokens: %d\n",
				event.Metadata.Confidence*100, event.Metadata.ResponseTimeMS, event.Metadata.TokenCount)
		case rag.EventError:
			fmt.Println()
			return fmt.Errorf("%s", event.Error)
		}
	}
	return nil
}

func printQueryResult(result *rag.QueryResult) {
	fmt.Println(result.Response)
	printSources(result.Sources)
	if len(result.Sources) > 0 {
		fmt.Printf("\nConfidence: %.0f%%  Tokens: %d\n", result.Confidence*100, result.TokenUsage)
	}
}

func printSources(sources []rag.Source) {
	if len(sources) == 0 {
		return
	}
	fmt.Println("\nSources:")
	for i, src := range sources {
		title := src.Title
		if title == "" {
			title = src.DocumentID
		}
		fmt.Printf("  [%d] %s (%.1f%%)\n", i+1, title, src.Similarity*100)
	}
}
