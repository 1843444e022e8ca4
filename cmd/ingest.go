package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/ragserve/internal/progress"
	"github.com/ziadkadry99/ragserve/internal/rag"
	"github.com/ziadkadry99/ragserve/internal/walker"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest a document or a directory of documents",
	Long: `Chunks, embeds and indexes the given file, or every text document
found under the given directory. Include/exclude globs from the config
file control which files a directory walk picks up.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringSlice("tag", nil, "tag to attach to the ingested documents (repeatable)")
	ingestCmd.Flags().String("title", "", "document title (single-file ingestion only)")
	ingestCmd.Flags().String("type", "", "document type: text, markdown or html (default: by extension)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	tags, _ := cmd.Flags().GetStringSlice("tag")
	title, _ := cmd.Flags().GetString("title")
	docType, _ := cmd.Flags().GetString("type")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	application, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close(context.Background())

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		return ingestFile(ctx, application, path, title, docType, tags)
	}

	files, err := walker.Walk(walker.WalkerConfig{
		RootDir: path,
		Include: cfg.Include,
		Exclude: cfg.Exclude,
	})
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No documents found.")
		return nil
	}

	reporter := progress.NewReporter()
	reporter.Start(len(files))

	ingested, failed := 0, 0
	for i, f := range files {
		reporter.Update(i+1, f.RelPath)

		data, err := os.ReadFile(f.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: reading %s: %v\n", f.RelPath, err)
			failed++
			continue
		}

		fileType := docType
		if fileType == "" {
			fileType = f.DocumentType
		}

		_, err = application.engine.Ingest(ctx, rag.IngestRequest{
			Content:      string(data),
			Title:        strings.TrimSuffix(filepath.Base(f.RelPath), filepath.Ext(f.RelPath)),
			DocumentType: fileType,
			Source:       f.RelPath,
			Tags:         tags,
			CreatedBy:    "cli",
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: ingesting %s: %v\n", f.RelPath, err)
			failed++
			continue
		}
		ingested++
	}
	reporter.Finish()

	fmt.Printf("Ingested %d document(s)", ingested)
	if failed > 0 {
		fmt.Printf(", %d failed", failed)
	}
	fmt.Println()
	return nil
}

func ingestFile(ctx context.Context, application *app, path, title, docType string, tags []string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if docType == "" {
		docType = walker.DetectDocumentType(path)
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	result, err := application.engine.Ingest(ctx, rag.IngestRequest{
		Content:      string(data),
		Title:        title,
		DocumentType: docType,
		Source:       path,
		Tags:         tags,
		CreatedBy:    "cli",
	})
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %s (%d of %d chunks indexed)\n", result.DocumentID, result.ChunkCount, result.ChunkTotal)
	return nil
}
