package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/guidepro/guidepro/internal/document"
	"github.com/guidepro/guidepro/internal/progress"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <pattern>...",
	Short: "Add PDF, Markdown or text documents to the retrieval store",
	Long: `Reads every file matching the given glob patterns (doublestar syntax, e.g.
"guides/**/*.pdf"), splits it into chunks, embeds them and stores them in the
vector index under data_dir.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().Bool("replace", false, "drop previously ingested documents first")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	replace, _ := cmd.Flags().GetBool("replace")

	paths, err := expandPatterns(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files match %v", args)
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if replace {
		if err := a.docs.Reset(ctx); err != nil {
			return err
		}
	}

	docs := make([]document.RawDocument, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		docs = append(docs, document.RawDocument{Name: filepath.Base(p), Data: data})
	}

	reporter := progress.NewReporter("Ingesting")
	reporter.Start(len(docs))
	report := a.docs.IngestWithProgress(ctx, docs, func(done, _ int, name string) {
		reporter.Update(done, name)
	})
	reporter.Finish()

	fmt.Printf("Indexed %d chunk(s) from %d document(s); store holds %d chunk(s).\n",
		report.Chunks, report.Documents, a.docs.Len())
	if report.FailedChunks > 0 {
		fmt.Printf("  %d chunk(s) could not be embedded and were skipped.\n", report.FailedChunks)
	}
	for _, name := range report.EmptyDocs {
		fmt.Printf("  %s: no extractable text\n", name)
	}
	for name, reason := range report.FailedDocs {
		fmt.Printf("  %s: %s\n", name, reason)
	}
	return nil
}

// expandPatterns resolves glob patterns to a de-duplicated list of regular
// files, keeping the order in which they were first matched.
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	return paths, nil
}
