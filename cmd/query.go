package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/guidepro/guidepro/internal/vectordb"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Search the uploaded travel documents",
	Long:  `Embeds a natural language question and returns the most similar chunks from the ingested documents. With --answer the configured completion provider writes an answer from them.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().Int("top-k", 0, "number of chunks to return (default rag.top_k)")
	queryCmd.Flags().Bool("json", false, "output results as JSON")
	queryCmd.Flags().Bool("answer", false, "answer the question the way the chat does")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	question := strings.TrimSpace(args[0])

	topK, _ := cmd.Flags().GetInt("top-k")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	answer, _ := cmd.Flags().GetBool("answer")

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.docs.Len() == 0 {
		fmt.Println("No documents have been ingested. Run `guidepro ingest` first.")
		return nil
	}

	if answer {
		fmt.Println(a.docs.Answer(ctx, question))
		return nil
	}

	results, err := a.docs.Search(ctx, question, topK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonOutput {
		return printQueryResultsJSON(results)
	}
	printQueryResults(results)
	return nil
}

type queryResultJSON struct {
	Rank       int     `json:"rank"`
	Similarity float64 `json:"similarity"`
	Source     string  `json:"source"`
	Text       string  `json:"text"`
}

func printQueryResultsJSON(results []vectordb.SearchResult) error {
	out := make([]queryResultJSON, 0, len(results))
	for i, r := range results {
		out = append(out, queryResultJSON{
			Rank:       i + 1,
			Similarity: float64(r.Similarity),
			Source:     r.Document.Source,
			Text:       r.Document.Text,
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printQueryResults(results []vectordb.SearchResult) {
	if len(results) == 0 {
		fmt.Println("No results found.")
		return
	}
	fmt.Printf("Found %d results:\n\n", len(results))
	for i, r := range results {
		fmt.Printf("  %d. [%.1f%%] %s\n", i+1, r.Similarity*100, r.Document.Source)
		fmt.Printf("     %s\n\n", truncate(strings.Join(strings.Fields(r.Document.Text), " "), 160))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
