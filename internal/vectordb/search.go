package vectordb

import (
	"fmt"
	"strings"
)

// FormatResults renders search results as human-readable text.
func FormatResults(results []SearchResult) string {
	if len(results) == 0 {
		return "No results found."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d result(s):\n\n", len(results)))

	for i, r := range results {
		sb.WriteString(fmt.Sprintf("--- Result %d (similarity: %.4f) ---\n", i+1, r.Similarity))
		if r.Document.Source != "" {
			sb.WriteString(fmt.Sprintf("Source: %s\n", r.Document.Source))
		}
		sb.WriteString("\n")
		sb.WriteString(r.Document.Text)
		sb.WriteString("\n\n")
	}

	return sb.String()
}
