package mcp

import (
	"fmt"
	"strings"

	"github.com/repocks/repocks/internal/store"
)

// NoResultsMessage is returned when a query matches nothing. An empty
// collection is an answer, not an error.
const NoResultsMessage = "No documents found."

// FormatResults renders query results as a markdown document, one section
// per hit in rank order.
func FormatResults(results []store.QueryResult) string {
	if len(results) == 0 {
		return NoResultsMessage
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&b, "## %s (score: %.4f)\n\n", r.ID, r.Score)
		b.WriteString(strings.TrimRight(r.Content, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}
