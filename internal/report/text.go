package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/webcrawler/internal/model"
)

// TextWriter outputs a human-readable plain-text summary, the default
// format for terminal use.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the crawl result as plain text.
func (w *TextWriter) Write(result *model.CrawlResult) (int, error) {
	var b strings.Builder
	stats := result.Stats()

	fmt.Fprintf(&b, "Crawl %s\n", result.RunID)
	fmt.Fprintf(&b, "  seeds:    %s\n", strings.Join(result.Seeds, ", "))
	fmt.Fprintf(&b, "  started:  %s\n", result.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "  elapsed:  %s\n", result.Duration())
	fmt.Fprintf(&b, "  pages:    %d\n", stats.PagesFetched)
	fmt.Fprintf(&b, "  links:    %d\n", stats.LinksFound)
	fmt.Fprintf(&b, "  errors:   %d\n", stats.FailedFetches)
	if result.TimedOut {
		b.WriteString("  status:   timed out (partial results)\n")
	} else {
		b.WriteString("  status:   complete\n")
	}

	if len(result.Results) > 0 {
		b.WriteString("\nPages:\n")
		for _, page := range result.Results {
			fmt.Fprintf(&b, "  [depth %d] %s (%d links, %s)\n",
				page.Depth, page.URL, len(page.Links), page.FetchDuration)
		}
	}

	if len(result.Errors) > 0 {
		b.WriteString("\nErrors:\n")
		for _, fe := range result.Errors {
			fmt.Fprintf(&b, "  [%s] %s", fe.Kind, fe.URL)
			if fe.Message != "" {
				fmt.Fprintf(&b, ": %s", fe.Message)
			}
			b.WriteByte('\n')
		}
	}

	return io.WriteString(w.output, b.String())
}
