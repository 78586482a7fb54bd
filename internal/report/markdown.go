package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/webcrawler/internal/model"
)

// MarkdownWriter outputs crawl results as GitHub Flavored Markdown, for
// documentation and sharing. The nao1215/markdown library provides
// type-safe fluent generation of headers and tables.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the crawl result in Markdown format.
func (w *MarkdownWriter) Write(result *model.CrawlResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writePages(md, result)
	w.writeErrors(md, result)

	return len(md.String()), md.Build()
}

// writeHeader writes the run summary table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.CrawlResult) {
	stats := result.Stats()

	md.H1("Crawl Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + result.RunID + "`"},
			{"Seeds", strings.Join(result.Seeds, ", ")},
			{"Started", result.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", result.Duration().String()},
			{"Pages Fetched", strconv.Itoa(stats.PagesFetched)},
			{"Links Found", strconv.Itoa(stats.LinksFound)},
			{"Errors", strconv.Itoa(stats.FailedFetches)},
			{"Status", statusText(result)},
		},
	})
	md.PlainText("")
}

// statusText renders the termination cause.
func statusText(result *model.CrawlResult) string {
	if result.TimedOut {
		return "⚠️ Timed Out (partial results)"
	}
	return "✅ Complete"
}

// writePages writes the per-page table.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, result *model.CrawlResult) {
	if len(result.Results) == 0 {
		return
	}

	rows := make([][]string, 0, len(result.Results))
	for _, page := range result.Results {
		rows = append(rows, []string{
			page.URL,
			strconv.Itoa(page.Depth),
			strconv.Itoa(len(page.Links)),
			page.FetchDuration.String(),
		})
	}

	md.H2("Fetched Pages")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Depth", "Links", "Duration"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeErrors writes the per-URL error table.
func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, result *model.CrawlResult) {
	if len(result.Errors) == 0 {
		return
	}

	rows := make([][]string, 0, len(result.Errors))
	for _, fe := range result.Errors {
		rows = append(rows, []string{fe.URL, string(fe.Kind), fe.Message})
	}

	md.H2("Errors")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Kind", "Message"},
		Rows:   rows,
	})
	md.PlainText("")
}
