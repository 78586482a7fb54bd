// Package report renders crawl results in multiple output formats.
//
// Three writers share the Writer interface: TextWriter for terminals
// (default), JSONWriter for tool integration, and MarkdownWriter for
// documentation. MultiWriter fans one result out to several destinations,
// e.g. stdout plus a file.
package report
