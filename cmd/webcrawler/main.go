// Package main provides the entry point for the webcrawler CLI.
//
// webcrawler is a concurrent, depth-bounded, politeness-respecting web
// crawler: given one or more seed URLs it recursively discovers and
// fetches linked pages with a bounded worker pool, per-domain rate
// limiting, and a global crawl timeout.
//
// Usage:
//
//	webcrawler crawl <url> [<url>...]
//
// See --help for all available options.
package main

// main is the entry point for webcrawler.
func main() {
	Execute()
}
