// Package database provides SQLite-based persistence for crawl runs.
//
// Persistence is optional: the engine itself never touches the database.
// When enabled, each finished run is written in a single transaction with
// its fetched pages and recorded errors, and can be reconstructed or
// summarized later. We use modernc.org/sqlite because it is a pure-Go
// driver; no cgo toolchain is needed to build the crawler.
package database
