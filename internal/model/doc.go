// Package model defines the data structures shared across the crawler.
//
// The types here are intentionally passive: they carry crawl data between
// the engine, the report writers, and the database layer, but contain no
// crawling logic themselves. This keeps the dependency graph simple;
// every package may import model, and model imports no internal package.
package model
