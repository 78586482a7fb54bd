// Package config provides configuration management for the crawler.
//
// Configuration flows from CLI flags into a single flat Config struct,
// optionally enriched with per-domain overrides from a YAML file
// (.webcrawler in the working or home directory). The struct is passed
// through the application via dependency injection rather than global
// state, validated once before any fetch begins, and never mutated
// afterwards.
package config
