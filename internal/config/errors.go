package config

import "errors"

// Configuration validation errors returned by Config.Validate.
//
// Package-level sentinel errors let callers branch with errors.Is while
// still carrying a human-readable message; none of these need dynamic
// values, so errors.New over fmt.Errorf.
var (
	// ErrNoSeeds is returned when no seed URL is supplied.
	ErrNoSeeds = errors.New("no seed URL specified: provide at least one URL to crawl")

	// ErrInvalidFetchTimeout is returned when the per-fetch timeout is
	// not positive. A zero fetch timeout would fail every request.
	ErrInvalidFetchTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidCrawlTimeout is returned for a negative crawl timeout.
	// Zero is legal and means return immediately.
	ErrInvalidCrawlTimeout = errors.New("invalid crawl timeout: must be non-negative")

	// ErrInvalidConcurrency is returned for a negative worker count.
	// Zero is legal and means one worker.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be non-negative")

	// ErrInvalidMaxDepth is returned for a negative depth limit.
	// Use 0 for unlimited.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidMaxPages is returned for a negative page cap.
	// Use 0 for no cap.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidPolitenessDelay is returned for a negative politeness
	// delay. Use 0 for no delay between same-domain requests.
	ErrInvalidPolitenessDelay = errors.New("invalid politeness delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned for a negative body size limit.
	// Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are requested. Only one report format can be produced.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
