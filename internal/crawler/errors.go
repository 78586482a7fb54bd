package crawler

import "errors"

// Construction-time configuration errors. These fail fast in New, before
// any fetch begins; they are the only errors fatal to a whole run.
var (
	// ErrNilFetcher is returned when no LinkFetcher is supplied.
	ErrNilFetcher = errors.New("crawler: fetcher must not be nil")

	// ErrInvalidFetchTimeout is returned when the per-fetch timeout is
	// not positive. A zero fetch timeout would fail every request
	// immediately.
	ErrInvalidFetchTimeout = errors.New("crawler: fetch timeout must be positive")

	// ErrInvalidMaxDepth is returned for a negative depth limit.
	// Use 0 for unlimited depth.
	ErrInvalidMaxDepth = errors.New("crawler: max depth must be non-negative")

	// ErrInvalidConcurrency is returned for a negative worker count.
	// Zero is allowed and means one worker.
	ErrInvalidConcurrency = errors.New("crawler: concurrency must be non-negative")

	// ErrInvalidPolitenessDelay is returned for a negative politeness
	// delay. Use 0 to disable throttling.
	ErrInvalidPolitenessDelay = errors.New("crawler: politeness delay must be non-negative")

	// ErrInvalidMaxPages is returned for a negative page cap.
	// Use 0 for no cap.
	ErrInvalidMaxPages = errors.New("crawler: max pages must be non-negative")
)
