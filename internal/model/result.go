package model

import (
	"time"

	"github.com/google/uuid"
)

// ParsedResult is one successfully fetched page: the URL that was crawled
// and the outbound links discovered on it, in document order.
//
// The struct is JSON-serializable so results can be shipped to message
// queues or written straight into reports without an extra mapping layer.
// Links may contain duplicates; deduplication happens in the scheduler,
// not here.
type ParsedResult struct {
	// URL is the normalized address of the fetched page.
	URL string `json:"url"`

	// Links are the outbound links extracted from the page, in the order
	// they appear in the document.
	Links []string `json:"links"`

	// Depth is the number of link hops from the seed that led here.
	// Seeds are depth 0.
	Depth int `json:"depth"`

	// FetchDuration is how long the fetch (request plus parse) took.
	FetchDuration time.Duration `json:"fetch_duration"`
}

// CrawlResult aggregates everything one crawl run produced.
// It is created when the crawl starts and finalized when it terminates,
// whether organically or by timeout.
type CrawlResult struct {
	// RunID uniquely identifies this crawl run, for persistence and logs.
	RunID string `json:"run_id"`

	// Seeds are the URLs the crawl started from, as supplied by the caller.
	Seeds []string `json:"seeds"`

	// Results holds one entry per successfully fetched page, in the order
	// fetches completed.
	Results []*ParsedResult `json:"results"`

	// Errors holds the per-URL failures recorded during the crawl, in the
	// order they occurred. A non-empty Errors does not mean the crawl
	// failed; per-page errors never abort a run.
	Errors []*FetchError `json:"errors,omitempty"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the crawl returned control to the caller.
	FinishedAt time.Time `json:"finished_at"`

	// TimedOut reports whether the crawl was stopped by the crawl-wide
	// timeout rather than draining its frontier. Timed-out runs still
	// carry whatever results were collected before the deadline.
	TimedOut bool `json:"timed_out"`
}

// NewCrawlResult creates a CrawlResult for a run starting now.
func NewCrawlResult(seeds []string) *CrawlResult {
	return &CrawlResult{
		RunID:     uuid.NewString(),
		Seeds:     seeds,
		Results:   make([]*ParsedResult, 0),
		Errors:    make([]*FetchError, 0),
		StartedAt: time.Now(),
	}
}

// Duration returns how long the crawl ran.
// Returns 0 if the run has not finished yet.
func (r *CrawlResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Stats summarizes a crawl run for logging and report headers.
type Stats struct {
	// PagesFetched is the number of pages successfully fetched.
	PagesFetched int

	// LinksFound is the total number of links discovered, duplicates included.
	LinksFound int

	// FailedFetches is the number of per-URL errors recorded.
	FailedFetches int
}

// Stats computes summary statistics for the run.
func (r *CrawlResult) Stats() Stats {
	s := Stats{
		PagesFetched:  len(r.Results),
		FailedFetches: len(r.Errors),
	}
	for _, res := range r.Results {
		s.LinksFound += len(res.Links)
	}
	return s
}
