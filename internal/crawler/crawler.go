package crawler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nao1215/webcrawler/internal/model"
)

// Default engine settings. The durations reflect web latency on the open
// internet; they can all be overridden per Crawler.
const (
	// DefaultFetchTimeout bounds each individual page fetch.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultCrawlTimeout bounds a whole crawl run.
	DefaultCrawlTimeout = 30 * time.Second

	// DefaultConcurrency is the worker pool size.
	DefaultConcurrency = 8

	// DefaultMaxDepth limits link hops from a seed. 0 means unlimited.
	DefaultMaxDepth = 16

	// DefaultPolitenessDelay is the base delay between fetches to the
	// same domain.
	DefaultPolitenessDelay = 500 * time.Millisecond

	// workerExitGrace bounds how long Crawl waits for workers to report
	// exit after a termination signal before returning with whatever the
	// aggregator holds.
	workerExitGrace = 5 * time.Second
)

// Crawler orchestrates crawl runs. It owns its LinkFetcher for its whole
// lifetime and builds fresh per-run state (frontier, visited set,
// throttle, aggregator) on every Crawl call, so independent runs never
// interfere.
type Crawler struct {
	fetcher LinkFetcher
	logger  *slog.Logger

	fetchTimeout    time.Duration
	crawlTimeout    time.Duration
	concurrency     int
	maxDepth        int
	maxPages        int
	politenessDelay time.Duration
	domainDelays    map[string]time.Duration
	sameHostOnly    bool
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithFetchTimeout sets the per-fetch timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Crawler) { c.fetchTimeout = d }
}

// WithCrawlTimeout sets the crawl-wide timeout. A run that hits it
// returns the results collected so far with TimedOut set; it is not an
// error. Zero or negative means the deadline has already passed and the
// crawl returns immediately.
func WithCrawlTimeout(d time.Duration) Option {
	return func(c *Crawler) { c.crawlTimeout = d }
}

// WithConcurrency sets the worker pool size. Zero is treated as one
// worker: a pool keyed off frontier growth must stay bounded, and one
// worker is the smallest pool that still makes progress.
func WithConcurrency(n int) Option {
	return func(c *Crawler) { c.concurrency = n }
}

// WithMaxDepth sets the maximum link distance from a seed.
// 0 means unlimited.
func WithMaxDepth(depth int) Option {
	return func(c *Crawler) { c.maxDepth = depth }
}

// WithMaxPages caps successful fetches per run. 0 means unlimited.
func WithMaxPages(n int) Option {
	return func(c *Crawler) { c.maxPages = n }
}

// WithPolitenessDelay sets the base delay between fetches to the same
// domain. The enforced gap is randomized in [d, 2*d]. 0 disables
// throttling.
func WithPolitenessDelay(d time.Duration) Option {
	return func(c *Crawler) { c.politenessDelay = d }
}

// WithDomainDelays overrides the politeness base delay for specific
// domains, keyed by lowercase host.
func WithDomainDelays(delays map[string]time.Duration) Option {
	return func(c *Crawler) { c.domainDelays = delays }
}

// WithSameHostOnly restricts the crawl to links on the same host as the
// page they were discovered on.
func WithSameHostOnly(same bool) Option {
	return func(c *Crawler) { c.sameHostOnly = same }
}

// WithLogger sets the logger used by the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) { c.logger = logger }
}

// New creates a Crawler around the given fetcher. It validates the
// resulting configuration and fails fast, before any fetch begins.
func New(fetcher LinkFetcher, opts ...Option) (*Crawler, error) {
	c := &Crawler{
		fetcher:         fetcher,
		fetchTimeout:    DefaultFetchTimeout,
		crawlTimeout:    DefaultCrawlTimeout,
		concurrency:     DefaultConcurrency,
		maxDepth:        DefaultMaxDepth,
		politenessDelay: DefaultPolitenessDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// validate checks construction-time invariants, returning the first
// violation found.
func (c *Crawler) validate() error {
	if c.fetcher == nil {
		return ErrNilFetcher
	}
	if c.fetchTimeout <= 0 {
		return ErrInvalidFetchTimeout
	}
	if c.maxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.concurrency < 0 {
		return ErrInvalidConcurrency
	}
	if c.politenessDelay < 0 {
		return ErrInvalidPolitenessDelay
	}
	if c.maxPages < 0 {
		return ErrInvalidMaxPages
	}
	return nil
}

// workers returns the effective worker pool size.
func (c *Crawler) workers() int {
	if c.concurrency == 0 {
		return 1
	}
	return c.concurrency
}

// Crawl fetches the seed URLs and everything reachable from them within
// the configured depth, page, and time budgets.
//
// Malformed seeds are recorded as invalid-URL errors and skipped; the
// crawl proceeds with the rest. The returned CrawlResult always carries
// whatever was collected, including on timeout or caller cancellation.
// The error return is reserved for future setup failures; per-page
// errors live in CrawlResult.Errors.
func (c *Crawler) Crawl(ctx context.Context, seeds []string) (*model.CrawlResult, error) {
	result := model.NewCrawlResult(seeds)

	timeout := c.crawlTimeout
	if timeout < 0 {
		timeout = 0
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	agg := newAggregator()
	s := &scheduler{
		fetcher:      c.fetcher,
		frontier:     NewFrontier(),
		visited:      NewVisitedSet(c.maxDepth),
		throttle:     NewThrottle(c.politenessDelay, c.domainDelays),
		agg:          agg,
		logger:       c.logger,
		fetchTimeout: c.fetchTimeout,
		maxPages:     c.maxPages,
		sameHostOnly: c.sameHostOnly,
	}

	for _, seed := range seeds {
		normalized, err := Normalize(seed)
		if err != nil {
			c.logger.Warn("skipping invalid seed", "url", seed, "error", err)
			agg.recordError(model.NewFetchError(seed, model.KindInvalidURL, err))
			continue
		}
		if !s.visited.TryClaim(normalized, 0) {
			continue
		}
		s.enqueue(Entry{URL: normalized, Depth: 0})
	}
	if s.inFlight.Load() == 0 {
		// Nothing claimable; let the workers observe an already-closed
		// frontier instead of blocking on an empty one.
		s.frontier.Close()
	}

	c.logger.Info("starting crawl",
		"run_id", result.RunID,
		"seeds", len(seeds),
		"workers", c.workers(),
		"max_depth", c.maxDepth,
	)

	done := make(chan struct{})
	go func() {
		s.run(runCtx, c.workers())
		close(done)
	}()

	select {
	case <-done:
	case <-runCtx.Done():
		// Termination signal fired first: close the frontier so blocked
		// consumers exit, then give workers a bounded grace period.
		s.frontier.Close()
		select {
		case <-done:
		case <-time.After(workerExitGrace):
			c.logger.Warn("workers did not exit within grace period", "run_id", result.RunID)
		}
	}
	s.frontier.Close()

	result.Results, result.Errors = agg.snapshot()
	result.FinishedAt = time.Now()
	result.TimedOut = errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil

	stats := result.Stats()
	c.logger.Info("crawl finished",
		"run_id", result.RunID,
		"pages", stats.PagesFetched,
		"links", stats.LinksFound,
		"errors", stats.FailedFetches,
		"timed_out", result.TimedOut,
		"elapsed", result.Duration(),
	)

	return result, nil
}
