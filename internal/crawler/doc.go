// Package crawler implements a concurrent, depth-bounded, polite
// web-crawling engine.
//
// # Architecture
//
// The engine is built from small, per-run components:
//
//   - LinkFetcher: the capability that retrieves a page and extracts its
//     outbound links. HTTPFetcher is the production implementation;
//     FetcherFunc adapts plain functions for tests.
//   - Throttle: enforces a randomized minimum delay between successive
//     fetches to the same domain.
//   - VisitedSet: atomic claim-and-mark deduplication plus the max-depth
//     policy. Exactly one concurrent claimer of a URL wins.
//   - Frontier: a multi-producer multi-consumer queue of (URL, depth)
//     pairs awaiting fetch, with non-blocking push and blocking pop.
//   - Crawler: the controller that seeds the frontier, runs the worker
//     pool, races organic completion against the crawl timeout, and
//     aggregates results.
//
// Data flows from the frontier through the throttle and fetcher; links
// discovered on each page pass the visited set and depth check before
// re-entering the frontier. The crawl ends when the frontier drains with
// no fetch in flight, or when the crawl-wide timeout fires. A timeout is
// a partial-success outcome, not a failure: whatever was collected is
// returned.
//
// # Politeness
//
// Two fetches to the same domain are separated by at least the configured
// base delay; the actual gap is randomized in [base, 2*base] so workers
// hammering one domain do not synchronize. Unrelated domains never wait
// on each other.
//
// # Usage
//
//	fetcher := crawler.NewHTTPFetcher(crawler.WithUserAgent(ua))
//	c, err := crawler.New(fetcher, crawler.WithMaxDepth(3))
//	if err != nil {
//		return err
//	}
//	result, err := c.Crawl(ctx, []string{"https://example.com"})
package crawler
