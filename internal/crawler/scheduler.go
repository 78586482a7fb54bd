package crawler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nao1215/webcrawler/internal/model"
	"golang.org/x/sync/errgroup"
)

// scheduler runs the bounded worker pool for one crawl run.
//
// Termination is cooperative. inFlight counts entries that are queued or
// being processed; it is incremented before an entry is pushed and
// decremented only after the worker has pushed all links discovered on
// that page. When the counter reaches zero the frontier is necessarily
// empty and no worker can produce new entries, so the run is organically
// complete and the frontier is closed. Incrementing before pushing closes
// the race where the frontier looks empty while a page that will yield
// new links is still being fetched.
type scheduler struct {
	fetcher  LinkFetcher
	frontier *Frontier
	visited  *VisitedSet
	throttle *Throttle
	agg      *aggregator
	logger   *slog.Logger

	// fetchTimeout bounds each individual fetch.
	fetchTimeout time.Duration

	// maxPages stops the crawl after roughly this many successful
	// fetches. 0 means unlimited. The cap is approximate under
	// concurrency: fetches already in flight when it trips still land.
	maxPages int

	// sameHostOnly restricts discovered links to the host of the page
	// they were found on.
	sameHostOnly bool

	// inFlight counts queued plus in-process entries.
	inFlight atomic.Int64
}

// enqueue claims in-flight credit for an entry and pushes it.
// Must be used instead of pushing the frontier directly, or completion
// detection breaks.
func (s *scheduler) enqueue(e Entry) {
	s.inFlight.Add(1)
	s.frontier.Push(e)
}

// run starts the worker pool and blocks until every worker has exited.
func (s *scheduler) run(ctx context.Context, workers int) {
	g := new(errgroup.Group)
	for range workers {
		g.Go(func() error {
			s.work(ctx)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return errors; per-URL failures go to the aggregator
}

// work is one worker's loop: pop, process, and check for organic
// completion after releasing the entry's in-flight credit.
func (s *scheduler) work(ctx context.Context) {
	for {
		entry, ok := s.frontier.Pop(ctx)
		if !ok {
			return
		}
		s.process(ctx, entry)
		if s.inFlight.Add(-1) == 0 {
			// Last pending entry finished and produced nothing new.
			s.frontier.Close()
		}
	}
}

// process fetches one entry and feeds accepted links back into the
// frontier. Fetch failures are recorded against the URL and never abort
// the worker or the crawl.
func (s *scheduler) process(ctx context.Context, entry Entry) {
	domain := DomainOf(entry.URL)
	if err := s.throttle.Acquire(ctx, domain); err != nil {
		// Crawl cancelled while waiting out the politeness delay.
		return
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	links, elapsed, err := s.fetcher.FetchLinks(fetchCtx, entry.URL)
	cancel()
	if err != nil {
		s.recordFetchErr(ctx, entry.URL, err)
		return
	}

	s.logger.Debug("fetched page",
		"url", entry.URL,
		"depth", entry.Depth,
		"links", len(links),
		"elapsed", elapsed,
	)

	total := s.agg.recordResult(&model.ParsedResult{
		URL:           entry.URL,
		Links:         links,
		Depth:         entry.Depth,
		FetchDuration: elapsed,
	})
	if s.maxPages > 0 && total >= s.maxPages {
		s.frontier.Close()
		return
	}

	for _, link := range links {
		normalized, err := Normalize(link)
		if err != nil {
			s.logger.Debug("skipping invalid link", "url", link, "error", err)
			continue
		}
		if s.sameHostOnly && DomainOf(normalized) != domain {
			continue
		}
		if !s.visited.TryClaim(normalized, entry.Depth+1) {
			continue
		}
		s.enqueue(Entry{URL: normalized, Depth: entry.Depth + 1})
	}
}

// recordFetchErr stores a classified fetch error. Plain context
// cancellation is not an error of the URL, so it is dropped.
func (s *scheduler) recordFetchErr(ctx context.Context, url string, err error) {
	var fe *model.FetchError
	if !errors.As(err, &fe) {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return
		}
		fe = model.NewFetchError(url, model.KindFetchFailed, err)
	}
	s.logger.Warn("fetch failed", "url", url, "kind", string(fe.Kind), "error", fe.Err)
	s.agg.recordError(fe)
}

// aggregator collects results and errors from all workers.
// It is a multiple-producer structure; a single mutex is enough because
// appends are cheap next to fetches.
type aggregator struct {
	mu      sync.Mutex
	results []*model.ParsedResult
	errs    []*model.FetchError
}

func newAggregator() *aggregator {
	return &aggregator{
		results: make([]*model.ParsedResult, 0),
		errs:    make([]*model.FetchError, 0),
	}
}

// recordResult appends a result and returns the new total, which the
// scheduler uses for the max-pages cap.
func (a *aggregator) recordResult(r *model.ParsedResult) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = append(a.results, r)
	return len(a.results)
}

func (a *aggregator) recordError(e *model.FetchError) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.errs = append(a.errs, e)
}

// snapshot copies the collected data so the caller can return it even if
// a straggling worker is still appending.
func (a *aggregator) snapshot() ([]*model.ParsedResult, []*model.FetchError) {
	a.mu.Lock()
	defer a.mu.Unlock()
	results := make([]*model.ParsedResult, len(a.results))
	copy(results, a.results)
	errs := make([]*model.FetchError, len(a.errs))
	copy(errs, a.errs)
	return results, errs
}
