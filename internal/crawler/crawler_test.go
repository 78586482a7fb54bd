package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/webcrawler/internal/model"
)

// graphFetcher serves a static link graph keyed by normalized URL.
type graphFetcher struct {
	mu    sync.Mutex
	graph map[string][]string
	calls []string
	delay time.Duration
}

func newGraphFetcher(graph map[string][]string) *graphFetcher {
	return &graphFetcher{graph: graph}
}

func (g *graphFetcher) FetchLinks(ctx context.Context, rawURL string) ([]string, time.Duration, error) {
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		}
	}
	g.mu.Lock()
	g.calls = append(g.calls, rawURL)
	links := g.graph[rawURL]
	g.mu.Unlock()
	return links, time.Millisecond, nil
}

func (g *graphFetcher) fetched() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func urlsOf(results []*model.ParsedResult) map[string]bool {
	set := make(map[string]bool, len(results))
	for _, r := range results {
		set[r.URL] = true
	}
	return set
}

// TestNew tests crawler construction and option validation.
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil fetcher is rejected", func(t *testing.T) {
		t.Parallel()
		if _, err := New(nil); !errors.Is(err, ErrNilFetcher) {
			t.Errorf("expected ErrNilFetcher, got %v", err)
		}
	})

	fetcher := newGraphFetcher(nil)

	tests := []struct {
		name string
		opt  Option
		want error
	}{
		{"negative fetch timeout", WithFetchTimeout(-time.Second), ErrInvalidFetchTimeout},
		{"negative concurrency", WithConcurrency(-1), ErrInvalidConcurrency},
		{"negative max depth", WithMaxDepth(-1), ErrInvalidMaxDepth},
		{"negative max pages", WithMaxPages(-1), ErrInvalidMaxPages},
		{"negative politeness delay", WithPolitenessDelay(-time.Second), ErrInvalidPolitenessDelay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := New(fetcher, tt.opt); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("defaults produce a usable crawler", func(t *testing.T) {
		t.Parallel()
		c, err := New(fetcher)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := c.workers(); got != DefaultConcurrency {
			t.Errorf("expected %d workers, got %d", DefaultConcurrency, got)
		}
	})

	t.Run("zero concurrency means one worker", func(t *testing.T) {
		t.Parallel()
		c, err := New(fetcher, WithConcurrency(0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := c.workers(); got != 1 {
			t.Errorf("expected 1 worker, got %d", got)
		}
	})
}

// TestCrawl tests end-to-end crawl behavior against in-memory link graphs.
func TestCrawl(t *testing.T) {
	t.Parallel()

	t.Run("visits each URL exactly once despite cycles", func(t *testing.T) {
		t.Parallel()

		// a links to b and back to itself; b links back to a.
		fetcher := newGraphFetcher(map[string][]string{
			"http://a.test/": {"http://b.test/", "http://a.test/"},
			"http://b.test/": {"http://a.test/"},
		})
		c, err := New(fetcher, WithPolitenessDelay(0), WithMaxDepth(1))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result, err := c.Crawl(context.Background(), []string{"http://a.test"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.TimedOut {
			t.Error("expected organic completion, got timeout")
		}
		got := urlsOf(result.Results)
		if len(got) != 2 || !got["http://a.test/"] || !got["http://b.test/"] {
			t.Errorf("expected exactly a and b, got %v", got)
		}
		if calls := fetcher.fetched(); len(calls) != 2 {
			t.Errorf("expected 2 fetches, got %d: %v", len(calls), calls)
		}
	})

	t.Run("stops descending past the depth limit", func(t *testing.T) {
		t.Parallel()

		fetcher := newGraphFetcher(map[string][]string{
			"http://a.test/":  {"http://a.test/1"},
			"http://a.test/1": {"http://a.test/2"},
			"http://a.test/2": {"http://a.test/3"},
			"http://a.test/3": {"http://a.test/4"},
		})
		c, err := New(fetcher, WithPolitenessDelay(0), WithMaxDepth(2))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result, err := c.Crawl(context.Background(), []string{"http://a.test"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := urlsOf(result.Results)
		if len(got) != 3 {
			t.Fatalf("expected depths 0..2 (3 pages), got %v", got)
		}
		if got["http://a.test/3"] {
			t.Error("depth 3 page should not have been fetched")
		}
		for _, r := range result.Results {
			if r.Depth > 2 {
				t.Errorf("result %s exceeds depth limit: %d", r.URL, r.Depth)
			}
		}
	})

	t.Run("records invalid seeds and crawls the rest", func(t *testing.T) {
		t.Parallel()

		fetcher := newGraphFetcher(map[string][]string{
			"http://a.test/": nil,
		})
		c, err := New(fetcher, WithPolitenessDelay(0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result, err := c.Crawl(context.Background(), []string{"::not-a-url::", "http://a.test"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(result.Results))
		}
		if len(result.Errors) != 1 {
			t.Fatalf("expected 1 error, got %d", len(result.Errors))
		}
		if result.Errors[0].Kind != model.KindInvalidURL {
			t.Errorf("expected kind %q, got %q", model.KindInvalidURL, result.Errors[0].Kind)
		}
	})

	t.Run("fetch errors are collected without stopping the crawl", func(t *testing.T) {
		t.Parallel()

		fetcher := FetcherFunc(func(_ context.Context, rawURL string) ([]string, time.Duration, error) {
			if rawURL == "http://bad.test/" {
				return nil, 0, model.NewFetchError(rawURL, model.KindFetchFailed, errors.New("boom"))
			}
			return nil, time.Millisecond, nil
		})
		c, err := New(fetcher, WithPolitenessDelay(0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result, err := c.Crawl(context.Background(), []string{"http://bad.test", "http://good.test"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Results) != 1 || result.Results[0].URL != "http://good.test/" {
			t.Errorf("expected only the good page, got %v", result.Results)
		}
		if len(result.Errors) != 1 || result.Errors[0].Kind != model.KindFetchFailed {
			t.Errorf("expected one fetch_failed error, got %v", result.Errors)
		}
	})

	t.Run("per-fetch timeouts surface as errors and the crawl ends organically", func(t *testing.T) {
		t.Parallel()

		fetcher := FetcherFunc(func(ctx context.Context, rawURL string) ([]string, time.Duration, error) {
			<-ctx.Done()
			return nil, 0, model.NewFetchError(rawURL, model.KindFetchTimeout, ctx.Err())
		})
		c, err := New(fetcher,
			WithPolitenessDelay(0),
			WithFetchTimeout(20*time.Millisecond),
			WithCrawlTimeout(5*time.Second),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result, err := c.Crawl(context.Background(), []string{"http://slow.test"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.TimedOut {
			t.Error("per-fetch timeout must not mark the whole crawl as timed out")
		}
		if len(result.Results) != 0 {
			t.Errorf("expected no results, got %v", result.Results)
		}
		if len(result.Errors) != 1 || result.Errors[0].Kind != model.KindFetchTimeout {
			t.Errorf("expected one fetch_timeout error, got %v", result.Errors)
		}
	})

	t.Run("zero crawl timeout returns immediately with empty results", func(t *testing.T) {
		t.Parallel()

		fetcher := newGraphFetcher(map[string][]string{
			"http://a.test/": {"http://b.test/"},
		})
		c, err := New(fetcher, WithPolitenessDelay(0), WithCrawlTimeout(0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		start := time.Now()
		result, err := c.Crawl(context.Background(), []string{"http://a.test"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("expected prompt return, took %v", elapsed)
		}
		if !result.TimedOut {
			t.Error("expected TimedOut to be set")
		}
		if len(result.Results) != 0 {
			t.Errorf("expected no results, got %v", result.Results)
		}
	})

	t.Run("timed-out crawl keeps partial results", func(t *testing.T) {
		t.Parallel()

		// Every page links to a fresh child so the crawl never runs out
		// of work on its own.
		var n atomic.Int64
		fetcher := FetcherFunc(func(ctx context.Context, rawURL string) ([]string, time.Duration, error) {
			select {
			case <-time.After(10 * time.Millisecond):
			case <-ctx.Done():
				return nil, 0, model.NewFetchError(rawURL, model.KindFetchTimeout, ctx.Err())
			}
			child := fmt.Sprintf("http://endless.test/p%d", n.Add(1))
			return []string{child}, time.Millisecond, nil
		})
		c, err := New(fetcher,
			WithPolitenessDelay(0),
			WithMaxDepth(0),
			WithCrawlTimeout(200*time.Millisecond),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result, err := c.Crawl(context.Background(), []string{"http://endless.test"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.TimedOut {
			t.Error("expected TimedOut to be set")
		}
		if len(result.Results) == 0 {
			t.Error("expected partial results collected before the deadline")
		}
	})

	t.Run("caller cancellation is not reported as a timeout", func(t *testing.T) {
		t.Parallel()

		fetcher := FetcherFunc(func(ctx context.Context, rawURL string) ([]string, time.Duration, error) {
			<-ctx.Done()
			return nil, 0, ctx.Err()
		})
		c, err := New(fetcher, WithPolitenessDelay(0), WithCrawlTimeout(time.Minute))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()

		result, err := c.Crawl(ctx, []string{"http://a.test"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.TimedOut {
			t.Error("caller cancellation must not set TimedOut")
		}
		if len(result.Errors) != 0 {
			t.Errorf("cancellation must not be recorded as a URL error, got %v", result.Errors)
		}
	})

	t.Run("never exceeds the configured concurrency", func(t *testing.T) {
		t.Parallel()

		const workers = 3
		var inFlight, peak atomic.Int64
		fetcher := FetcherFunc(func(_ context.Context, rawURL string) ([]string, time.Duration, error) {
			cur := inFlight.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)
			return nil, time.Millisecond, nil
		})
		c, err := New(fetcher, WithPolitenessDelay(0), WithConcurrency(workers))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		seeds := []string{
			"http://a.test", "http://b.test", "http://c.test",
			"http://d.test", "http://e.test", "http://f.test",
			"http://g.test", "http://h.test", "http://i.test",
		}
		result, err := c.Crawl(context.Background(), seeds)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Results) != len(seeds) {
			t.Errorf("expected %d results, got %d", len(seeds), len(result.Results))
		}
		if p := peak.Load(); p > workers {
			t.Errorf("observed %d concurrent fetches, limit is %d", p, workers)
		}
	})

	t.Run("single worker serializes fetches", func(t *testing.T) {
		t.Parallel()

		type span struct{ start, end time.Time }
		var mu sync.Mutex
		var spans []span
		fetcher := FetcherFunc(func(_ context.Context, rawURL string) ([]string, time.Duration, error) {
			s := span{start: time.Now()}
			time.Sleep(20 * time.Millisecond)
			s.end = time.Now()
			mu.Lock()
			spans = append(spans, s)
			mu.Unlock()
			return nil, time.Millisecond, nil
		})
		c, err := New(fetcher, WithPolitenessDelay(0), WithConcurrency(1))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := c.Crawl(context.Background(), []string{"http://a.test", "http://b.test", "http://c.test"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		mu.Lock()
		defer mu.Unlock()
		if len(spans) != 3 {
			t.Fatalf("expected 3 fetches, got %d", len(spans))
		}
		for i := range spans {
			for j := range spans {
				if i == j {
					continue
				}
				if spans[i].start.Before(spans[j].end) && spans[j].start.Before(spans[i].end) {
					t.Fatalf("fetches %d and %d overlap", i, j)
				}
			}
		}
	})

	t.Run("max pages caps the crawl", func(t *testing.T) {
		t.Parallel()

		fetcher := newGraphFetcher(map[string][]string{
			"http://a.test/":  {"http://a.test/1", "http://a.test/2", "http://a.test/3"},
			"http://a.test/1": {"http://a.test/4"},
			"http://a.test/2": {"http://a.test/5"},
		})
		c, err := New(fetcher, WithPolitenessDelay(0), WithConcurrency(1), WithMaxPages(2))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result, err := c.Crawl(context.Background(), []string{"http://a.test"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Results) != 2 {
			t.Errorf("expected 2 results under the page cap, got %d", len(result.Results))
		}
	})

	t.Run("same host only skips offsite links", func(t *testing.T) {
		t.Parallel()

		fetcher := newGraphFetcher(map[string][]string{
			"http://a.test/":     {"http://a.test/sub", "http://other.test/"},
			"http://a.test/sub":  nil,
			"http://other.test/": nil,
		})
		c, err := New(fetcher, WithPolitenessDelay(0), WithSameHostOnly(true))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result, err := c.Crawl(context.Background(), []string{"http://a.test"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := urlsOf(result.Results)
		if got["http://other.test/"] {
			t.Error("offsite link should not have been fetched")
		}
		if !got["http://a.test/sub"] {
			t.Error("same-host link should have been fetched")
		}
	})

	t.Run("duplicate seeds are claimed once", func(t *testing.T) {
		t.Parallel()

		fetcher := newGraphFetcher(map[string][]string{
			"http://a.test/": nil,
		})
		c, err := New(fetcher, WithPolitenessDelay(0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result, err := c.Crawl(context.Background(), []string{"http://a.test", "HTTP://A.TEST/", "http://a.test/"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Results) != 1 {
			t.Errorf("expected 1 result for equivalent seeds, got %d", len(result.Results))
		}
	})

	t.Run("empty seed list finishes immediately", func(t *testing.T) {
		t.Parallel()

		c, err := New(newGraphFetcher(nil), WithPolitenessDelay(0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		result, err := c.Crawl(context.Background(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Results) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result, got %+v", result)
		}
		if result.TimedOut {
			t.Error("empty crawl must not time out")
		}
	})
}
