package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/nao1215/webcrawler/internal/model"
)

// LinkFetcher is the capability the engine consumes to retrieve a page
// and extract its outbound links. The engine depends only on this
// contract, never on transport details.
//
// FetchLinks must respect ctx (the engine supplies the per-fetch timeout
// through it) and classify failures as *model.FetchError with kind
// KindFetchTimeout or KindFetchFailed. Links are returned in document
// order; duplicates within one page are permitted.
type LinkFetcher interface {
	FetchLinks(ctx context.Context, rawURL string) (links []string, elapsed time.Duration, err error)
}

// FetcherFunc adapts a plain function to the LinkFetcher interface.
type FetcherFunc func(ctx context.Context, rawURL string) ([]string, time.Duration, error)

// FetchLinks calls f.
func (f FetcherFunc) FetchLinks(ctx context.Context, rawURL string) ([]string, time.Duration, error) {
	return f(ctx, rawURL)
}

// HTTPFetcher fetches pages over plain HTTP(S) and extracts links with
// the package's HTML parser.
type HTTPFetcher struct {
	// client performs the requests. Callers may inject a pre-configured
	// client (proxies, custom transports, tests).
	client *http.Client

	// userAgent is sent with every request.
	userAgent string

	// maxBodySize caps how much of a response body is read, so one huge
	// page cannot exhaust memory.
	maxBodySize int64

	// domainHeaders holds extra request headers per domain, e.g. a
	// session cookie for a site that hides links behind a login.
	domainHeaders map[string]map[string]string
}

// defaultMaxBodySize caps response bodies at 5MB, which is plenty for
// HTML while bounding memory per in-flight fetch.
const defaultMaxBodySize = 5 * 1024 * 1024

// HTTPFetcherOption configures an HTTPFetcher.
type HTTPFetcherOption func(*HTTPFetcher)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.client = client
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size to read.
func WithMaxBodySize(size int64) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.maxBodySize = size
	}
}

// WithDomainHeaders sets extra request headers applied to requests for
// specific domains. Keys are lowercase host names.
func WithDomainHeaders(headers map[string]map[string]string) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.domainHeaders = headers
	}
}

// NewHTTPFetcher creates an HTTPFetcher.
// Per-fetch timeouts come from the context supplied to FetchLinks, so the
// default client carries no timeout of its own.
func NewHTTPFetcher(opts ...HTTPFetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:      &http.Client{},
		userAgent:   "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
		maxBodySize: defaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchLinks GETs the URL, parses the body if it is HTML, and returns the
// outbound links in document order along with the elapsed time.
func (f *HTTPFetcher) FetchLinks(ctx context.Context, rawURL string) ([]string, time.Duration, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, model.NewFetchError(rawURL, model.KindFetchFailed, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for k, v := range f.domainHeaders[DomainOf(rawURL)] {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, time.Since(start), classifyFetchErr(rawURL, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Close error on a read-only body is not actionable

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, f.maxBodySize)) //nolint:errcheck
		return nil, time.Since(start),
			model.NewFetchError(rawURL, model.KindFetchFailed, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, time.Since(start), classifyFetchErr(rawURL, err)
	}

	var links []string
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		parser, err := NewParser(rawURL)
		if err == nil {
			if parsed, err := parser.Parse(strings.NewReader(string(body))); err == nil {
				links = parsed.Links
			}
		}
	}

	return links, time.Since(start), nil
}

// classifyFetchErr maps a transport error onto a fetch error kind.
// Deadline and timeout failures become KindFetchTimeout; context
// cancellation passes through untouched so the scheduler can tell a
// cancelled crawl apart from a slow page.
func classifyFetchErr(rawURL string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return model.NewFetchError(rawURL, model.KindFetchTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.NewFetchError(rawURL, model.KindFetchTimeout, err)
	}
	return model.NewFetchError(rawURL, model.KindFetchFailed, err)
}
