package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. The timeouts and delay reflect typical
// web latency; the user agent matches what most sites whitelist for
// crawlers.
const (
	// DefaultFetchTimeout is the time to wait before giving up on a
	// single page fetch.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultCrawlTimeout bounds a whole crawl run. When it elapses the
	// crawl returns the results gathered so far.
	DefaultCrawlTimeout = 30 * time.Second

	// DefaultConcurrency is the number of workers fetching in parallel.
	DefaultConcurrency = 8

	// DefaultMaxDepth limits how many link hops to follow from a seed.
	DefaultMaxDepth = 16

	// DefaultPolitenessDelay is the fixed base used to derive the
	// randomized wait between successive fetches to one domain.
	DefaultPolitenessDelay = 500 * time.Millisecond

	// DefaultUserAgent identifies the crawler in HTTP requests. Sites
	// key robots policies off the agent string, so a familiar crawler
	// identifier avoids being served bot-trap content.
	DefaultUserAgent = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"

	// DefaultMaxBodySize limits the response body size read per page.
	// 5MB is plenty for HTML while bounding memory per fetch.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// AppName is used for XDG directory paths and the config file name.
	AppName = "webcrawler"
)

// Config holds all options for a crawl invocation. It is populated from
// CLI flags, optionally enriched from the YAML config file, validated
// once, and then shared read-only by every component; nothing mutates it
// after creation.
type Config struct {
	// Seeds are the URLs the crawl starts from.
	Seeds []string

	// FetchTimeout is the per-page fetch timeout. Must be positive.
	FetchTimeout time.Duration

	// CrawlTimeout bounds the whole run. Zero means the deadline has
	// already passed: the crawl returns immediately. Useful for testing
	// seeding behavior, so it is legal rather than an error.
	CrawlTimeout time.Duration

	// Concurrency is the worker pool size. Zero is treated as one
	// worker (see Workers); negative values are rejected.
	Concurrency int

	// MaxDepth limits link hops from a seed. Zero means unlimited.
	MaxDepth int

	// MaxPages caps successful fetches per run. Zero means unlimited.
	MaxPages int

	// PolitenessDelay is the base delay between fetches to one domain.
	PolitenessDelay time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// MaxBodySize caps how many bytes of each response are read.
	MaxBodySize int64

	// SameHostOnly restricts the crawl to links on the same host as the
	// page they were found on.
	SameHostOnly bool

	// Verbose enables debug-level logging.
	Verbose bool

	// JSONReport selects JSON output. Mutually exclusive with
	// MarkdownReport; the default is plain text.
	JSONReport bool

	// MarkdownReport selects Markdown output.
	MarkdownReport bool

	// ReportFile, when set, writes the report to this path instead of
	// stdout.
	ReportFile string

	// DBDir is the directory for the SQLite database. When set, crawl
	// runs are persisted there.
	DBDir string

	// SaveToDB indicates whether to persist crawl results. Set
	// automatically when DBDir is configured.
	SaveToDB bool

	// ConfigFilePath is an explicit config file path. Empty means search
	// the usual locations (see FindConfigFile).
	ConfigFilePath string

	// Domains holds per-domain overrides loaded from the config file.
	Domains *File
}

// NewConfig creates a Config with default values. Many defaults are
// non-zero, so relying on zero values would be wrong; this constructor
// also documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		FetchTimeout:    DefaultFetchTimeout,
		CrawlTimeout:    DefaultCrawlTimeout,
		Concurrency:     DefaultConcurrency,
		MaxDepth:        DefaultMaxDepth,
		PolitenessDelay: DefaultPolitenessDelay,
		UserAgent:       DefaultUserAgent,
		MaxBodySize:     DefaultMaxBodySize,
	}
}

// Workers returns the effective worker pool size. Concurrency of zero
// maps to one worker: an unbounded pool keyed off frontier growth could
// spawn goroutines without limit, so the floor is the smallest pool that
// still makes progress.
func (c *Config) Workers() int {
	if c.Concurrency <= 0 {
		return 1
	}
	return c.Concurrency
}

// XDGDataDir returns the XDG data directory for the crawler, the default
// location for the results database.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It runs once after CLI parsing, before any fetch begins, so bad input
// fails fast with a specific error.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}
	if c.FetchTimeout <= 0 {
		return ErrInvalidFetchTimeout
	}
	if c.CrawlTimeout < 0 {
		return ErrInvalidCrawlTimeout
	}
	if c.Concurrency < 0 {
		return ErrInvalidConcurrency
	}
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	if c.PolitenessDelay < 0 {
		return ErrInvalidPolitenessDelay
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
