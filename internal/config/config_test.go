package config

import (
	"errors"
	"testing"
	"time"
)

// TestNewConfig tests that the constructor fills in documented defaults.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	c := NewConfig()
	if c.FetchTimeout != DefaultFetchTimeout {
		t.Errorf("FetchTimeout = %v, want %v", c.FetchTimeout, DefaultFetchTimeout)
	}
	if c.CrawlTimeout != DefaultCrawlTimeout {
		t.Errorf("CrawlTimeout = %v, want %v", c.CrawlTimeout, DefaultCrawlTimeout)
	}
	if c.Concurrency != DefaultConcurrency {
		t.Errorf("Concurrency = %d, want %d", c.Concurrency, DefaultConcurrency)
	}
	if c.MaxDepth != DefaultMaxDepth {
		t.Errorf("MaxDepth = %d, want %d", c.MaxDepth, DefaultMaxDepth)
	}
	if c.PolitenessDelay != DefaultPolitenessDelay {
		t.Errorf("PolitenessDelay = %v, want %v", c.PolitenessDelay, DefaultPolitenessDelay)
	}
	if c.UserAgent == "" {
		t.Error("expected a default user agent")
	}
	if c.MaxBodySize != DefaultMaxBodySize {
		t.Errorf("MaxBodySize = %d, want %d", c.MaxBodySize, DefaultMaxBodySize)
	}
}

// TestWorkers tests the concurrency-to-pool-size mapping.
func TestWorkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		concurrency int
		want        int
	}{
		{"zero maps to one worker", 0, 1},
		{"one stays one", 1, 1},
		{"eight stays eight", 8, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := NewConfig()
			c.Concurrency = tt.concurrency
			if got := c.Workers(); got != tt.want {
				t.Errorf("Workers() = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestValidate tests configuration validation.
func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		c := NewConfig()
		c.Seeds = []string{"http://a.test"}
		return c
	}

	t.Run("valid config passes", func(t *testing.T) {
		t.Parallel()
		if err := valid().Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("zero crawl timeout is legal", func(t *testing.T) {
		t.Parallel()
		c := valid()
		c.CrawlTimeout = 0
		if err := c.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"no seeds", func(c *Config) { c.Seeds = nil }, ErrNoSeeds},
		{"zero fetch timeout", func(c *Config) { c.FetchTimeout = 0 }, ErrInvalidFetchTimeout},
		{"negative fetch timeout", func(c *Config) { c.FetchTimeout = -time.Second }, ErrInvalidFetchTimeout},
		{"negative crawl timeout", func(c *Config) { c.CrawlTimeout = -time.Second }, ErrInvalidCrawlTimeout},
		{"negative concurrency", func(c *Config) { c.Concurrency = -1 }, ErrInvalidConcurrency},
		{"negative max depth", func(c *Config) { c.MaxDepth = -1 }, ErrInvalidMaxDepth},
		{"negative max pages", func(c *Config) { c.MaxPages = -1 }, ErrInvalidMaxPages},
		{"negative politeness delay", func(c *Config) { c.PolitenessDelay = -time.Second }, ErrInvalidPolitenessDelay},
		{"negative max body size", func(c *Config) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
		{"json and markdown together", func(c *Config) { c.JSONReport = true; c.MarkdownReport = true }, ErrConflictingReportFormats},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := valid()
			tt.mutate(c)
			if err := c.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestXDGDataDir tests the database directory path.
func TestXDGDataDir(t *testing.T) {
	t.Parallel()

	dir := XDGDataDir()
	if dir == "" {
		t.Fatal("expected a non-empty data directory")
	}
}
