package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/webcrawler/internal/config"
	"github.com/nao1215/webcrawler/internal/crawler"
	"github.com/nao1215/webcrawler/internal/database"
	"github.com/nao1215/webcrawler/internal/log"
	"github.com/nao1215/webcrawler/internal/report"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url> [<url>...]",
		Short: "Crawl the web starting from one or more seed URLs",
		Long: `Crawl recursively fetches pages starting from the given seed URLs.

Discovered links re-enter the crawl until the configured depth is
exhausted, the page cap is reached, or the crawl timeout elapses.
Fetches to the same domain are separated by a randomized politeness
delay; per-page fetch failures are recorded and never abort the crawl.

Examples:
  # Crawl a site two levels deep
  webcrawler crawl --depth 2 https://example.com

  # Crawl several seeds with 16 workers and a 5 minute budget
  webcrawler crawl -c 16 --crawl-timeout 5m https://a.test https://b.test

  # Stay on the seed's host and emit a JSON report
  webcrawler crawl --same-host --json https://example.com

  # Persist results for later inspection with "webcrawler runs"
  webcrawler crawl --db-dir ~/.local/share/webcrawler https://example.com

Configuration file (.webcrawler) example:
  domains:
    slow.example.com:
      delay: 2s
    private.example.com:
      headers:
        Cookie: "session=abc123"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().DurationP("fetch-timeout", "t", config.DefaultFetchTimeout,
		"Timeout for each page fetch")
	cmd.Flags().Duration("crawl-timeout", config.DefaultCrawlTimeout,
		"Timeout for the whole crawl (0 returns immediately)")
	cmd.Flags().IntP("concurrency", "c", config.DefaultConcurrency,
		"Number of concurrent workers (0 means 1)")
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum link depth from a seed (0 means unlimited)")
	cmd.Flags().IntP("max-pages", "p", 0,
		"Maximum number of pages to fetch (0 means unlimited)")
	cmd.Flags().Duration("delay", config.DefaultPolitenessDelay,
		"Politeness base delay between fetches to the same domain")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header to send")
	cmd.Flags().Bool("same-host", false,
		"Only follow links on the same host as the page they appear on")

	// Configuration file
	cmd.Flags().String("config", "",
		"Configuration file path (default: .webcrawler in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Persistence flags
	cmd.Flags().String("db-dir", "",
		"Directory for the results database (enables persistence)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Cancel the crawl on interrupt; partial results are still reported.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Seeds = args

	var err error
	if cfg.FetchTimeout, err = cmd.Flags().GetDuration("fetch-timeout"); err != nil {
		return nil, err
	}
	if cfg.CrawlTimeout, err = cmd.Flags().GetDuration("crawl-timeout"); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.MaxDepth, err = cmd.Flags().GetInt("depth"); err != nil {
		return nil, err
	}
	if cfg.MaxPages, err = cmd.Flags().GetInt("max-pages"); err != nil {
		return nil, err
	}
	if cfg.PolitenessDelay, err = cmd.Flags().GetDuration("delay"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = cmd.Flags().GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.SameHostOnly, err = cmd.Flags().GetBool("same-host"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = cmd.Flags().GetString("db-dir"); err != nil {
		return nil, err
	}
	cfg.SaveToDB = cfg.DBDir != ""
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	if err := loadDomainConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// loadDomainConfig loads per-domain overrides from the config file.
// A missing file is only an error when the path was given explicitly.
func loadDomainConfig(cfg *config.Config) error {
	path := config.FindConfigFile(cfg.ConfigFilePath)
	if path == "" {
		if cfg.ConfigFilePath != "" {
			return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
		return nil
	}

	f, err := config.LoadConfigFile(path)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) && cfg.ConfigFilePath == "" {
			return nil
		}
		return fmt.Errorf("failed to load configuration file %s: %w", path, err)
	}
	cfg.Domains = f
	return nil
}

// runCrawl wires the engine together from the config and runs one crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	fetcherOpts := []crawler.HTTPFetcherOption{
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
	}
	crawlerOpts := []crawler.Option{
		crawler.WithFetchTimeout(cfg.FetchTimeout),
		crawler.WithCrawlTimeout(cfg.CrawlTimeout),
		crawler.WithConcurrency(cfg.Workers()),
		crawler.WithMaxDepth(cfg.MaxDepth),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithPolitenessDelay(cfg.PolitenessDelay),
		crawler.WithSameHostOnly(cfg.SameHostOnly),
		crawler.WithLogger(logger),
	}
	if cfg.Domains != nil {
		fetcherOpts = append(fetcherOpts, crawler.WithDomainHeaders(cfg.Domains.DomainHeaders()))
		crawlerOpts = append(crawlerOpts, crawler.WithDomainDelays(cfg.Domains.DomainDelays()))
	}

	c, err := crawler.New(crawler.NewHTTPFetcher(fetcherOpts...), crawlerOpts...)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	result, err := c.Crawl(ctx, cfg.Seeds)
	if err != nil {
		return err
	}

	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open results database: %w", err)
		}
		defer db.Close() //nolint:errcheck
		if err := db.SaveCrawlResult(ctx, result); err != nil {
			return fmt.Errorf("failed to save crawl result: %w", err)
		}
		logger.Info("crawl result saved", "run_id", result.RunID, "db_dir", cfg.DBDir)
	}

	writer, cleanup, err := newReportWriter(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := writer.Write(result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// newReportWriter builds the report writer selected by the config.
// The returned cleanup closes the output file, if any.
func newReportWriter(cfg *config.Config) (report.Writer, func(), error) {
	newWriter := func(out *os.File) report.Writer {
		switch {
		case cfg.JSONReport:
			return report.NewJSONWriter(out, report.WithPrettyPrint())
		case cfg.MarkdownReport:
			return report.NewMarkdownWriter(out)
		default:
			return report.NewTextWriter(out)
		}
	}

	if cfg.ReportFile == "" {
		return newWriter(os.Stdout), func() {}, nil
	}

	if dir := filepath.Dir(cfg.ReportFile); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	f, err := os.Create(cfg.ReportFile) //nolint:gosec // user-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create report file: %w", err)
	}
	return newWriter(f), func() { _ = f.Close() }, nil
}
