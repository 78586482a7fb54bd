package main

import (
	"fmt"
	"os"

	"github.com/nao1215/webcrawler/internal/config"
	"github.com/nao1215/webcrawler/internal/database"
	"github.com/nao1215/webcrawler/internal/report"
	"github.com/spf13/cobra"
)

// NewRunsCmd creates the runs command, which lists persisted crawl runs.
func NewRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List crawl runs stored in the results database",
		Long: `Runs lists the crawl runs persisted with "crawl --db-dir", newest first.

Example:
  webcrawler runs --db-dir ~/.local/share/webcrawler --limit 10`,
		RunE: runRunsCmd,
	}

	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the results database")
	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of runs to list")

	return cmd
}

// runRunsCmd executes the runs command.
func runRunsCmd(cmd *cobra.Command, _ []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open results database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	summaries, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no crawl runs stored")
		return nil
	}

	for _, s := range summaries {
		status := "complete"
		if s.TimedOut {
			status = "timed out"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  pages=%d errors=%d (%s)\n",
			s.RunID, s.StartedAt.Format("2006-01-02 15:04:05"), s.Pages, s.Errors, status)
	}
	return nil
}

// NewShowCmd creates the show command, which re-renders a stored run.
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a stored crawl run",
		Long: `Show re-renders a crawl run persisted with "crawl --db-dir".

Example:
  webcrawler show --json 6e8bc430-9c3a-11d9-9669-0800200c9a66`,
		Args: cobra.ExactArgs(1),
		RunE: runShowCmd,
	}

	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the results database")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")

	return cmd
}

// runShowCmd executes the show command.
func runShowCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	asMarkdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if asJSON && asMarkdown {
		return config.ErrConflictingReportFormats
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open results database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	result, err := db.GetCrawlResult(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("crawl run not found: %s", args[0])
	}

	var writer report.Writer
	switch {
	case asJSON:
		writer = report.NewJSONWriter(os.Stdout, report.WithPrettyPrint())
	case asMarkdown:
		writer = report.NewMarkdownWriter(os.Stdout)
	default:
		writer = report.NewTextWriter(os.Stdout)
	}

	_, err = writer.Write(result)
	return err
}
