// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/pdiddy/competitor-engine/internal/logger"
	"github.com/pdiddy/competitor-engine/internal/report"
	"github.com/pdiddy/competitor-engine/pkg/types"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Browse, export and search saved reports",
	Long: `Reports works with the JSON reports in the reports directory. Use
subcommands to list them, print one as JSON or YAML, build the search index,
or search section text across every report.`,
}

// --- list subcommand ---

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved reports",
	Args:  cobra.NoArgs,
	RunE:  runReportsList,
}

func runReportsList(cmd *cobra.Command, args []string) error {
	store, err := report.NewStore(loadConfig().Store, logger.Log)
	if err != nil {
		return err
	}
	entries, err := store.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No reports found.")
		return nil
	}
	fmt.Fprintf(out, "%-30s  %s\n", "Company", "File")
	fmt.Fprintln(out, strings.Repeat("-", 80))
	for _, e := range entries {
		fmt.Fprintf(out, "%-30s  %s\n", truncate(e.Name, 30), e.File)
	}
	fmt.Fprintf(out, "\n%d reports\n", len(entries))
	return nil
}

// --- show subcommand ---

var reportsShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print a saved report as JSON, YAML or a summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportsShow,
}

func runReportsShow(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := report.NewStore(loadConfig().Store, logger.Log)
	if err != nil {
		return err
	}
	r, err := store.Load(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == "summary" {
		report.PrintSummary(out, r)
		return nil
	}
	return report.Export(out, r, format)
}

// --- export subcommand ---

var reportsExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export a saved report as YAML or JSON",
	Long: `Export writes a saved report in the requested format, to stdout or to
the file named by --output. Sections keep the fixed stage order.`,
	Args: cobra.ExactArgs(1),
	RunE: runReportsExport,
}

func runReportsExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	store, err := report.NewStore(loadConfig().Store, logger.Log)
	if err != nil {
		return err
	}
	r, err := store.Load(args[0])
	if err != nil {
		return err
	}

	if output == "" {
		return report.Export(cmd.OutOrStdout(), r, format)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", output, err)
	}
	if err := report.Export(f, r, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", args[0], output)
	return nil
}

// --- index subcommand ---

var reportsIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or refresh the report search index",
	Long: `Index reads every report in the reports directory into a SQLite
database. Unchanged reports are skipped on subsequent runs and entries for
deleted reports are removed.`,
	Args: cobra.NoArgs,
	RunE: runReportsIndex,
}

func runReportsIndex(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	store, err := report.NewStore(cfg.Store, logger.Log)
	if err != nil {
		return err
	}
	return syncIndex(cfg.Store, store, cmd.OutOrStdout())
}

// --- search subcommand ---

var reportsSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search section text across saved reports",
	Long: `Search refreshes the index and returns report sections whose analysis
contains every query term. Filter by --stage or --company; with only filters
and no query, every matching section is listed.`,
	RunE: runReportsSearch,
}

func runReportsSearch(cmd *cobra.Command, args []string) error {
	stage, _ := cmd.Flags().GetString("stage")
	company, _ := cmd.Flags().GetString("company")
	limit, _ := cmd.Flags().GetInt("limit")
	failed, _ := cmd.Flags().GetBool("failed")

	opts := report.SearchOptions{
		Query:         strings.Join(args, " "),
		Stage:         types.Stage(stage),
		Company:       company,
		MaxResults:    limit,
		IncludeFailed: failed,
	}
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --stage, or --company")
	}

	cfg := loadConfig()
	store, err := report.NewStore(cfg.Store, logger.Log)
	if err != nil {
		return err
	}
	ix, err := report.OpenIndex(cfg.Store)
	if err != nil {
		return err
	}
	defer ix.Close()

	ctx := context.Background()
	if _, err := ix.Sync(ctx, store, io.Discard); err != nil {
		return err
	}
	results, err := ix.Search(ctx, opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(cmd.OutOrStdout(), results, jsonOutput)
}

func formatSearchOutput(out io.Writer, results []report.SearchResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}

	fmt.Fprintf(out, "%-4s  %-20s  %-20s  %-7s  %s\n", "Rank", "Company", "Section", "Sources", "Snippet")
	fmt.Fprintln(out, strings.Repeat("-", 110))
	for i, r := range results {
		section := r.Stage.Title()
		if !r.Success {
			section += " (failed)"
		}
		fmt.Fprintf(out, "%-4d  %-20s  %-20s  %-7d  %s\n",
			i+1, truncate(r.Company, 20), truncate(section, 20), r.Sources, truncate(r.Snippet, 60))
	}
	fmt.Fprintf(out, "\n%d results\n", len(results))
	return nil
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

func init() {
	reportsListCmd.Flags().Bool("json", false, "output the list as JSON")

	reportsShowCmd.Flags().String("format", "json", "output format: json, yaml or summary")

	reportsExportCmd.Flags().String("format", "yaml", "output format: yaml or json")
	reportsExportCmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")

	reportsSearchCmd.Flags().String("stage", "", "restrict to one section: competitors, products, pricing, marketing, customer_experience, business_operations, swot")
	reportsSearchCmd.Flags().String("company", "", "restrict to companies whose name contains this text")
	reportsSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	reportsSearchCmd.Flags().Bool("failed", false, "include failed sections, matched on their error text")
	reportsSearchCmd.Flags().Bool("json", false, "output results as JSON")

	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsShowCmd)
	reportsCmd.AddCommand(reportsExportCmd)
	reportsCmd.AddCommand(reportsIndexCmd)
	reportsCmd.AddCommand(reportsSearchCmd)

	rootCmd.AddCommand(reportsCmd)
}
