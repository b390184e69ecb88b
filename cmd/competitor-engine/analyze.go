// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/competitor-engine/internal/analysis"
	"github.com/pdiddy/competitor-engine/internal/ingest"
	"github.com/pdiddy/competitor-engine/internal/logger"
	"github.com/pdiddy/competitor-engine/internal/report"
	"github.com/pdiddy/competitor-engine/internal/research"
	"github.com/pdiddy/competitor-engine/internal/subject"
	"github.com/pdiddy/competitor-engine/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Run a competitor analysis on a company profile",
	Long: `Analyze reads a company profile (a .pdf file, or any other file as UTF-8
text), identifies the company, and runs the seven research stages one after
another. The report is saved as JSON and a per-section summary is printed.

Stage failures are recorded in the report and do not stop the run. The
command fails only when the API key is missing, the document cannot be read,
or the report cannot be saved.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	company, _ := cmd.Flags().GetString("company")
	output, _ := cmd.Flags().GetString("output")
	index, _ := cmd.Flags().GetBool("index")

	cfg := loadConfig()
	cfg.Research.APIKey = resolveAPIKey()

	client, err := research.NewClient(cfg.Research)
	if err != nil {
		return err
	}

	text, err := ingest.ExtractFile(args[0])
	if err != nil {
		return err
	}

	company = strings.TrimSpace(company)
	if company == "" {
		company = subject.Identify(text)
	}

	out := cmd.OutOrStdout()
	pipeline := analysis.NewPipeline(client, cfg.Pipeline, logger.Log, out)
	r := pipeline.Analyze(context.Background(), text, company)

	store, err := report.NewStore(cfg.Store, logger.Log)
	if err != nil {
		return err
	}
	path, err := store.Save(r, output)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n💾 Results saved to: %s\n\n", path)
	report.PrintSummary(out, r)

	if index {
		return syncIndex(cfg.Store, store, io.Discard)
	}
	return nil
}

func syncIndex(cfg types.StoreConfig, store *report.Store, w io.Writer) error {
	ix, err := report.OpenIndex(cfg)
	if err != nil {
		return err
	}
	defer ix.Close()

	summary, err := ix.Sync(context.Background(), store, w)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d report(s) failed indexing", summary.Failed)
	}
	return nil
}

func init() {
	analyzeCmd.Flags().String("company", "", "company name (default: identified from the document)")
	analyzeCmd.Flags().StringP("output", "o", "", "report path (default: reports/competitor_analysis_<company>_<timestamp>.json)")
	analyzeCmd.Flags().Duration("delay", 0, "pause between research stages (default 2s)")
	analyzeCmd.Flags().Bool("index", false, "update the report search index after saving")

	bindFlag("pipeline.inter_stage_delay", analyzeCmd.Flags().Lookup("delay"))

	rootCmd.AddCommand(analyzeCmd)
}
