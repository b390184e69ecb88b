// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/competitor-engine/pkg/types"
)

// PrintSummary writes the per-section outcome of r, one line per stage.
func PrintSummary(w io.Writer, r *types.AnalysisReport) {
	fmt.Fprintln(w, "📊 ANALYSIS SUMMARY:")
	fmt.Fprintf(w, "Company: %s\n", r.CompanyName)
	fmt.Fprintf(w, "Completed: %s\n", r.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(w, "Sections analyzed: %d\n", len(r.Sections))

	for _, stage := range types.StageOrder {
		res, ok := r.Sections[stage]
		if !ok {
			continue
		}
		if res.Success {
			fmt.Fprintf(w, "✅ %s: %d sources\n", stage.Title(), res.SourceCount())
			continue
		}
		msg := res.Error
		if msg == "" {
			msg = "Unknown error"
		}
		fmt.Fprintf(w, "❌ %s: Failed - %s\n", stage.Title(), msg)
	}
}
