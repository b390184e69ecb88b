// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/competitor-engine/pkg/types"
)

// ExportYAML writes r as a YAML document with sections in stage order.
func ExportYAML(w io.Writer, r *types.AnalysisReport) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// Export writes r to w in the named format: "json" or "yaml".
func Export(w io.Writer, r *types.AnalysisReport, format string) error {
	switch format {
	case "json", "":
		return WriteJSON(w, r)
	case "yaml", "yml":
		return ExportYAML(w, r)
	default:
		return fmt.Errorf("unsupported format %q: use json or yaml", format)
	}
}
