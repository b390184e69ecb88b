// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/competitor-engine/pkg/types"
)

const snippetRadius = 80

// SearchOptions holds parameters for searching the report index.
type SearchOptions struct {
	// Query is split on whitespace; every term must appear in the section
	// analysis (case-insensitive for ASCII).
	Query string

	// Stage restricts results to one section.
	Stage types.Stage

	// Company restricts results to reports whose company name contains it.
	Company string

	// MaxResults limits result count. Zero uses the index default.
	MaxResults int

	// IncludeFailed also returns failed sections, matched on their error text.
	IncludeFailed bool
}

// IsEmpty reports whether the search has no terms or filters.
func (o SearchOptions) IsEmpty() bool {
	return strings.TrimSpace(o.Query) == "" && o.Stage == "" && o.Company == ""
}

// SearchResult is one matching report section.
type SearchResult struct {
	File      string      `json:"file" yaml:"file"`
	Company   string      `json:"company" yaml:"company"`
	Stage     types.Stage `json:"stage" yaml:"stage"`
	Success   bool        `json:"success" yaml:"success"`
	Snippet   string      `json:"snippet" yaml:"snippet"`
	Sources   int         `json:"total_sources" yaml:"total_sources"`
	URLs      []string    `json:"urls,omitempty" yaml:"urls,omitempty"`
	Citations []string    `json:"citations,omitempty" yaml:"citations,omitempty"`
}

// Search returns the indexed sections matching opts, ordered by file and
// stage position.
func (ix *Index) Search(ctx context.Context, opts SearchOptions) ([]SearchResult, error) {
	if opts.Stage != "" && !opts.Stage.Valid() {
		return nil, fmt.Errorf("unknown stage %q", opts.Stage)
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = ix.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT s.file, r.company, s.stage, s.success, s.analysis, s.error,
			s.total_sources, s.urls, s.citations
		FROM sections s
		JOIN reports r ON r.file = s.file
		WHERE 1=1`)

	if !opts.IncludeFailed {
		qb.WriteString(` AND s.success = 1`)
	}

	terms := strings.Fields(opts.Query)
	for _, term := range terms {
		qb.WriteString(` AND (s.analysis LIKE ? ESCAPE '\' OR s.error LIKE ? ESCAPE '\')`)
		pattern := "%" + escapeLike(term) + "%"
		args = append(args, pattern, pattern)
	}

	if opts.Stage != "" {
		qb.WriteString(` AND s.stage = ?`)
		args = append(args, string(opts.Stage))
	}

	if opts.Company != "" {
		qb.WriteString(` AND r.company LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(opts.Company)+"%")
	}

	qb.WriteString(` ORDER BY s.file, s.position LIMIT ?`)
	args = append(args, maxResults)

	rows, err := ix.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying report index: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			res           SearchResult
			stage         string
			analysis      sql.NullString
			errText       sql.NullString
			urlsJSON      sql.NullString
			citationsJSON sql.NullString
		)
		if err := rows.Scan(
			&res.File, &res.Company, &stage, &res.Success, &analysis, &errText,
			&res.Sources, &urlsJSON, &citationsJSON,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		res.Stage = types.Stage(stage)

		text := analysis.String
		if !res.Success {
			text = errText.String
		}
		res.Snippet = snippet(text, terms)

		if urlsJSON.Valid {
			json.Unmarshal([]byte(urlsJSON.String), &res.URLs)
		}
		if citationsJSON.Valid {
			json.Unmarshal([]byte(citationsJSON.String), &res.Citations)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// Companies returns the distinct company names in the index, sorted.
func (ix *Index) Companies(ctx context.Context) ([]string, error) {
	rows, err := ix.db.QueryContext(ctx, `SELECT DISTINCT company FROM reports ORDER BY company`)
	if err != nil {
		return nil, fmt.Errorf("listing companies: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}

// snippet returns the text around the first occurrence of any term, collapsed
// to a single line. Without a match it returns the start of the text.
func snippet(text string, terms []string) string {
	text = strings.Join(strings.Fields(text), " ")
	lower := strings.ToLower(text)

	start := -1
	for _, term := range terms {
		if i := strings.Index(lower, strings.ToLower(term)); i >= 0 && (start < 0 || i < start) {
			start = i
		}
	}

	runes := []rune(text)
	if start < 0 {
		if len(runes) <= 2*snippetRadius {
			return text
		}
		return string(runes[:2*snippetRadius]) + "..."
	}

	// Lowercasing can change byte lengths outside ASCII.
	start = min(start, len(text))
	pos := len([]rune(text[:start]))
	from := max(pos-snippetRadius, 0)
	to := min(pos+snippetRadius, len(runes))

	out := string(runes[from:to])
	if from > 0 {
		out = "..." + out
	}
	if to < len(runes) {
		out += "..."
	}
	return out
}
