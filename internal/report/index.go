// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/competitor-engine/pkg/types"
)

const indexFile = "reports.db"

// Index is a SQLite database of the sections of every saved report.
type Index struct {
	db         *sql.DB
	maxResults int
}

// OpenIndex opens or creates the index database at cfg.IndexDir/reports.db
// and creates the schema if it does not exist.
func OpenIndex(cfg types.StoreConfig) (*Index, error) {
	dir := cfg.IndexDir
	if dir == "" {
		dir = types.DefaultIndexDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, indexFile)+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = types.DefaultMaxResults
	}

	ix := &Index{db: db, maxResults: maxResults}
	if err := ix.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return ix, nil
}

// Close releases the database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

func (ix *Index) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			file TEXT PRIMARY KEY,
			company TEXT NOT NULL,
			timestamp TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS sections (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			file TEXT NOT NULL REFERENCES reports(file) ON DELETE CASCADE,
			stage TEXT NOT NULL,
			position INTEGER NOT NULL,
			success INTEGER NOT NULL,
			analysis TEXT,
			error TEXT,
			total_sources INTEGER,
			urls TEXT,
			citations TEXT,
			UNIQUE(file, stage)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sections_file ON sections(file)`,
		`CREATE INDEX IF NOT EXISTS idx_sections_stage ON sections(stage)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			file TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := ix.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SyncSummary holds counts from one index sync.
type SyncSummary struct {
	Indexed int
	Updated int
	Skipped int
	Removed int
	Failed  int
}

// Total returns the number of report files examined.
func (s SyncSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// HasFailures reports whether any report failed to index.
func (s SyncSummary) HasFailures() bool {
	return s.Failed > 0
}

// Sync brings the index in line with the store. New and changed report files
// (by modification time) are re-indexed, unchanged ones are skipped, and
// entries for deleted files are removed. One progress line per file is
// written to w.
func (ix *Index) Sync(ctx context.Context, store *Store, w io.Writer) (SyncSummary, error) {
	files, err := store.files()
	if err != nil {
		return SyncSummary{}, err
	}

	var summary SyncSummary
	present := make(map[string]bool, len(files))

	for _, name := range files {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}
		present[name] = true

		info, err := os.Stat(filepath.Join(store.Dir(), name))
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = ix.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE file = ?`, name,
		).Scan(&storedModTime)
		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", name)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		r, err := store.Load(name)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		if err := ix.ingestReport(ctx, name, r, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d sections)\n", name, len(r.Sections))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d sections)\n", name, len(r.Sections))
			summary.Indexed++
		}
	}

	removed, err := ix.removeMissing(ctx, present)
	if err != nil {
		return summary, err
	}
	for _, name := range removed {
		fmt.Fprintf(w, "removed %s\n", name)
	}
	summary.Removed = len(removed)

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, removed: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Removed, summary.Failed)
	return summary, nil
}

func (ix *Index) ingestReport(ctx context.Context, file string, r *types.AnalysisReport, modTime string) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE file = ?`, file); err != nil {
		return fmt.Errorf("deleting old sections: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO reports (file, company, timestamp) VALUES (?, ?, ?)
		 ON CONFLICT(file) DO UPDATE SET company=excluded.company, timestamp=excluded.timestamp`,
		file, r.CompanyName, r.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting report: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sections (file, stage, position, success, analysis, error, total_sources, urls, citations)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for pos, stage := range r.Sections.Keys() {
		res := r.Sections[stage]
		var urls, citations []string
		if res.Sources != nil {
			urls, citations = res.Sources.URLs, res.Sources.Citations
		}
		urlsJSON, _ := json.Marshal(urls)
		citationsJSON, _ := json.Marshal(citations)
		if _, err := stmt.ExecContext(ctx,
			file, string(stage), pos, res.Success, res.Analysis, res.Error,
			res.SourceCount(), string(urlsJSON), string(citationsJSON),
		); err != nil {
			return fmt.Errorf("inserting section %s: %w", stage, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (file, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(file) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		file, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

// removeMissing drops index entries whose report file is no longer present.
func (ix *Index) removeMissing(ctx context.Context, present map[string]bool) ([]string, error) {
	rows, err := ix.db.QueryContext(ctx, `SELECT file FROM indexing_status ORDER BY file`)
	if err != nil {
		return nil, fmt.Errorf("listing indexed files: %w", err)
	}
	var stale []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if !present[name] {
			stale = append(stale, name)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, name := range stale {
		for _, q := range []string{
			`DELETE FROM sections WHERE file = ?`,
			`DELETE FROM reports WHERE file = ?`,
			`DELETE FROM indexing_status WHERE file = ?`,
		} {
			if _, err := ix.db.ExecContext(ctx, q, name); err != nil {
				return nil, fmt.Errorf("removing %s: %w", name, err)
			}
		}
	}
	return stale, nil
}
