// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report persists analysis reports as JSON files, lists and loads
// them, renders summaries and YAML exports, and maintains a SQLite index
// for searching across saved reports.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/competitor-engine/internal/subject"
	"github.com/pdiddy/competitor-engine/pkg/types"
)

const reportExt = ".json"

// ErrInvalidName is returned for report names that are not a plain file name
// inside the reports directory.
var ErrInvalidName = errors.New("invalid report file name")

// PersistenceError reports a report that could not be written.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("saving report to %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Store reads and writes reports in a single directory.
type Store struct {
	dir string
	log logrus.FieldLogger
	now func() time.Time
}

// NewStore creates the reports directory if needed and returns a Store over it.
func NewStore(cfg types.StoreConfig, log logrus.FieldLogger) (*Store, error) {
	dir := cfg.ReportsDir
	if dir == "" {
		dir = types.DefaultReportsDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating reports directory: %w", err)
	}
	return &Store{dir: dir, log: log, now: time.Now}, nil
}

// Dir returns the reports directory.
func (s *Store) Dir() string {
	return s.dir
}

// FileName is the name the web UI saves a company's report under:
// "analysis_<company>.json" with spaces and path separators replaced by
// underscores. Reports for the same company overwrite each other.
func FileName(company string) string {
	return "analysis_" + underscored(company) + reportExt
}

// DefaultFileName is the timestamped name used when no output path is given:
// "competitor_analysis_<company>_<YYYYMMDD_HHMMSS>.json".
func DefaultFileName(company string, at time.Time) string {
	if company == "" {
		company = "unknown"
	}
	return fmt.Sprintf("competitor_analysis_%s_%s%s", underscored(company), at.Format("20060102_150405"), reportExt)
}

func underscored(s string) string {
	return strings.NewReplacer(" ", "_", "/", "_", `\`, "_").Replace(s)
}

// Save writes r as indented UTF-8 JSON and returns the path written. An empty
// path selects DefaultFileName inside the reports directory; a bare file name
// is placed inside the reports directory; any other path is used as given.
// Failures are returned as *PersistenceError.
func (s *Store) Save(r *types.AnalysisReport, path string) (string, error) {
	switch {
	case path == "":
		path = filepath.Join(s.dir, DefaultFileName(r.CompanyName, s.now()))
	case filepath.Base(path) == path:
		path = filepath.Join(s.dir, path)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, r); err != nil {
		return "", &PersistenceError{Path: path, Err: err}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", &PersistenceError{Path: path, Err: err}
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", &PersistenceError{Path: path, Err: err}
	}

	s.log.WithField("path", path).Info("report saved")
	return path, nil
}

// WriteJSON encodes r with two-space indentation and without escaping HTML
// characters or non-ASCII text.
func WriteJSON(w io.Writer, r *types.AnalysisReport) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// Entry is one row of the report listing.
type Entry struct {
	Name string `json:"name"`
	File string `json:"file"`
}

// List returns every *.json report in the directory sorted by file name.
// Files that cannot be read or decoded are skipped with a warning. A report
// without a company_name key is listed as subject.Unknown.
func (s *Store) List() ([]Entry, error) {
	files, err := s.files()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(files))
	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			s.log.WithError(err).Warnf("could not read %s", name)
			continue
		}

		var head struct {
			CompanyName *string `json:"company_name"`
		}
		if err := json.Unmarshal(data, &head); err != nil {
			s.log.WithError(err).Warnf("could not decode %s", name)
			continue
		}

		display := subject.Unknown
		if head.CompanyName != nil {
			display = *head.CompanyName
		}
		entries = append(entries, Entry{Name: display, File: name})
	}
	return entries, nil
}

// files returns the names of the report files in the directory, sorted.
func (s *Store) files() ([]string, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading reports directory %s: %w", s.dir, err)
	}
	var names []string
	for _, e := range dirEntries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), reportExt) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Path resolves a report file name to its location in the directory. Names
// containing path separators, "..", or lacking the .json suffix are rejected
// with ErrInvalidName.
func (s *Store) Path(file string) (string, error) {
	if file == "" || file != filepath.Base(file) || strings.ContainsAny(file, `/\`) ||
		file == "." || file == ".." || !strings.HasSuffix(file, reportExt) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, file)
	}
	return filepath.Join(s.dir, file), nil
}

// Load reads and decodes the named report. A missing file yields an error
// wrapping fs.ErrNotExist.
func (s *Store) Load(file string) (*types.AnalysisReport, error) {
	path, err := s.Path(file)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report %s: %w", file, err)
	}
	var r types.AnalysisReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", file, err)
	}
	return &r, nil
}
