// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pdiddy/competitor-engine/internal/analysis"
	"github.com/pdiddy/competitor-engine/internal/ingest"
	"github.com/pdiddy/competitor-engine/internal/report"
	"github.com/pdiddy/competitor-engine/internal/subject"
	"github.com/pdiddy/competitor-engine/pkg/types"
)

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", nil)
}

func (s *Server) handleDashboard(c *gin.Context) {
	entries, err := s.store.List()
	if err != nil {
		handleError(c, err)
		return
	}
	c.HTML(http.StatusOK, "dashboard.html", gin.H{"reports": entries})
}

// handleAnalyze runs a full analysis on an uploaded document and saves the
// report. The pipeline keeps running if the client disconnects.
func (s *Server) handleAnalyze(c *gin.Context) {
	researcher, err := s.newResearcher()
	if err != nil {
		handleError(c, err)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) && hasFormValue(c, "file") {
			handleError(c, NewAppError(http.StatusBadRequest, "No selected file", err))
			return
		}
		handleError(c, NewAppError(http.StatusBadRequest, "No file part", err))
		return
	}
	if fh.Filename == "" {
		handleError(c, NewAppError(http.StatusBadRequest, "No selected file", nil))
		return
	}

	path := filepath.Join(s.uploadsDir, uuid.NewString()+"_"+secureFilename(fh.Filename))
	if err := c.SaveUploadedFile(fh, path); err != nil {
		handleError(c, err)
		return
	}

	text, err := ingest.ExtractFile(path)
	if err != nil {
		handleError(c, err)
		return
	}

	company := subject.Identify(text)
	log := s.log.WithField("upload", filepath.Base(path))
	log.WithField("company", company).Info("analysis requested")

	ctx := context.WithoutCancel(c.Request.Context())
	pipeline := analysis.NewPipeline(researcher, s.pipeline, s.log, s.progress)
	r := pipeline.Analyze(ctx, text, company)

	saved, err := s.store.Save(r, report.FileName(company))
	if err != nil {
		handleError(c, err)
		return
	}

	if s.index != nil {
		if _, err := s.index.Sync(ctx, s.store, io.Discard); err != nil {
			log.WithError(err).Warn("index sync failed")
		}
	}

	c.JSON(http.StatusOK, gin.H{"report_file": filepath.Base(saved)})
}

func (s *Server) handleDownload(c *gin.Context) {
	file := c.Param("file")
	path, err := s.store.Path(file)
	if err != nil {
		handleError(c, err)
		return
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		if err == nil {
			err = os.ErrNotExist
		}
		handleError(c, err)
		return
	}
	c.FileAttachment(path, file)
}

func (s *Server) handleListReports(c *gin.Context) {
	entries, err := s.store.List()
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": entries})
}

func (s *Server) handleSearch(c *gin.Context) {
	if s.index == nil {
		handleError(c, NewAppError(http.StatusServiceUnavailable, "Search index not available", nil))
		return
	}

	opts := report.SearchOptions{
		Query:         c.Query("q"),
		Stage:         types.Stage(c.Query("stage")),
		Company:       c.Query("company"),
		IncludeFailed: c.Query("failed") == "true",
	}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			handleError(c, NewAppError(http.StatusBadRequest, "Invalid limit parameter", err))
			return
		}
		opts.MaxResults = n
	}
	if opts.IsEmpty() {
		handleError(c, NewAppError(http.StatusBadRequest, "Missing q, stage or company parameter", nil))
		return
	}
	if opts.Stage != "" && !opts.Stage.Valid() {
		handleError(c, NewAppError(http.StatusBadRequest, "Unknown stage", nil))
		return
	}

	ctx := c.Request.Context()
	if _, err := s.index.Sync(ctx, s.store, io.Discard); err != nil {
		handleError(c, err)
		return
	}

	results, err := s.index.Search(ctx, opts)
	if err != nil {
		handleError(c, err)
		return
	}
	if results == nil {
		results = []report.SearchResult{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func hasFormValue(c *gin.Context, key string) bool {
	form := c.Request.MultipartForm
	if form == nil {
		return false
	}
	_, ok := form.Value[key]
	return ok
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// secureFilename reduces an uploaded file name to a safe base name made of
// ASCII letters, digits, dots, dashes and underscores. The extension is kept
// so the document kind can still be detected.
func secureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." {
		name = ""
	}
	ext := filepath.Ext(name)
	stem := strings.Join(strings.Fields(strings.TrimSuffix(name, ext)), "_")
	stem = strings.TrimLeft(unsafeChars.ReplaceAllString(stem, ""), "._")
	if stem == "" {
		stem = "upload"
	}
	return stem + unsafeChars.ReplaceAllString(ext, "")
}
