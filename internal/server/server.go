// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server provides the web interface: a document upload page that
// runs an analysis, a dashboard of saved reports with downloads, and a small
// JSON API over the report store and index.
package server

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/pdiddy/competitor-engine/internal/report"
	"github.com/pdiddy/competitor-engine/internal/research"
	"github.com/pdiddy/competitor-engine/pkg/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// ResearcherFactory builds the research backend for one analysis. It returns
// a *types.ConfigurationError when no API key is configured.
type ResearcherFactory func() (research.Researcher, error)

// Options holds the dependencies of a Server.
type Options struct {
	Config        types.ServerConfig
	Pipeline      types.PipelineConfig
	Store         *report.Store
	Index         *report.Index // optional; search is unavailable without it
	NewResearcher ResearcherFactory
	Log           logrus.FieldLogger
	Progress      io.Writer // per-stage progress lines; discarded when nil
}

// Server holds the state for the web server.
type Server struct {
	router        *gin.Engine
	store         *report.Store
	index         *report.Index
	newResearcher ResearcherFactory
	pipeline      types.PipelineConfig
	uploadsDir    string
	limiter       *rate.Limiter
	log           logrus.FieldLogger
	progress      io.Writer
}

// NewServer creates a Server and registers its routes.
func NewServer(opts Options) (*Server, error) {
	uploads := opts.Config.UploadsDir
	if uploads == "" {
		uploads = types.DefaultUploadsDir
	}
	if err := os.MkdirAll(uploads, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads directory: %w", err)
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))
	r.SetHTMLTemplate(tmpl)

	s := &Server{
		router:        r,
		store:         opts.Store,
		index:         opts.Index,
		newResearcher: opts.NewResearcher,
		pipeline:      opts.Pipeline,
		uploadsDir:    uploads,
		log:           log,
		progress:      progress,
	}
	if rpm := opts.Config.AnalyzeRPM; rpm > 0 {
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm)
	}
	s.setupRoutes()
	return s, nil
}

// Run starts the server on the specified address.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/dashboard", s.handleDashboard)
	s.router.POST("/analyze", s.throttle(), s.handleAnalyze)
	s.router.GET("/reports/:file", s.handleDownload)

	api := s.router.Group("/api")
	api.GET("/reports", s.handleListReports)
	api.GET("/search", s.handleSearch)

	s.router.GET("/health", s.healthCheck)
}

// Health check
func (s *Server) healthCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}

// throttle rejects requests beyond the configured analyses per minute.
func (s *Server) throttle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter != nil && !s.limiter.Allow() {
			handleError(c, NewAppError(http.StatusTooManyRequests, "Too many analysis requests, try again later", nil))
			return
		}
		c.Next()
	}
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Round(time.Millisecond).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request")
	}
}
