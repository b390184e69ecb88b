// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/pdiddy/competitor-engine/internal/logger"
	"github.com/pdiddy/competitor-engine/internal/report"
	"github.com/pdiddy/competitor-engine/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web interface",
	Long: `Serve starts the web interface: an upload page at / that runs an analysis
on the submitted document, a dashboard of saved reports at /dashboard with
downloads under /reports/, and a JSON API at /api/reports and /api/search.

The API key is checked on every analysis request, so the server starts
without one and reports the missing key to the browser.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	debug, _ := cmd.Flags().GetBool("debug")
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg := loadConfig()
	cfg.Research.APIKey = resolveAPIKey()

	store, err := report.NewStore(cfg.Store, logger.Log)
	if err != nil {
		return err
	}
	ix, err := report.OpenIndex(cfg.Store)
	if err != nil {
		return err
	}
	defer ix.Close()

	srv, err := server.NewServer(server.Options{
		Config:        cfg.Server,
		Pipeline:      cfg.Pipeline,
		Store:         store,
		Index:         ix,
		NewResearcher: researcherFactory(cfg.Research),
		Log:           logger.Log,
		Progress:      cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	logger.Log.WithField("addr", cfg.Server.Addr).Info("starting web server")
	return srv.Run(cfg.Server.Addr)
}

func init() {
	serveCmd.Flags().String("addr", ":5000", "listen address")
	serveCmd.Flags().String("uploads-dir", "uploads", "directory for uploaded documents")
	serveCmd.Flags().Int("analyze-rpm", 0, "maximum analyses per minute (0 = unlimited)")
	serveCmd.Flags().Bool("debug", false, "run gin in debug mode")

	bindFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	bindFlag("server.uploads_dir", serveCmd.Flags().Lookup("uploads-dir"))
	bindFlag("server.analyze_rpm", serveCmd.Flags().Lookup("analyze-rpm"))

	rootCmd.AddCommand(serveCmd)
}
