// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the competitor-engine CLI.
package main

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/competitor-engine/internal/logger"
	"github.com/pdiddy/competitor-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the competitor-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "competitor-engine",
	Short: "Competitor intelligence reports from a company profile",
	Long: `competitor-engine reads a company profile (PDF or plain text), works out
which company it describes, and runs seven research queries against a
Perplexity-compatible API: competitors, products, pricing, marketing,
customer experience, business operations and SWOT. The answers are saved as
a JSON report.

Run a single analysis with "analyze", start the web interface with "serve",
and browse or search saved reports with "reports".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Init(logConfig()); err != nil {
			return err
		}

		s, err := secrets.Load(viper.GetString("secrets_dir"), logger.Log)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Log.Debugf("loaded secrets: %v", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./competitor-engine.yaml or ~/.config/competitor-engine/competitor-engine.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-file", "", "also append log output to this file")
	rootCmd.PersistentFlags().String("reports-dir", "reports", "directory holding saved reports")
	rootCmd.PersistentFlags().String("index-dir", "index", "directory holding the report search index")
	rootCmd.PersistentFlags().String("api-key", "", "research API key (default: PERPLEXITY_API_KEY, .env or .secrets/)")

	bindFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	bindFlag("log.file", rootCmd.PersistentFlags().Lookup("log-file"))
	bindFlag("store.reports_dir", rootCmd.PersistentFlags().Lookup("reports-dir"))
	bindFlag("store.index_dir", rootCmd.PersistentFlags().Lookup("index-dir"))
	bindFlag("research.api_key", rootCmd.PersistentFlags().Lookup("api-key"))

	setDefaults()
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("competitor-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "competitor-engine"))
		}
	}

	viper.SetEnvPrefix("COMPETITOR_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logger.Log.Infof("using config file %s", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
