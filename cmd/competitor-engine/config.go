package main

import (
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/competitor-engine/internal/logger"
	"github.com/pdiddy/competitor-engine/internal/research"
	"github.com/pdiddy/competitor-engine/internal/secrets"
	"github.com/pdiddy/competitor-engine/pkg/types"
)

// envFile is the optional dotenv file consulted for the API key.
const envFile = ".env"

func setDefaults() {
	d := types.DefaultConfig()

	viper.SetDefault("secrets_dir", ".secrets/")

	viper.SetDefault("research.endpoint", d.Research.Endpoint)
	viper.SetDefault("research.model", d.Research.Model)
	viper.SetDefault("research.max_tokens", d.Research.MaxTokens)
	viper.SetDefault("research.request_timeout", d.Research.RequestTimeout)

	viper.SetDefault("pipeline.inter_stage_delay", d.Pipeline.InterStageDelay)

	viper.SetDefault("store.reports_dir", d.Store.ReportsDir)
	viper.SetDefault("store.index_dir", d.Store.IndexDir)
	viper.SetDefault("store.max_results", d.Store.MaxResults)

	viper.SetDefault("server.addr", d.Server.Addr)
	viper.SetDefault("server.uploads_dir", d.Server.UploadsDir)
	viper.SetDefault("server.analyze_rpm", d.Server.AnalyzeRPM)

	viper.SetDefault("log.level", d.Log.Level)
}

func bindFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

func logConfig() types.LogConfig {
	return types.LogConfig{
		Level: viper.GetString("log.level"),
		File:  viper.GetString("log.file"),
	}
}

// loadConfig assembles the effective configuration from defaults, the config
// file, COMPETITOR_ENGINE_* environment variables and bound flags. The API key
// is left empty; commands that call the research API add it with
// resolveAPIKey.
func loadConfig() types.Config {
	return types.Config{
		Research: types.ResearchConfig{
			Endpoint:       viper.GetString("research.endpoint"),
			Model:          viper.GetString("research.model"),
			MaxTokens:      viper.GetInt("research.max_tokens"),
			RequestTimeout: viper.GetDuration("research.request_timeout"),
		},
		Pipeline: types.PipelineConfig{
			InterStageDelay: viper.GetDuration("pipeline.inter_stage_delay"),
		},
		Store: types.StoreConfig{
			ReportsDir: viper.GetString("store.reports_dir"),
			IndexDir:   viper.GetString("store.index_dir"),
			MaxResults: viper.GetInt("store.max_results"),
		},
		Server: types.ServerConfig{
			Addr:       viper.GetString("server.addr"),
			UploadsDir: viper.GetString("server.uploads_dir"),
			AnalyzeRPM: viper.GetInt("server.analyze_rpm"),
		},
		Log: logConfig(),
	}
}

// resolveAPIKey returns the research API key from, in order: research.api_key
// (config, COMPETITOR_ENGINE_RESEARCH_API_KEY or --api-key), PERPLEXITY_API_KEY,
// the .env file, and .secrets/perplexity-api-key. Placeholder values are
// skipped. An empty result leaves the client unconfigured.
func resolveAPIKey() string {
	dotenv, err := secrets.LoadEnvFile(envFile)
	if err != nil {
		logger.Log.WithError(err).Warn("ignoring env file")
	}

	key, sawPlaceholder := secrets.Resolve(
		viper.GetString("research.api_key"),
		os.Getenv(secrets.PerplexityEnv),
		dotenv[secrets.PerplexityEnv],
		loadedSecrets[secrets.PerplexityKeyFile],
	)
	if key == "" && sawPlaceholder {
		logger.Log.Warnf("%s holds a placeholder value; set a real key", secrets.PerplexityEnv)
	}
	return key
}

// researcherFactory returns a factory that builds a research client from cfg.
// The factory reports a *types.ConfigurationError when no key is configured.
func researcherFactory(cfg types.ResearchConfig) func() (research.Researcher, error) {
	return func() (research.Researcher, error) {
		c, err := research.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}
