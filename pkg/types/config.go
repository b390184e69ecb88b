package types

import "time"

// Defaults applied by DefaultConfig and by components when a field is left zero.
const (
	DefaultEndpoint        = "https://api.perplexity.ai/chat/completions"
	DefaultModel           = "sonar-deep-research"
	DefaultMaxTokens       = 4000
	DefaultRequestTimeout  = 10 * time.Minute
	DefaultInterStageDelay = 2 * time.Second
	DefaultReportsDir      = "reports"
	DefaultIndexDir        = "index"
	DefaultUploadsDir      = "uploads"
	DefaultAddr            = ":5000"
	DefaultMaxResults      = 20
)

// ResearchConfig holds settings for the deep-research completions client.
type ResearchConfig struct {
	// APIKey is the bearer token sent with every request. Resolved from the
	// config file, PERPLEXITY_API_KEY, a .env file, or .secrets/perplexity-api-key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Endpoint is the chat completions URL.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Model is the research model identifier (e.g. "sonar-deep-research").
	Model string `json:"model" yaml:"model"`

	// MaxTokens caps the length of each completion (default 4000).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// RequestTimeout bounds a single research request. Zero means no timeout.
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`
}

// PipelineConfig holds settings for the seven-stage analysis run.
type PipelineConfig struct {
	// InterStageDelay is the pause between consecutive stages (default 2s).
	// No delay follows the final stage.
	InterStageDelay time.Duration `json:"inter_stage_delay" yaml:"inter_stage_delay"`
}

// StoreConfig holds settings for report persistence and the report index.
type StoreConfig struct {
	// ReportsDir is the directory holding saved JSON reports.
	ReportsDir string `json:"reports_dir" yaml:"reports_dir"`

	// IndexDir is the directory holding the SQLite report index.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ServerConfig holds settings for the web UI.
type ServerConfig struct {
	// Addr is the listen address (default ":5000").
	Addr string `json:"addr" yaml:"addr"`

	// UploadsDir is where uploaded documents are written before extraction.
	UploadsDir string `json:"uploads_dir" yaml:"uploads_dir"`

	// AnalyzeRPM limits analyze requests per minute. Zero disables the limit.
	AnalyzeRPM int `json:"analyze_rpm" yaml:"analyze_rpm"`
}

// LogConfig selects the log level and an optional log file.
type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	File  string `json:"file,omitempty" yaml:"file,omitempty"`
}

// Config groups all component configurations.
type Config struct {
	Research ResearchConfig `json:"research" yaml:"research"`
	Pipeline PipelineConfig `json:"pipeline" yaml:"pipeline"`
	Store    StoreConfig    `json:"store" yaml:"store"`
	Server   ServerConfig   `json:"server" yaml:"server"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

// DefaultConfig returns a Config populated with the package defaults and no API key.
func DefaultConfig() Config {
	return Config{
		Research: ResearchConfig{
			Endpoint:       DefaultEndpoint,
			Model:          DefaultModel,
			MaxTokens:      DefaultMaxTokens,
			RequestTimeout: DefaultRequestTimeout,
		},
		Pipeline: PipelineConfig{
			InterStageDelay: DefaultInterStageDelay,
		},
		Store: StoreConfig{
			ReportsDir: DefaultReportsDir,
			IndexDir:   DefaultIndexDir,
			MaxResults: DefaultMaxResults,
		},
		Server: ServerConfig{
			Addr:       DefaultAddr,
			UploadsDir: DefaultUploadsDir,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
