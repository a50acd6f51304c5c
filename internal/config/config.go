package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Generation providers accepted in generation.provider.
const (
	ProviderClaude   = "claude"
	ProviderGemini   = "gemini"
	ProviderFallback = "fallback"
)

// ServerConfig configures the HTTP adapter
type ServerConfig struct {
	// Addr is the listen address
	Addr string `yaml:"addr"`

	// ReadTimeout bounds reading a request
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds a whole request, generation included
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// AllowedOrigins lists CORS origins ("*" allows any)
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// SessionConfig configures idle abandonment
type SessionConfig struct {
	// IdleTimeout is how long an active session may sit without a turn
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// SweepInterval is how often idle sessions are checked
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// GenerationConfig selects and configures the reflection provider
type GenerationConfig struct {
	// Provider is claude, gemini or fallback
	Provider string `yaml:"provider"`

	// ClaudePath is the claude CLI binary
	ClaudePath string `yaml:"claude_path"`

	// Model overrides the provider's default model
	Model string `yaml:"model"`

	// Timeout bounds one generation call
	Timeout time.Duration `yaml:"timeout"`

	// APIKey authenticates the gemini provider
	APIKey string `yaml:"api_key"`
}

// RemoteScoringConfig points the gates at external classifier endpoints
type RemoteScoringConfig struct {
	Enabled bool `yaml:"enabled"`

	// BaseURL fills any per-gate URL left empty with BaseURL/<gate>
	BaseURL        string        `yaml:"base_url"`
	GravityURL     string        `yaml:"gravity_url"`
	QuestionURL    string        `yaml:"question_url"`
	ConsequenceURL string        `yaml:"consequence_url"`
	Timeout        time.Duration `yaml:"timeout"`
}

// ScoringConfig configures the scoring gates
type ScoringConfig struct {
	Remote RemoteScoringConfig `yaml:"remote"`
}

// MetricsConfig configures silent-metrics reporting
type MetricsConfig struct {
	// Enabled records a summary for every finished session
	Enabled bool `yaml:"enabled"`

	// DBPath is the SQLite database file
	DBPath string `yaml:"db_path"`
}

// Config represents foresight configuration options
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Session    SessionConfig    `yaml:"session"`
	Generation GenerationConfig `yaml:"generation"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Metrics    MetricsConfig    `yaml:"metrics"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where log files are written; empty logs to the console only
	LogDir string `yaml:"log_dir"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Session: SessionConfig{
			IdleTimeout:   30 * time.Minute,
			SweepInterval: time.Minute,
		},
		Generation: GenerationConfig{
			Provider:   ProviderFallback,
			ClaudePath: "claude",
			Timeout:    30 * time.Second,
		},
		Scoring: ScoringConfig{
			Remote: RemoteScoringConfig{
				Enabled: false,
				Timeout: 5 * time.Second,
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			DBPath:  ".foresight/metrics.db",
		},
		LogLevel: "info",
		LogDir:   ".foresight/logs",
	}
}

// yamlConfig mirrors Config with durations as strings so "30s" style values parse.
type yamlConfig struct {
	Server struct {
		Addr            string   `yaml:"addr"`
		ReadTimeout     string   `yaml:"read_timeout"`
		WriteTimeout    string   `yaml:"write_timeout"`
		ShutdownTimeout string   `yaml:"shutdown_timeout"`
		AllowedOrigins  []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Session struct {
		IdleTimeout   string `yaml:"idle_timeout"`
		SweepInterval string `yaml:"sweep_interval"`
	} `yaml:"session"`
	Generation struct {
		Provider   string `yaml:"provider"`
		ClaudePath string `yaml:"claude_path"`
		Model      string `yaml:"model"`
		Timeout    string `yaml:"timeout"`
		APIKey     string `yaml:"api_key"`
	} `yaml:"generation"`
	Scoring struct {
		Remote struct {
			Enabled        bool   `yaml:"enabled"`
			BaseURL        string `yaml:"base_url"`
			GravityURL     string `yaml:"gravity_url"`
			QuestionURL    string `yaml:"question_url"`
			ConsequenceURL string `yaml:"consequence_url"`
			Timeout        string `yaml:"timeout"`
		} `yaml:"remote"`
	} `yaml:"scoring"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		DBPath  string `yaml:"db_path"`
	} `yaml:"metrics"`
	LogLevel string `yaml:"log_level"`
	LogDir   string `yaml:"log_dir"`
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	durations := []struct {
		key   string
		value string
		dst   *time.Duration
	}{
		{"server.read_timeout", yamlCfg.Server.ReadTimeout, &cfg.Server.ReadTimeout},
		{"server.write_timeout", yamlCfg.Server.WriteTimeout, &cfg.Server.WriteTimeout},
		{"server.shutdown_timeout", yamlCfg.Server.ShutdownTimeout, &cfg.Server.ShutdownTimeout},
		{"session.idle_timeout", yamlCfg.Session.IdleTimeout, &cfg.Session.IdleTimeout},
		{"session.sweep_interval", yamlCfg.Session.SweepInterval, &cfg.Session.SweepInterval},
		{"generation.timeout", yamlCfg.Generation.Timeout, &cfg.Generation.Timeout},
		{"scoring.remote.timeout", yamlCfg.Scoring.Remote.Timeout, &cfg.Scoring.Remote.Timeout},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s format %q: %w", d.key, d.value, err)
		}
		*d.dst = parsed
	}

	strs := []struct {
		value string
		dst   *string
	}{
		{yamlCfg.Server.Addr, &cfg.Server.Addr},
		{yamlCfg.Generation.Provider, &cfg.Generation.Provider},
		{yamlCfg.Generation.ClaudePath, &cfg.Generation.ClaudePath},
		{yamlCfg.Generation.Model, &cfg.Generation.Model},
		{yamlCfg.Generation.APIKey, &cfg.Generation.APIKey},
		{yamlCfg.Scoring.Remote.BaseURL, &cfg.Scoring.Remote.BaseURL},
		{yamlCfg.Scoring.Remote.GravityURL, &cfg.Scoring.Remote.GravityURL},
		{yamlCfg.Scoring.Remote.QuestionURL, &cfg.Scoring.Remote.QuestionURL},
		{yamlCfg.Scoring.Remote.ConsequenceURL, &cfg.Scoring.Remote.ConsequenceURL},
		{yamlCfg.LogLevel, &cfg.LogLevel},
	}
	for _, s := range strs {
		if s.value != "" {
			*s.dst = s.value
		}
	}
	if len(yamlCfg.Server.AllowedOrigins) > 0 {
		cfg.Server.AllowedOrigins = yamlCfg.Server.AllowedOrigins
	}

	// Booleans and paths that may be explicitly blanked need presence checks
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if _, exists := rawMap["log_dir"]; exists {
			cfg.LogDir = yamlCfg.LogDir
		}
		if metrics, ok := rawMap["metrics"].(map[string]interface{}); ok {
			if _, exists := metrics["enabled"]; exists {
				cfg.Metrics.Enabled = yamlCfg.Metrics.Enabled
			}
			if _, exists := metrics["db_path"]; exists {
				cfg.Metrics.DBPath = yamlCfg.Metrics.DBPath
			}
		}
		if scoring, ok := rawMap["scoring"].(map[string]interface{}); ok {
			if remote, ok := scoring["remote"].(map[string]interface{}); ok {
				if _, exists := remote["enabled"]; exists {
					cfg.Scoring.Remote.Enabled = yamlCfg.Scoring.Remote.Enabled
				}
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, "config.yaml"))
}

// envOverrides holds the environment variables that override file values.
// Empty or zero values leave the configuration untouched.
type envOverrides struct {
	Addr              string        `env:"FORESIGHT_ADDR"`
	LogLevel          string        `env:"FORESIGHT_LOG_LEVEL"`
	LogDir            string        `env:"FORESIGHT_LOG_DIR"`
	Provider          string        `env:"FORESIGHT_GENERATION_PROVIDER"`
	Model             string        `env:"FORESIGHT_GENERATION_MODEL"`
	GenerationTimeout time.Duration `env:"FORESIGHT_GENERATION_TIMEOUT"`
	GeminiAPIKey      string        `env:"GEMINI_API_KEY"`
	MetricsDB         string        `env:"FORESIGHT_METRICS_DB"`
	RemoteScoringURL  string        `env:"FORESIGHT_SCORING_REMOTE_URL"`
	AllowedOrigins    []string      `env:"FORESIGHT_ALLOWED_ORIGINS" envSeparator:","`
}

// ApplyEnv overlays FORESIGHT_* environment variables (and GEMINI_API_KEY)
// on the configuration. Setting FORESIGHT_SCORING_REMOTE_URL enables remote
// scoring against that base URL.
func (c *Config) ApplyEnv() error {
	var e envOverrides
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if e.Addr != "" {
		c.Server.Addr = e.Addr
	}
	if e.LogLevel != "" {
		c.LogLevel = e.LogLevel
	}
	if e.LogDir != "" {
		c.LogDir = e.LogDir
	}
	if e.Provider != "" {
		c.Generation.Provider = e.Provider
	}
	if e.Model != "" {
		c.Generation.Model = e.Model
	}
	if e.GenerationTimeout != 0 {
		c.Generation.Timeout = e.GenerationTimeout
	}
	if e.GeminiAPIKey != "" {
		c.Generation.APIKey = e.GeminiAPIKey
	}
	if e.MetricsDB != "" {
		c.Metrics.DBPath = e.MetricsDB
	}
	if e.RemoteScoringURL != "" {
		c.Scoring.Remote.Enabled = true
		c.Scoring.Remote.BaseURL = e.RemoteScoringURL
	}
	if len(e.AllowedOrigins) > 0 {
		c.Server.AllowedOrigins = e.AllowedOrigins
	}
	return nil
}

// Load reads the file at path, then applies environment overrides and
// validates the result. Flags are merged by the caller afterwards.
func Load(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
// This allows CLI flags to take precedence over config file settings
func (c *Config) MergeWithFlags(addr *string, logLevel *string, logDir *string, provider *string) {
	if addr != nil {
		c.Server.Addr = *addr
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if provider != nil {
		c.Generation.Provider = *provider
	}
}

// RemoteURLs returns the gravity, question and consequence endpoints, filling
// blanks from BaseURL.
func (r RemoteScoringConfig) RemoteURLs() (gravity, question, consequence string) {
	pick := func(explicit, name string) string {
		if explicit != "" || r.BaseURL == "" {
			return explicit
		}
		return strings.TrimRight(r.BaseURL, "/") + "/" + name
	}
	return pick(r.GravityURL, "gravity"), pick(r.QuestionURL, "question"), pick(r.ConsequenceURL, "consequence")
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	c.LogLevel = strings.ToLower(c.LogLevel)
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}

	durations := []struct {
		key   string
		value time.Duration
	}{
		{"server.read_timeout", c.Server.ReadTimeout},
		{"server.write_timeout", c.Server.WriteTimeout},
		{"server.shutdown_timeout", c.Server.ShutdownTimeout},
		{"session.idle_timeout", c.Session.IdleTimeout},
		{"session.sweep_interval", c.Session.SweepInterval},
		{"generation.timeout", c.Generation.Timeout},
		{"scoring.remote.timeout", c.Scoring.Remote.Timeout},
	}
	for _, d := range durations {
		if d.value < 0 {
			return fmt.Errorf("%s must be >= 0, got %v", d.key, d.value)
		}
	}
	if c.Session.IdleTimeout > 0 && c.Session.SweepInterval == 0 {
		return fmt.Errorf("session.sweep_interval must be > 0 when session.idle_timeout is set")
	}

	switch c.Generation.Provider {
	case ProviderClaude, ProviderFallback:
	case ProviderGemini:
		if c.Generation.APIKey == "" {
			return fmt.Errorf("generation.api_key (or GEMINI_API_KEY) is required when provider is gemini")
		}
	default:
		return fmt.Errorf("invalid generation.provider %q, must be one of: claude, gemini, fallback", c.Generation.Provider)
	}

	if c.Scoring.Remote.Enabled {
		g, q, cq := c.Scoring.Remote.RemoteURLs()
		if g == "" && q == "" && cq == "" {
			return fmt.Errorf("scoring.remote is enabled but no endpoint is configured")
		}
	}

	if c.Metrics.Enabled && c.Metrics.DBPath == "" {
		return fmt.Errorf("metrics.db_path cannot be empty when metrics are enabled")
	}

	return nil
}
