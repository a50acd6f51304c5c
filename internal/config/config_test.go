package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// clearEnv blanks every override so the host environment cannot leak into tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"FORESIGHT_ADDR", "FORESIGHT_LOG_LEVEL", "FORESIGHT_LOG_DIR",
		"FORESIGHT_GENERATION_PROVIDER", "FORESIGHT_GENERATION_MODEL", "FORESIGHT_GENERATION_TIMEOUT",
		"GEMINI_API_KEY", "FORESIGHT_METRICS_DB", "FORESIGHT_SCORING_REMOTE_URL",
	} {
		t.Setenv(name, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, time.Minute, cfg.Session.SweepInterval)
	assert.Equal(t, ProviderFallback, cfg.Generation.Provider)
	assert.False(t, cfg.Scoring.Remote.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "info", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigValidFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
  write_timeout: 2m
  allowed_origins: ["https://app.example.com"]
session:
  idle_timeout: 10m
  sweep_interval: 30s
generation:
  provider: claude
  model: sonnet
  timeout: 45s
scoring:
  remote:
    enabled: true
    base_url: http://localhost:5000/score/
log_level: debug
log_dir: /tmp/foresight-logs
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 2*time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout, "unset values keep defaults")
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 10*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, 30*time.Second, cfg.Session.SweepInterval)
	assert.Equal(t, ProviderClaude, cfg.Generation.Provider)
	assert.Equal(t, "claude", cfg.Generation.ClaudePath)
	assert.Equal(t, "sonnet", cfg.Generation.Model)
	assert.Equal(t, 45*time.Second, cfg.Generation.Timeout)
	assert.True(t, cfg.Scoring.Remote.Enabled)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/foresight-logs", cfg.LogDir)
	assert.True(t, cfg.Metrics.Enabled)

	g, q, c := cfg.Scoring.Remote.RemoteURLs()
	assert.Equal(t, "http://localhost:5000/score/gravity", g)
	assert.Equal(t, "http://localhost:5000/score/question", q)
	assert.Equal(t, "http://localhost:5000/score/consequence", c)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigExplicitFalseAndEmpty(t *testing.T) {
	path := writeConfig(t, `
metrics:
  enabled: false
  db_path: ""
log_dir: ""
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Empty(t, cfg.Metrics.DBPath)
	assert.Empty(t, cfg.LogDir)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFileNotExists(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "malformed yaml", content: "server: [unclosed", wantErr: "failed to parse config file"},
		{name: "bad duration", content: "session:\n  idle_timeout: soon\n", wantErr: "invalid session.idle_timeout format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfigFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log_level: warn\n"), 0644))

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestApplyEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("FORESIGHT_ADDR", ":7000")
	t.Setenv("FORESIGHT_LOG_LEVEL", "trace")
	t.Setenv("FORESIGHT_GENERATION_PROVIDER", "gemini")
	t.Setenv("FORESIGHT_GENERATION_TIMEOUT", "12s")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("FORESIGHT_METRICS_DB", "/var/lib/foresight/metrics.db")
	t.Setenv("FORESIGHT_SCORING_REMOTE_URL", "http://scorer:5000")

	cfg, err := Load(writeConfig(t, "server:\n  addr: \":9090\"\nlog_level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.Addr, "env beats file")
	assert.Equal(t, "trace", cfg.LogLevel)
	assert.Equal(t, ProviderGemini, cfg.Generation.Provider)
	assert.Equal(t, 12*time.Second, cfg.Generation.Timeout)
	assert.Equal(t, "test-key", cfg.Generation.APIKey)
	assert.Equal(t, "/var/lib/foresight/metrics.db", cfg.Metrics.DBPath)
	assert.True(t, cfg.Scoring.Remote.Enabled)
	g, _, _ := cfg.Scoring.Remote.RemoteURLs()
	assert.Equal(t, "http://scorer:5000/gravity", g)
	require.NoError(t, cfg.Validate())
}

func TestApplyEnvLeavesUnsetValues(t *testing.T) {
	clearEnv(t)

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestApplyEnvBadDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("FORESIGHT_GENERATION_TIMEOUT", "whenever")

	err := DefaultConfig().ApplyEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()
	addr := ":1234"
	level := "error"

	cfg.MergeWithFlags(&addr, &level, nil, nil)

	assert.Equal(t, ":1234", cfg.Server.Addr)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, DefaultConfig().LogDir, cfg.LogDir, "nil flags leave values alone")
	assert.Equal(t, ProviderFallback, cfg.Generation.Provider)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "level is case-insensitive", mutate: func(c *Config) { c.LogLevel = "DEBUG" }},
		{name: "bad level", mutate: func(c *Config) { c.LogLevel = "verbose" }, wantErr: "invalid log_level"},
		{name: "empty addr", mutate: func(c *Config) { c.Server.Addr = "" }, wantErr: "server.addr"},
		{name: "negative duration", mutate: func(c *Config) { c.Generation.Timeout = -time.Second }, wantErr: "generation.timeout must be >= 0"},
		{name: "idle without sweep", mutate: func(c *Config) { c.Session.SweepInterval = 0 }, wantErr: "session.sweep_interval"},
		{name: "no idle timeout", mutate: func(c *Config) { c.Session.IdleTimeout = 0; c.Session.SweepInterval = 0 }},
		{name: "unknown provider", mutate: func(c *Config) { c.Generation.Provider = "gpt" }, wantErr: "invalid generation.provider"},
		{name: "gemini without key", mutate: func(c *Config) { c.Generation.Provider = ProviderGemini }, wantErr: "GEMINI_API_KEY"},
		{name: "gemini with key", mutate: func(c *Config) { c.Generation.Provider = ProviderGemini; c.Generation.APIKey = "k" }},
		{name: "remote without endpoints", mutate: func(c *Config) { c.Scoring.Remote.Enabled = true }, wantErr: "no endpoint"},
		{name: "remote with one endpoint", mutate: func(c *Config) {
			c.Scoring.Remote.Enabled = true
			c.Scoring.Remote.GravityURL = "http://x/gravity"
		}},
		{name: "metrics without db", mutate: func(c *Config) { c.Metrics.DBPath = "" }, wantErr: "metrics.db_path"},
		{name: "metrics disabled without db", mutate: func(c *Config) { c.Metrics.Enabled = false; c.Metrics.DBPath = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRemoteURLsPreferExplicit(t *testing.T) {
	r := RemoteScoringConfig{BaseURL: "http://base", QuestionURL: "http://other/q"}
	g, q, c := r.RemoteURLs()
	assert.Equal(t, "http://base/gravity", g)
	assert.Equal(t, "http://other/q", q)
	assert.Equal(t, "http://base/consequence", c)

	g, q, c = RemoteScoringConfig{}.RemoteURLs()
	assert.Empty(t, g + q + c)
}
