package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harrison/foresight/internal/config"
	"github.com/harrison/foresight/internal/gate"
	"github.com/harrison/foresight/internal/generation"
	"github.com/harrison/foresight/internal/logger"
	"github.com/harrison/foresight/internal/metrics"
	"github.com/harrison/foresight/internal/orchestrator"
	"github.com/harrison/foresight/internal/session"
)

// loadConfig resolves the data home, loads the config file (--config or
// $FORESIGHT_HOME/config.yaml), applies environment overrides and any
// changed persistent flags, then validates.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	home, err := config.GetForesightHome()
	if err != nil {
		return nil, "", fmt.Errorf("resolve foresight home: %w", err)
	}

	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath, err = config.ConfigPath()
		if err != nil {
			return nil, "", err
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ResolvePaths(home)

	var addr, logLevel, logDir, provider *string
	if cmd.Flags().Changed("addr") {
		v, _ := cmd.Flags().GetString("addr")
		addr = &v
	}
	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		logLevel = &v
	}
	if cmd.Flags().Changed("log-dir") {
		v, _ := cmd.Flags().GetString("log-dir")
		logDir = &v
	}
	if cmd.Flags().Changed("provider") {
		v, _ := cmd.Flags().GetString("provider")
		provider = &v
	}
	cfg.MergeWithFlags(addr, logLevel, logDir, provider)

	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, home, nil
}

// newLogger builds a console logger, plus a file logger when log_dir is set.
// The returned close func must be called on exit.
func newLogger(cfg *config.Config, console io.Writer) (logger.Logger, func(), error) {
	consoleLog := logger.NewConsoleLogger(console, cfg.LogLevel)
	if cfg.LogDir == "" {
		return consoleLog, func() {}, nil
	}

	fileLog, err := logger.NewFileLoggerWithDirAndLevel(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create file logger: %w", err)
	}
	return logger.NewMultiLogger(consoleLog, fileLog), func() { fileLog.Close() }, nil
}

// buildGates returns the heuristic gates, swapping in remote scorers for any
// configured endpoint.
func buildGates(cfg *config.Config, log logger.Logger) gate.Set {
	set := gate.DefaultSet()
	remote := cfg.Scoring.Remote
	if !remote.Enabled {
		return set
	}

	gravityURL, questionURL, consequenceURL := remote.RemoteURLs()
	if gravityURL != "" {
		set.Gravity = gate.NewRemoteScorer(gravityURL, gate.Gravity, nil, remote.Timeout, log)
	}
	if questionURL != "" {
		set.Question = gate.NewRemoteScorer(questionURL, gate.QuestionDepth, nil, remote.Timeout, log)
	}
	if consequenceURL != "" {
		set.Consequence = gate.NewRemoteScorer(consequenceURL, gate.ConsequenceDepth, nil, remote.Timeout, log)
	}
	log.LogInfo(fmt.Sprintf("remote scoring enabled (gravity=%t question=%t consequence=%t)",
		gravityURL != "", questionURL != "", consequenceURL != ""))
	return set
}

// buildEngine creates the generation engine for the configured provider.
func buildEngine(ctx context.Context, cfg *config.Config, log logger.Logger) (*generation.Engine, error) {
	provider, err := generation.NewProvider(ctx, generation.ProviderOptions{
		Name:       cfg.Generation.Provider,
		ClaudePath: cfg.Generation.ClaudePath,
		Model:      cfg.Generation.Model,
		APIKey:     cfg.Generation.APIKey,
		Timeout:    cfg.Generation.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create generation provider: %w", err)
	}
	return generation.NewEngine(provider, cfg.Generation.Timeout, log), nil
}

// app is the wired turn pipeline shared by serve and chat.
type app struct {
	controller   *session.Controller
	locks        *session.Locks
	engine       *generation.Engine
	orchestrator *orchestrator.Orchestrator
	metrics      *metrics.Store
}

// Close releases the metrics store.
func (a *app) Close() {
	if a.metrics != nil {
		a.metrics.Close()
	}
}

// newApp wires controller, engine, gates and, when enabled, the metrics
// reporter into one orchestrator.
func newApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*app, error) {
	engine, err := buildEngine(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	a := &app{locks: session.NewLocks(), engine: engine}
	sessionOpts := []session.Option{session.WithLogger(log)}
	if cfg.Metrics.Enabled {
		store, err := metrics.NewStore(cfg.Metrics.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open metrics store: %w", err)
		}
		a.metrics = store
		sessionOpts = append(sessionOpts, session.WithExitHook(metrics.NewReporter(store, log).Report))
	}

	a.controller = session.NewController(session.NewMemoryStore(), sessionOpts...)
	a.orchestrator = orchestrator.New(a.controller, a.locks, engine,
		orchestrator.WithGates(buildGates(cfg, log)),
		orchestrator.WithLogger(log),
	)
	return a, nil
}

// addConfigFlags registers the flags every command that loads config accepts.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to config file (default: $FORESIGHT_HOME/config.yaml)")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().String("log-dir", "", "Directory for log files (empty disables file logging)")
}
