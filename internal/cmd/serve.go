package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/harrison/foresight/internal/config"
	"github.com/harrison/foresight/internal/filelock"
	"github.com/harrison/foresight/internal/logger"
	"github.com/harrison/foresight/internal/server"
	"github.com/harrison/foresight/internal/session"
)

// writeGrace lets the timeout middleware answer before the server cuts the connection.
const writeGrace = 5 * time.Second

// NewServeCommand creates the 'foresight serve' command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reflection HTTP server",
		Long: `Serve the turn-processing API:

  POST /api/turn            decision (turn 1) or question (turns 2-9)
  GET  /api/sessions/{id}   session status
  GET  /healthz             liveness

Only one server may use a data home at a time; the server holds an
exclusive lock on $FORESIGHT_HOME/serve.lock while it runs. Idle sessions
are abandoned after session.idle_timeout.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	addConfigFlags(cmd)
	cmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().String("provider", "", "Generation provider: claude, gemini, fallback")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, home, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	lock, err := filelock.AcquireExclusive(filepath.Join(home, "serve.lock"))
	if err != nil {
		if errors.Is(err, filelock.ErrLocked) {
			return fmt.Errorf("another foresight server is running with home %s", home)
		}
		return err
	}
	defer lock.Unlock()

	log, closeLog, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
	}

	return serve(ctx, ln, cfg, log)
}

// serve runs the HTTP server and the idle sweeper until ctx is cancelled or
// either fails, then shuts the server down gracefully.
func serve(ctx context.Context, ln net.Listener, cfg *config.Config, log logger.Logger) error {
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		ln.Close()
		return err
	}
	defer a.Close()

	handler := server.New(a.orchestrator, log, server.Options{
		RequestTimeout: cfg.Server.WriteTimeout,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Provider:       a.engine.ProviderName(),
	}).Handler()

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout + writeGrace,
		IdleTimeout:       2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.LogInfo(fmt.Sprintf("foresight listening on %s (provider=%s)", ln.Addr(), a.engine.ProviderName()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if cfg.Session.IdleTimeout > 0 {
		sweeper := session.NewSweeper(a.controller, a.locks, cfg.Session.IdleTimeout, cfg.Session.SweepInterval, log)
		g.Go(func() error {
			return sweeper.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.LogInfo("shutting down")
		if cfg.Server.ShutdownTimeout <= 0 {
			return srv.Close()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
