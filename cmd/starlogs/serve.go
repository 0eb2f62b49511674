package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/starlogs/starlogs-go/internal/config"
	"github.com/starlogs/starlogs-go/internal/hub"
	"github.com/starlogs/starlogs-go/internal/logging"
	"github.com/starlogs/starlogs-go/internal/metrics"
	"github.com/starlogs/starlogs-go/internal/server"
	"github.com/starlogs/starlogs-go/internal/session"
)

var (
	// serve flags
	serveConfigPath string
	serveLogFile    string
	serveListenAddr string
	serveNoReplay   bool
	serveTailLines  int
	servePollEvery  time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Monitor a Game.log file and serve the event stream",
	Long: `Monitor a Star Citizen Game.log file in real time and serve classified
events over HTTP.

The full file is replayed to the pipeline on startup (disable with
--no-replay to emit only the last lines), then new lines are picked up by
polling. Connected clients receive the bounded event and raw-line history
first, then live messages.

Endpoints:
  GET  /events             server-sent events stream (?include=/?exclude= filters)
  GET  /status             session statistics
  GET  /diagnostics        tail engine counters
  POST /reprocess          re-read the whole file
  POST /api/switch_source  switch to another log file
  GET  /metrics            Prometheus metrics

Examples:
  # Monitor with defaults
  starlogs serve --log-file "C:\Games\StarCitizen\LIVE\Game.log"

  # From a config file
  starlogs serve --config starlogs.yaml

  # Tail only, no startup replay
  starlogs serve --log-file Game.log --no-replay`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "",
		"Path to config file (YAML)")
	serveCmd.Flags().StringVarP(&serveLogFile, "log-file", "l", "",
		"Path to the Game.log file to monitor")
	serveCmd.Flags().StringVar(&serveListenAddr, "listen", "",
		"HTTP listen address (default 127.0.0.1:5025)")
	serveCmd.Flags().BoolVar(&serveNoReplay, "no-replay", false,
		"Skip the full startup replay, emit only the last lines")
	serveCmd.Flags().IntVar(&serveTailLines, "tail-lines", 0,
		"Lines to emit before live tailing with --no-replay (default 100)")
	serveCmd.Flags().DurationVar(&servePollEvery, "poll-interval", 0,
		"How often to check the file for new content (default 1s)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return err
	}

	// Flags override config file values.
	if serveLogFile != "" {
		cfg.Source.Path = serveLogFile
	}
	if serveListenAddr != "" {
		cfg.Server.ListenAddress = serveListenAddr
	}
	if serveNoReplay {
		cfg.Source.ReplayAll = false
	}
	if serveTailLines > 0 {
		cfg.Source.TailLines = serveTailLines
	}
	if servePollEvery > 0 {
		cfg.Source.PollInterval = servePollEvery
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if cfg.Source.Path == "" {
		return errors.New("no log file configured: set --log-file or source.path")
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.DebugLog)
	if err != nil {
		return err
	}
	defer logger.Sync()

	h := hub.New(hub.Options{
		MaxEvents: cfg.History.MaxEvents,
		MaxLines:  cfg.History.MaxLines,
		QueueSize: cfg.History.QueueSize,
	}, logger)

	sess := session.New(session.Options{
		PollInterval:         cfg.Source.PollInterval,
		TailLines:            cfg.Source.TailLines,
		CorrelationHorizon:   cfg.Correlation.Horizon,
		CorrelationProximity: cfg.Correlation.Proximity,
	}, h, logger)

	metrics.RegisterEngine(sess.Diagnostics)

	if err := sess.Start(cfg.Source.Path, cfg.Source.ReplayAll); err != nil {
		return fmt.Errorf("starting monitor: %w", err)
	}
	defer sess.Stop()

	srv := server.New(server.Options{
		ListenAddress:   cfg.Server.ListenAddress,
		ReadTimeout:     cfg.Server.ReadTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, sess, h, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
	}
	return nil
}
