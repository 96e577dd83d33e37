package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reqmirror/steamreqs/internal/api"
	"github.com/reqmirror/steamreqs/internal/checkpoint"
	"github.com/reqmirror/steamreqs/internal/clock"
	"github.com/reqmirror/steamreqs/internal/crawl"
	"github.com/reqmirror/steamreqs/internal/progress"
	"github.com/reqmirror/steamreqs/internal/progress/sinks"
	"github.com/reqmirror/steamreqs/internal/steam"
	"github.com/reqmirror/steamreqs/internal/store"
)

// newCrawlCmd creates the 'crawl' subcommand: one incremental pass over the
// Steam catalog, fetching details for new or changed apps.
func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Run one incremental crawl of the Steam catalog",
		Long: `Pages through the Steam app list from the persisted cursor, diffs each
page against the local mirror, fetches store details for new or changed
apps, and records normalized hardware requirements. Interrupting with
SIGINT or SIGTERM stops cleanly at the next page boundary.`,
		RunE: runCrawlCommand,
	}
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	cfg, logger := services.cfg, services.logger

	if cfg.Steam.Key == "" {
		return errors.New("a Steam API key is required: set STEAMREQS_STEAM_KEY")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := clock.System{}

	st, err := store.Open(cfg.DB.Path, clk)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Warn("failed to close store", zap.Error(cerr))
		}
	}()

	client, err := steam.NewClient(steam.ClientOptions{
		Key:          cfg.Steam.Key,
		CountryCode:  cfg.Steam.CountryCode,
		Language:     cfg.Steam.Language,
		IncludeGames: cfg.Steam.IncludeGames,
		IncludeDLC:   cfg.Steam.IncludeDLC,
		PageSize:     cfg.Steam.PageSize,
		Timeout:      cfg.Steam.RequestTimeout,
	})
	if err != nil {
		return fmt.Errorf("init steam client: %w", err)
	}

	registry := prometheus.NewRegistry()
	promSink, err := sinks.NewPrometheusSink(registry)
	if err != nil {
		return fmt.Errorf("init prometheus sink: %w", err)
	}
	emitter := progress.NewFanout(sinks.NewLogSink(logger), promSink)

	crawler, err := crawl.New(
		client,
		st,
		checkpoint.File{Path: cfg.Checkpoint.Path},
		emitter,
		clk,
		crawl.Config{
			DetailsBatchSize:  cfg.Steam.DetailsBatchSize,
			SleepBase:         cfg.Crawl.SleepBase,
			SleepJitter:       cfg.Crawl.SleepJitter,
			PageRetryInterval: cfg.Crawl.PageRetryInterval,
			RateLimitBackoff:  cfg.Crawl.RateLimitBackoff,
			BatchErrorBackoff: cfg.Crawl.BatchErrorBackoff,
			MaxPages:          cfg.Crawl.MaxPages,
		},
		logger,
	)
	if err != nil {
		return fmt.Errorf("init crawler: %w", err)
	}

	shutdownServer := func() {}
	if cfg.Server.Enabled {
		shutdownServer = startStatusServer(cfg.Server.Port, registry, logger)
	}
	defer shutdownServer()

	started := clk.Now()
	sum, runErr := crawler.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("run crawl: %w", runErr)
	}

	state := checkpoint.RunState{
		RunID:      uuid.NewString(),
		StartedAt:  started,
		FinishedAt: clk.Now(),
		Pages:      sum.Pages,
		Indexed:    sum.Indexed,
		Changed:    sum.Changed,
		LastAppID:  sum.LastAppID,
	}
	if err := checkpoint.SaveRunState(cfg.Checkpoint.StatePath, state); err != nil {
		return fmt.Errorf("save run state: %w", err)
	}

	logger.Info("crawl finished",
		zap.String("run_id", state.RunID),
		zap.Int("pages", sum.Pages),
		zap.Int("indexed", sum.Indexed),
		zap.Int("changed", sum.Changed),
		zap.Int64("last_appid", sum.LastAppID),
		zap.Bool("interrupted", errors.Is(runErr, context.Canceled)))
	return nil
}

// startStatusServer runs the health/metrics server in the background and
// returns a shutdown func.
func startStatusServer(port int, registry *prometheus.Registry, logger *zap.Logger) func() {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           api.NewServer(registry, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("status server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("status server failed", zap.Error(err))
		}
	}()
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("status server shutdown failed", zap.Error(err))
		}
	}
}
