package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reqmirror/steamreqs/internal/clock"
	"github.com/reqmirror/steamreqs/internal/export"
	"github.com/reqmirror/steamreqs/internal/storage"
	"github.com/reqmirror/steamreqs/internal/storage/gcs"
	"github.com/reqmirror/steamreqs/internal/storage/local"
	"github.com/reqmirror/steamreqs/internal/store"
)

// newExportCmd creates the 'export' subcommand: project the mirror database
// into the sharded static JSON dataset the site serves.
func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export the mirror as static site data",
		Long: `Reads every app and requirement record from the local database and
writes index.json plus sharded app files, either to a local directory or
to a Google Cloud Storage bucket.`,
		RunE: runExportCommand,
	}
}

func runExportCommand(cmd *cobra.Command, _ []string) error {
	cfg, logger := services.cfg, services.logger

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.DB.Path, clock.System{})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Warn("failed to close store", zap.Error(cerr))
		}
	}()

	provider, cleanup, err := buildProvider(cmd, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	exporter, err := export.New(st, provider, cfg.Export.ShardSize, logger)
	if err != nil {
		return fmt.Errorf("init exporter: %w", err)
	}

	sum, err := exporter.Run(ctx)
	if err != nil {
		return fmt.Errorf("run export: %w", err)
	}

	logger.Info("export finished",
		zap.Int("total_apps", sum.TotalApps),
		zap.Int("total_shards", sum.TotalShards))
	return nil
}

func buildProvider(cmd *cobra.Command, logger *zap.Logger) (storage.Provider, func(), error) {
	cfg := services.cfg.Export
	noop := func() {}

	switch cfg.Provider {
	case "local":
		p, err := local.New(cfg.OutDir)
		if err != nil {
			return nil, noop, fmt.Errorf("init local provider: %w", err)
		}
		return p, noop, nil
	case "gcs":
		store, err := gcs.New(cmd.Context(), cfg.GCSBucket, logger)
		if err != nil {
			return nil, noop, fmt.Errorf("init gcs provider: %w", err)
		}
		cleanup := func() {
			if cerr := store.Close(); cerr != nil {
				logger.Warn("failed to close gcs client", zap.Error(cerr))
			}
		}
		if cfg.GCSPrefix != "" {
			return prefixedProvider{base: store, prefix: cfg.GCSPrefix}, cleanup, nil
		}
		return store, cleanup, nil
	default:
		return nil, noop, errors.New("unknown export provider: " + cfg.Provider)
	}
}

// prefixedProvider namespaces every object under a fixed prefix, so one
// bucket can carry the dataset alongside other site assets.
type prefixedProvider struct {
	base   storage.Provider
	prefix string
}

func (p prefixedProvider) Save(ctx context.Context, objectName string, data []byte) error {
	return p.base.Save(ctx, path.Join(p.prefix, objectName), data)
}
