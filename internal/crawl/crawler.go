// Package crawl implements the incremental discovery-and-detail loop: page
// through the remote catalog from a persisted cursor, detect changed
// entries, fetch and normalize their requirement blurbs, and checkpoint
// after every page.
package crawl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/reqmirror/steamreqs/internal/clock"
	"github.com/reqmirror/steamreqs/internal/progress"
	"github.com/reqmirror/steamreqs/internal/requirements"
	"github.com/reqmirror/steamreqs/internal/steam"
	"github.com/reqmirror/steamreqs/internal/store"
)

// Catalog fetches discovery pages and detail batches. *steam.Client
// satisfies it; tests substitute fakes.
type Catalog interface {
	AppListPage(ctx context.Context, cursor int64) ([]steam.App, error)
	AppDetails(ctx context.Context, ids []int64) (map[string]steam.DetailResult, error)
}

// Storage persists catalog entries and requirement records. *store.Store
// satisfies it.
type Storage interface {
	UpsertAppsAndDiff(ctx context.Context, apps []store.CatalogApp) ([]int64, error)
	UpdateAppDetails(ctx context.Context, appID int64, name, appType string, platformsJSON *string) error
	UpsertRequirement(ctx context.Context, appID int64, platform store.Platform, level store.Level, rec requirements.Record) error
}

// Checkpointer loads and persists the discovery cursor.
type Checkpointer interface {
	LoadCursor() (int64, error)
	SaveCursor(lastAppID int64, now time.Time) error
}

// Config controls pacing, batching and the optional page bound.
type Config struct {
	DetailsBatchSize  int
	SleepBase         time.Duration
	SleepJitter       time.Duration
	PageRetryInterval time.Duration
	RateLimitBackoff  time.Duration
	BatchErrorBackoff time.Duration
	// MaxPages bounds the run for testing; zero means run to exhaustion.
	MaxPages int
}

// Summary aggregates the counters of one crawl run.
type Summary struct {
	Pages     int
	Indexed   int
	Changed   int
	LastAppID int64
}

// Crawler drives one resumable crawl run. It is single-threaded: paging,
// diffing, detail fetching, parsing and persistence all run sequentially in
// Run.
type Crawler struct {
	catalog     Catalog
	storage     Storage
	checkpoints Checkpointer
	emitter     progress.Emitter
	clock       clock.Clock
	logger      *zap.Logger
	cfg         Config

	// sleep is swappable so tests run without real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// New constructs a Crawler.
func New(
	catalog Catalog,
	storage Storage,
	checkpoints Checkpointer,
	emitter progress.Emitter,
	clk clock.Clock,
	cfg Config,
	logger *zap.Logger,
) (*Crawler, error) {
	if catalog == nil || storage == nil || checkpoints == nil {
		return nil, fmt.Errorf("catalog, storage and checkpoints are required")
	}
	if cfg.DetailsBatchSize <= 0 {
		return nil, fmt.Errorf("details batch size must be > 0")
	}
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if emitter == nil {
		emitter = progress.NewFanout()
	}
	return &Crawler{
		catalog:     catalog,
		storage:     storage,
		checkpoints: checkpoints,
		emitter:     emitter,
		clock:       clk,
		logger:      logger,
		cfg:         cfg,
		sleep:       sleepCtx,
	}, nil
}

// Run executes one crawl to exhaustion (or MaxPages). Transport failures
/// never propagate: discovery pages retry in place, detail batches back off
// and are skipped for this run. Storage and checkpoint failures are fatal.
// The returned Summary is valid even when err is non-nil.
func (c *Crawler) Run(ctx context.Context) (Summary, error) {
	cursor, err := c.checkpoints.LoadCursor()
	if err != nil {
		return Summary{}, fmt.Errorf("load cursor: %w", err)
	}

	sum := Summary{LastAppID: cursor}
	started := c.clock.Now()
	c.emit(progress.Event{Stage: progress.StageRunStart, Cursor: cursor})

	for {
		if c.cfg.MaxPages > 0 && sum.Pages >= c.cfg.MaxPages {
			break
		}

		apps, err := c.catalog.AppListPage(ctx, cursor)
		if err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			c.logger.Warn("discovery page fetch failed; retrying",
				zap.Int64("cursor", cursor), zap.Error(err))
			if serr := c.sleep(ctx, c.cfg.PageRetryInterval); serr != nil {
				return sum, serr
			}
			continue
		}
		if len(apps) == 0 {
			// Catalog exhausted; the cursor keeps its prior value.
			break
		}

		sum.Pages++
		sum.Indexed += len(apps)

		changed, err := c.storage.UpsertAppsAndDiff(ctx, toCatalogApps(apps))
		if err != nil {
			return sum, fmt.Errorf("diff discovery page: %w", err)
		}
		sum.Changed += len(changed)

		if len(changed) > 0 {
			if err := c.updateDetails(ctx, changed); err != nil {
				return sum, err
			}
		}

		// Advance past the whole page even when nothing changed, and persist
		// immediately: a crash loses at most one page of progress.
		cursor = apps[len(apps)-1].AppID
		sum.LastAppID = cursor
		if err := c.checkpoints.SaveCursor(cursor, c.clock.Now()); err != nil {
			return sum, fmt.Errorf("save cursor: %w", err)
		}

		c.emit(progress.Event{
			Stage:   progress.StagePageDone,
			Page:    sum.Pages,
			Indexed: sum.Indexed,
			Changed: sum.Changed,
			Cursor:  cursor,
		})

		if err := c.sleep(ctx, jitter(c.cfg.SleepBase, c.cfg.SleepJitter)); err != nil {
			return sum, err
		}
	}

	c.emit(progress.Event{
		Stage:   progress.StageRunDone,
		Page:    sum.Pages,
		Indexed: sum.Indexed,
		Changed: sum.Changed,
		Cursor:  sum.LastAppID,
		Dur:     c.clock.Now().Sub(started),
	})
	return sum, nil
}

// updateDetails fetches and persists details for the changed ids in bounded
// batches. A failed batch is skipped for this run; its entries stay behind
// the stored revision marker and re-surface on the next run.
func (c *Crawler) updateDetails(ctx context.Context, ids []int64) error {
	for chunk := range chunked(ids, c.cfg.DetailsBatchSize) {
		details, err := c.catalog.AppDetails(ctx, chunk)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			backoff := c.cfg.BatchErrorBackoff
			result := progress.BatchFailed
			if errors.Is(err, steam.ErrRateLimited) {
				backoff = c.cfg.RateLimitBackoff
				result = progress.BatchRateLimited
			}
			c.logger.Warn("detail batch fetch failed; skipping batch",
				zap.Int("batch_size", len(chunk)),
				zap.String("result", string(result)),
				zap.Error(err))
			c.emit(progress.Event{Stage: progress.StageBatchDone, BatchSize: len(chunk), BatchResult: result})
			if serr := c.sleep(ctx, backoff); serr != nil {
				return serr
			}
			continue
		}

		for _, id := range chunk {
			entry, ok := details[strconv.FormatInt(id, 10)]
			if !ok || !entry.Success || entry.Data == nil {
				// Per-id failure within a successful batch: skip this run.
				continue
			}
			if err := c.persistEntry(ctx, id, entry.Data); err != nil {
				return err
			}
		}

		c.emit(progress.Event{Stage: progress.StageBatchDone, BatchSize: len(chunk), BatchResult: progress.BatchOK})
		if err := c.sleep(ctx, jitter(c.cfg.SleepBase, c.cfg.SleepJitter)); err != nil {
			return err
		}
	}
	return nil
}

// persistEntry refreshes one app's catalog attributes and upserts all six
// requirement records (three platforms, two tiers), each independently
// optional in the payload.
func (c *Crawler) persistEntry(ctx context.Context, id int64, data *steam.DetailData) error {
	var platformsJSON *string
	if data.Platforms != nil {
		encoded, err := json.Marshal(data.Platforms)
		if err != nil {
			return fmt.Errorf("marshal platforms for %d: %w", id, err)
		}
		s := string(encoded)
		platformsJSON = &s
	}
	if err := c.storage.UpdateAppDetails(ctx, id, data.Name, data.Type, platformsJSON); err != nil {
		return err
	}

	for _, pr := range []struct {
		platform store.Platform
		reqs     steam.Requirements
	}{
		{store.PlatformPC, data.PCRequirements},
		{store.PlatformMac, data.MacRequirements},
		{store.PlatformLinux, data.LinuxRequirements},
	} {
		if err := c.storage.UpsertRequirement(ctx, id, pr.platform, store.LevelMinimum, requirements.Build(pr.reqs.Minimum)); err != nil {
			return err
		}
		if err := c.storage.UpsertRequirement(ctx, id, pr.platform, store.LevelRecommended, requirements.Build(pr.reqs.Recommended)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Crawler) emit(evt progress.Event) {
	evt.TS = c.clock.Now()
	c.emitter.Emit(evt)
}

func toCatalogApps(apps []steam.App) []store.CatalogApp {
	out := make([]store.CatalogApp, len(apps))
	for i, a := range apps {
		out[i] = store.CatalogApp{
			AppID:             a.AppID,
			Name:              a.Name,
			LastModified:      a.LastModified,
			PriceChangeNumber: a.PriceChangeNumber,
		}
	}
	return out
}

// chunked yields ids in slices of at most size.
func chunked(ids []int64, size int) func(yield func([]int64) bool) {
	return func(yield func([]int64) bool) {
		for start := 0; start < len(ids); start += size {
			end := min(start+size, len(ids))
			if !yield(ids[start:end]) {
				return
			}
		}
	}
}
