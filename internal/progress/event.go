// Package progress defines the event structures emitted by the crawl loop.
package progress

import (
	"errors"
	"fmt"
	"time"
)

// Stage denotes the type of milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageRunStart  Stage = "RUN_START"
	StageRunDone   Stage = "RUN_DONE"
	StagePageDone  Stage = "PAGE_DONE"
	StageBatchDone Stage = "BATCH_DONE"
)

// BatchResult classifies the outcome of one detail-batch fetch.
type BatchResult string

// Batch results tracked for detail fetches.
const (
	BatchOK          BatchResult = "ok"
	BatchRateLimited BatchResult = "rate_limited"
	BatchFailed      BatchResult = "failed"
)

// Event captures a single milestone of crawl progress.
type Event struct {
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which milestone occurred.
	Stage Stage
	// Page is the 1-based discovery page count at emission time.
	Page int
	// Indexed is the cumulative number of catalog ids observed this run.
	Indexed int
	// Changed is the cumulative number of new-or-changed ids this run.
	Changed int
	// Cursor is the checkpoint value after the milestone.
	Cursor int64
	// BatchSize is the number of ids in the batch, for batch events.
	BatchSize int
	// BatchResult classifies batch events.
	BatchResult BatchResult
	// Dur captures the run duration, for run completion events.
	Dur time.Duration
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageRunStart, StageRunDone, StagePageDone:
	case StageBatchDone:
		if e.BatchResult == "" {
			return errors.New("batch done requires a result")
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}
