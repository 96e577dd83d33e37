package sinks

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/reqmirror/steamreqs/internal/progress"
)

func TestPrometheusSink(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	s, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	now := time.Now()
	s.Consume(progress.Event{TS: now, Stage: progress.StageRunStart, Cursor: 100})
	s.Consume(progress.Event{TS: now, Stage: progress.StagePageDone, Page: 1, Indexed: 50, Changed: 5, Cursor: 500})
	s.Consume(progress.Event{TS: now, Stage: progress.StageBatchDone, BatchSize: 5, BatchResult: progress.BatchOK})
	s.Consume(progress.Event{TS: now, Stage: progress.StageBatchDone, BatchSize: 5, BatchResult: progress.BatchRateLimited})
	s.Consume(progress.Event{TS: now, Stage: progress.StagePageDone, Page: 2, Indexed: 90, Changed: 5, Cursor: 900})
	s.Consume(progress.Event{TS: now, Stage: progress.StageRunDone, Page: 2, Dur: time.Minute})

	require.InDelta(t, 2, testutil.ToFloat64(s.pagesProcessed), 0.0001)
	require.InDelta(t, 90, testutil.ToFloat64(s.idsDiscovered), 0.0001)
	require.InDelta(t, 5, testutil.ToFloat64(s.idsChanged), 0.0001)
	require.InDelta(t, 900, testutil.ToFloat64(s.cursor), 0.0001)
	require.InDelta(t, 1, testutil.ToFloat64(s.detailBatches.WithLabelValues("ok")), 0.0001)
	require.InDelta(t, 1, testutil.ToFloat64(s.detailBatches.WithLabelValues("rate_limited")), 0.0001)
}

func TestPrometheusSink_DoubleRegister(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := NewPrometheusSink(reg)
	require.NoError(t, err)
	_, err = NewPrometheusSink(reg)
	require.Error(t, err)
}
