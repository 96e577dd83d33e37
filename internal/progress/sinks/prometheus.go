package sinks

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/reqmirror/steamreqs/internal/progress"
)

// PrometheusSink exports crawl progress via Prometheus. It owns all
// collectors for pages, discovered/changed ids and detail batch outcomes.
type PrometheusSink struct {
	pagesProcessed prometheus.Counter
	idsDiscovered  prometheus.Counter
	idsChanged     prometheus.Counter
	detailBatches  *prometheus.CounterVec
	cursor         prometheus.Gauge
	runDuration    prometheus.Histogram

	lastIndexed int
	lastChanged int
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		pagesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "steamreqs_pages_processed_total",
			Help: "Discovery pages fully processed.",
		}),
		idsDiscovered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "steamreqs_ids_discovered_total",
			Help: "Catalog ids observed on discovery pages.",
		}),
		idsChanged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "steamreqs_ids_changed_total",
			Help: "Catalog ids flagged new or changed.",
		}),
		detailBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "steamreqs_detail_batches_total",
			Help: "Detail batch fetches partitioned by result.",
		}, []string{"result"}),
		cursor: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "steamreqs_checkpoint_appid",
			Help: "Current persisted discovery cursor.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "steamreqs_run_duration_seconds",
			Help:    "Wall time per completed crawl run.",
			Buckets: []float64{60, 300, 900, 1800, 3600, 7200, 14400, 28800},
		}),
	}
	for _, collector := range []prometheus.Collector{
		s.pagesProcessed,
		s.idsDiscovered,
		s.idsChanged,
		s.detailBatches,
		s.cursor,
		s.runDuration,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register progress collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the collectors from one event. Indexed/Changed arrive as
// cumulative run totals, so the sink converts them to deltas.
func (s *PrometheusSink) Consume(evt progress.Event) {
	switch evt.Stage {
	case progress.StageRunStart:
		s.lastIndexed = 0
		s.lastChanged = 0
		s.cursor.Set(float64(evt.Cursor))
	case progress.StagePageDone:
		s.pagesProcessed.Inc()
		if d := evt.Indexed - s.lastIndexed; d > 0 {
			s.idsDiscovered.Add(float64(d))
		}
		if d := evt.Changed - s.lastChanged; d > 0 {
			s.idsChanged.Add(float64(d))
		}
		s.lastIndexed = evt.Indexed
		s.lastChanged = evt.Changed
		s.cursor.Set(float64(evt.Cursor))
	case progress.StageBatchDone:
		result := string(evt.BatchResult)
		if result == "" {
			result = string(progress.BatchFailed)
		}
		s.detailBatches.WithLabelValues(result).Inc()
	case progress.StageRunDone:
		if evt.Dur > 0 {
			s.runDuration.Observe(evt.Dur.Seconds())
		}
	}
}
