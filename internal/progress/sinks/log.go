// Package sinks provides progress.Sink implementations.
package sinks

import (
	"go.uber.org/zap"

	"github.com/reqmirror/steamreqs/internal/progress"
)

// LogSink emits one structured log line per progress event. The PAGE_DONE
// line is the user-visible heartbeat of an unattended crawl.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs the event using structured fields.
func (s *LogSink) Consume(evt progress.Event) {
	switch evt.Stage {
	case progress.StagePageDone:
		s.logger.Info("discovery page processed",
			zap.Int("pages", evt.Page),
			zap.Int("indexed", evt.Indexed),
			zap.Int("changed", evt.Changed),
			zap.Int64("next_last_appid", evt.Cursor),
		)
	case progress.StageBatchDone:
		s.logger.Debug("detail batch finished",
			zap.Int("batch_size", evt.BatchSize),
			zap.String("result", string(evt.BatchResult)),
		)
	case progress.StageRunStart:
		s.logger.Info("crawl run started", zap.Int64("cursor", evt.Cursor))
	case progress.StageRunDone:
		s.logger.Info("crawl run finished",
			zap.Int("pages", evt.Page),
			zap.Int("indexed", evt.Indexed),
			zap.Int("changed", evt.Changed),
			zap.Int64("last_appid", evt.Cursor),
			zap.Duration("dur", evt.Dur),
		)
	}
}
