package workers

import (
	"context"
	"log/slog"
	"time"

	"pq-messenger/observability"
)

// ProcessStatsWorker samples memory and CPU of the relay process into the
// Prometheus gauges on a fixed interval.
type ProcessStatsWorker struct {
	log      *slog.Logger
	interval time.Duration
	sample   func() (observability.ProcessStats, error)
}

func NewProcessStatsWorker(log *slog.Logger, interval time.Duration) *ProcessStatsWorker {
	return &ProcessStatsWorker{log: log, interval: interval, sample: observability.SelfStats}
}

func (w *ProcessStatsWorker) Run(ctx context.Context) error {
	w.log.Info("Starting process stats worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			stats, err := w.sample()
			if err != nil {
				w.log.Error("Failed to collect self stats", "error", err)
				continue
			}
			observability.ProcessRSSBytes.Set(float64(stats.RSSBytes))
			observability.ProcessCPUPercent.Set(stats.CPUPercent)
		}
	}
}
