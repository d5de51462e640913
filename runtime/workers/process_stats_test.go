package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"pq-messenger/errors"
	"pq-messenger/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestProcessStatsWorker_Publishes_Gauges(t *testing.T) {
	req := require.New(t)
	samples := 0
	w := &ProcessStatsWorker{
		log:      slog.Default(),
		interval: 5 * time.Millisecond,
		sample: func() (observability.ProcessStats, error) {
			samples++
			if samples == 1 {
				return observability.ProcessStats{}, errors.New("transient")
			}
			return observability.ProcessStats{RSSBytes: 4096, CPUPercent: 12.5}, nil
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := w.Run(ctx)

	req.ErrorIs(err, context.DeadlineExceeded)
	req.GreaterOrEqual(samples, 2)
	req.Equal(4096.0, testutil.ToFloat64(observability.ProcessRSSBytes))
	req.Equal(12.5, testutil.ToFloat64(observability.ProcessCPUPercent))
}
