package observability

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelfStats(t *testing.T) {
	req := require.New(t)
	stats, err := SelfStats()
	req.NoError(err)
	req.Equal(int32(os.Getpid()), stats.PID)
	req.NotZero(stats.RSSBytes)
	req.Positive(stats.Threads)
}
