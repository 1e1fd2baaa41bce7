package workers

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/shirou/gopsutil/process"
	"github.com/stretchr/testify/require"
)

func TestHeartbeatWorker_Beat(t *testing.T) {
	req := require.New(t)
	p, err := process.NewProcess(int32(os.Getpid()))
	req.NoError(err)

	worker := NewHeartbeatWorker(logs.GetLoggerFromLevel(slog.LevelDebug), func() RelayStats {
		return RelayStats{Rooms: 3, Sessions: 7}
	}, time.Second)

	beat, err := worker.Beat(p)

	req.NoError(err)
	req.Equal(int32(os.Getpid()), beat.Pid)
	req.Equal(3, beat.Rooms)
	req.Equal(7, beat.Sessions)
	req.Positive(beat.RamBytes)
	req.NotEmpty(beat.PidStatus)
}
