package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// RelayStats is what the relay knows about its own load.
type RelayStats struct {
	Rooms    int
	Sessions int
}

type Heartbeat struct {
	RelayStats
	Pid        int32
	PidStatus  string
	CpuPercent float64
	RamBytes   uint64
}

// HeartbeatWorker logs process health (CPU, RAM, status) together with
// the number of live rooms and sessions every interval.
type HeartbeatWorker struct {
	log      *slog.Logger
	stats    func() RelayStats
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, stats func() RelayStats, interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, stats: stats, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			beat, err := w.Beat(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "error", err)
				continue
			}
			w.log.Info("Heartbeat",
				"pid", beat.Pid,
				"status", beat.PidStatus,
				"cpu_percent", beat.CpuPercent,
				"ram_bytes", beat.RamBytes,
				"rooms", beat.Rooms,
				"sessions", beat.Sessions)
		}
	}
}

func (w *HeartbeatWorker) Beat(p *process.Process) (Heartbeat, error) {
	rss, cpu, status, err := getSelfStats(p)
	if err != nil {
		return Heartbeat{}, err
	}
	return Heartbeat{
		RelayStats: w.stats(),
		Pid:        p.Pid,
		PidStatus:  status,
		CpuPercent: cpu,
		RamBytes:   rss,
	}, nil
}

// getSelfStats retrieves memory, CPU and OS status of the given process.
func getSelfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}

	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
