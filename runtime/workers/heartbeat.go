package workers

import (
	"context"
	"dm-lab/observability"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// LiveCounter reports how many realtime subscriptions are open.
type LiveCounter interface {
	Count() int
}

// HeartbeatWorker samples the server process (CPU, RSS) every interval into
// the process gauges and logs a one-line health summary.
type HeartbeatWorker struct {
	log      *slog.Logger
	metrics  *observability.Metrics
	live     LiveCounter
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, metrics *observability.Metrics, live LiveCounter, interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, metrics: metrics, live: live, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker", "interval", w.interval)
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
			rss, cpu, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "error", err)
				continue
			}
			w.metrics.ProcessSample(cpu, rss)
			w.log.Debug("Heartbeat", "cpu_percent", cpu, "rss_bytes", rss, "live_subscriptions", w.live.Count())
		}
	}
}

// selfStats retrieves resident memory and CPU usage of the given process.
func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
