package workers

import (
	"chat-relay/contract"
	"chat-relay/observability"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// StatusReporter periodically samples the relay process and the live
// connection count, logs them and publishes them as gauges.
type StatusReporter struct {
	log      *slog.Logger
	registry contract.IRegistry
	metrics  *observability.Metrics
	interval time.Duration
}

func NewStatusReporter(log *slog.Logger, registry contract.IRegistry,
	metrics *observability.Metrics, interval time.Duration) *StatusReporter {
	return &StatusReporter{log: log, registry: registry, metrics: metrics, interval: interval}
}

func (w *StatusReporter) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.report(p)
		}
	}
}

func (w *StatusReporter) report(p *process.Process) {
	connections := w.registry.Count()
	w.metrics.LiveConnections.Set(float64(connections))

	mem, err := p.MemoryInfo()
	if err != nil {
		w.log.Warn("Failed to collect process stats", "error", err)
		return
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		w.log.Warn("Failed to collect process stats", "error", err)
		return
	}
	w.metrics.ProcessRSS.Set(float64(mem.RSS))
	w.metrics.ProcessCPU.Set(cpu)
	w.log.Info("Relay status",
		"connections", connections,
		"rss_mb", mem.RSS/1024/1024,
		"cpu_percent", cpu)
}
