package app

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// PerfStats is one sample of process resource usage.
type PerfStats struct {
	CPUPercent float64
	RSSBytes   uint64
}

// String formats the sample for the debug overlay.
func (s PerfStats) String() string {
	return fmt.Sprintf("cpu %.1f%%  rss %.1f MiB", s.CPUPercent, float64(s.RSSBytes)/(1<<20))
}

// PerfMonitor samples the current process at most once per interval.
type PerfMonitor struct {
	proc     *process.Process
	interval time.Duration
	last     time.Time
	stats    PerfStats
	failed   bool
}

// NewPerfMonitor opens the current process.
func NewPerfMonitor(interval time.Duration) (*PerfMonitor, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("failed to open process: %w", err)
	}
	return &PerfMonitor{proc: proc, interval: interval}, nil
}

// Sample returns the latest stats, refreshing them when the interval has
// elapsed. A failing sample is logged once and the last good sample kept.
func (m *PerfMonitor) Sample(now time.Time) PerfStats {
	if !m.last.IsZero() && now.Sub(m.last) < m.interval {
		return m.stats
	}
	m.last = now

	cpu, err := m.proc.CPUPercent()
	if err == nil {
		m.stats.CPUPercent = cpu
	}
	mem, memErr := m.proc.MemoryInfo()
	if memErr == nil {
		m.stats.RSSBytes = mem.RSS
	}
	if (err != nil || memErr != nil) && !m.failed {
		m.failed = true
		log.Printf("[Perf] process sampling failed: cpu=%v mem=%v", err, memErr)
	}
	return m.stats
}
