// Package sysstat wraps a single OS-statistics handle behind a mutex so the
// CPU, memory, uptime/load, and disk collectors share one query path instead
// of issuing redundant syscalls per cycle. It also provides the CPU-load
// guard used to throttle whole collection cycles.
package sysstat

import (
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// Provider is the shared system-statistics handle. Every method takes the
// internal lock, so calls from multiple collectors within one cycle are
// serialized and idempotent; access is never concurrent on the underlying
// counters.
type Provider struct {
	mu sync.Mutex
}

// NewProvider creates the shared provider and primes the CPU counters so
// the first CPUPercent call has a baseline to diff against.
func NewProvider() *Provider {
	p := &Provider{}
	// Establish the CPU-times baseline; the reading itself is discarded.
	_, _ = cpu.Percent(0, false)
	return p
}

// CPUPercent returns global CPU usage since the previous call, in percent.
func (p *Provider) CPUPercent() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	vals, err := cpu.Percent(0, false)
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return 0, nil
	}
	return vals[0], nil
}

// Memory returns used and total physical memory in bytes.
func (p *Provider) Memory() (used, total uint64, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0, err
	}
	return vm.Used, vm.Total, nil
}

// UptimeSeconds returns seconds since boot.
func (p *Provider) UptimeSeconds() (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return host.Uptime()
}

// Load1 returns the 1-minute load average.
func (p *Provider) Load1() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	avg, err := load.Avg()
	if err != nil {
		return 0, err
	}
	return avg.Load1, nil
}

// RootUsage returns used and total bytes for the root mount.
func (p *Provider) RootUsage() (used, total uint64, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	usage, err := disk.Usage("/")
	if err != nil {
		return 0, 0, err
	}
	return usage.Used, usage.Total, nil
}

// Guard throttles background work when global CPU usage is high.
// It is a blunt, process-wide backpressure check, not per-collector.
type Guard struct {
	// Threshold is the CPU usage percentage (0-100) above which work
	// should be skipped.
	Threshold float64
}

// NewGuard creates a guard with the given CPU percentage threshold.
func NewGuard(threshold float64) Guard {
	return Guard{Threshold: threshold}
}

// ShouldThrottle refreshes the CPU reading through the shared provider and
// reports whether current global usage exceeds the threshold. A failed
// reading never throttles.
func (g Guard) ShouldThrottle(p *Provider) bool {
	pct, err := p.CPUPercent()
	if err != nil {
		return false
	}
	return pct > g.Threshold
}
