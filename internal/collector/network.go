// Network throughput collector. Reads per-interface byte counters fresh
// each cycle, bypassing the shared provider so delta tracking never
// contends on its lock. Counter decreases (interface reset, device
// replug) clamp the delta to zero rather than wrapping.
package collector

import (
	"context"
	"time"

	gonet "github.com/shirou/gopsutil/v3/net"
	"go.uber.org/zap"

	"github.com/glasspane/telemetry/internal/metric"
)

// ifCounters is one interface's cumulative RX/TX byte counters.
type ifCounters struct {
	rx uint64
	tx uint64
}

// counterSource reads the current per-interface counters. Injectable so
// tests can feed synthetic snapshots.
type counterSource func(ctx context.Context) (map[string]ifCounters, error)

// readOSCounters is the production source, backed by the OS
// network-statistics interface.
func readOSCounters(ctx context.Context) (map[string]ifCounters, error) {
	stats, err := gonet.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, err
	}
	out := make(map[string]ifCounters, len(stats))
	for _, s := range stats {
		out[s.Name] = ifCounters{rx: s.BytesRecv, tx: s.BytesSent}
	}
	return out, nil
}

// NetworkCollector computes per-interface byte rates between cycles.
// It owns the previous counter snapshot and the last sample instant.
type NetworkCollector struct {
	source   counterSource
	logger   *zap.Logger
	last     map[string]ifCounters
	lastTime time.Time
}

// NewNetworkCollector creates a network collector reading OS counters.
func NewNetworkCollector(logger *zap.Logger) *NetworkCollector {
	return &NetworkCollector{
		source:   readOSCounters,
		logger:   logger,
		last:     make(map[string]ifCounters),
		lastTime: time.Now(),
	}
}

// ID returns the collector identifier.
func (c *NetworkCollector) ID() string { return "network" }

// Label returns the collector display name.
func (c *NetworkCollector) Label() string { return "Net" }

// Collect returns the per-interface RX/TX rate map. The loopback interface
// is excluded; interfaces without a previous sample are skipped this cycle.
func (c *NetworkCollector) Collect(ctx context.Context) map[metric.ID]metric.Value {
	now := time.Now()
	out := make(map[metric.ID]metric.Value, 1)

	current, err := c.source(ctx)
	if err != nil {
		c.logger.Warn("network counters unavailable", zap.Error(err))
		return out
	}

	elapsed := now.Sub(c.lastTime).Seconds()
	// Floor at 1ms to avoid rate blowup on very fast consecutive cycles.
	if elapsed < 0.001 {
		elapsed = 1.0
	}

	rates := make(map[string]metric.Rate)
	for iface, curr := range current {
		if iface == "lo" {
			continue
		}
		prev, ok := c.last[iface]
		if !ok {
			continue
		}
		var deltaRx, deltaTx uint64
		if curr.rx >= prev.rx {
			deltaRx = curr.rx - prev.rx
		}
		if curr.tx >= prev.tx {
			deltaTx = curr.tx - prev.tx
		}
		rates[iface] = metric.Rate{
			Rx: uint64(float64(deltaRx) / elapsed),
			Tx: uint64(float64(deltaTx) / elapsed),
		}
	}

	out[metric.NetworkDetails] = metric.Network(rates)
	c.last = current
	c.lastTime = now
	return out
}
