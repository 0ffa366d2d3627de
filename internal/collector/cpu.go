// CPU usage collector — global CPU utilization via the shared provider.
package collector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/glasspane/telemetry/internal/metric"
	"github.com/glasspane/telemetry/internal/sysstat"
)

// CPUCollector collects global CPU usage.
type CPUCollector struct {
	sys    *sysstat.Provider
	logger *zap.Logger
}

// NewCPUCollector creates a CPU collector over the shared provider.
func NewCPUCollector(sys *sysstat.Provider, logger *zap.Logger) *CPUCollector {
	return &CPUCollector{sys: sys, logger: logger}
}

// ID returns the collector identifier.
func (c *CPUCollector) ID() string { return "cpu" }

// Label returns the collector display name.
func (c *CPUCollector) Label() string { return "CPU" }

// Collect returns the global CPU usage formatted to one decimal.
func (c *CPUCollector) Collect(ctx context.Context) map[metric.ID]metric.Value {
	out := make(map[metric.ID]metric.Value, 1)
	pct, err := c.sys.CPUPercent()
	if err != nil {
		c.logger.Warn("CPU refresh failed", zap.Error(err))
		out[metric.CPUUsage] = metric.Str("ERR")
		return out
	}
	out[metric.CPUUsage] = metric.Str(fmt.Sprintf("%.1f%%", pct))
	return out
}
