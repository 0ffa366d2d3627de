// Memory usage collector — used/total RAM via the shared provider.
package collector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/glasspane/telemetry/internal/metric"
	"github.com/glasspane/telemetry/internal/sysstat"
)

const bytesPerGB = 1024.0 * 1024.0 * 1024.0

// MemoryCollector collects RAM usage metrics.
type MemoryCollector struct {
	sys    *sysstat.Provider
	logger *zap.Logger
}

// NewMemoryCollector creates a memory collector over the shared provider.
func NewMemoryCollector(sys *sysstat.Provider, logger *zap.Logger) *MemoryCollector {
	return &MemoryCollector{sys: sys, logger: logger}
}

// ID returns the collector identifier.
func (c *MemoryCollector) ID() string { return "memory" }

// Label returns the collector display name.
func (c *MemoryCollector) Label() string { return "RAM" }

// Collect returns used GB, usage percent, and total GB.
func (c *MemoryCollector) Collect(ctx context.Context) map[metric.ID]metric.Value {
	out := make(map[metric.ID]metric.Value, 3)
	used, total, err := c.sys.Memory()
	if err != nil {
		c.logger.Warn("memory refresh failed", zap.Error(err))
		out[metric.RAMUsage] = metric.Str("ERR")
		return out
	}

	pct := 0.0
	if total > 0 {
		pct = float64(used) / float64(total) * 100.0
	}
	out[metric.RAMUsed] = metric.Str(fmt.Sprintf("%.1f GB", float64(used)/bytesPerGB))
	out[metric.RAMTotal] = metric.Str(fmt.Sprintf("%.1f GB", float64(total)/bytesPerGB))
	out[metric.RAMUsage] = metric.Str(fmt.Sprintf("%.0f%%", pct))
	return out
}
