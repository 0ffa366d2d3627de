// Disk usage collector — root mount only, via the shared provider.
package collector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/glasspane/telemetry/internal/metric"
	"github.com/glasspane/telemetry/internal/sysstat"
)

// DiskCollector collects used/total disk space for the root mount.
type DiskCollector struct {
	sys    *sysstat.Provider
	logger *zap.Logger
}

// NewDiskCollector creates a disk collector over the shared provider.
func NewDiskCollector(sys *sysstat.Provider, logger *zap.Logger) *DiskCollector {
	return &DiskCollector{sys: sys, logger: logger}
}

// ID returns the collector identifier.
func (c *DiskCollector) ID() string { return "disk" }

// Label returns the collector display name.
func (c *DiskCollector) Label() string { return "Disk" }

// Collect returns root-mount usage as a percentage. An unreadable root
// mount yields no entry.
func (c *DiskCollector) Collect(ctx context.Context) map[metric.ID]metric.Value {
	out := make(map[metric.ID]metric.Value, 1)
	used, total, err := c.sys.RootUsage()
	if err != nil {
		c.logger.Warn("root disk usage unavailable", zap.Error(err))
		return out
	}
	pct := 0.0
	if total > 0 {
		pct = float64(used) / float64(total) * 100.0
	}
	out[metric.DiskUsage] = metric.Str(fmt.Sprintf("%.1f%%", pct))
	return out
}
