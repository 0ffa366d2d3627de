// Uptime and load-average collector via the shared provider.
package collector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/glasspane/telemetry/internal/metric"
	"github.com/glasspane/telemetry/internal/sysstat"
)

// UptimeLoadCollector collects system uptime and the 1-minute load average.
type UptimeLoadCollector struct {
	sys    *sysstat.Provider
	logger *zap.Logger
}

// NewUptimeLoadCollector creates an uptime/load collector over the shared provider.
func NewUptimeLoadCollector(sys *sysstat.Provider, logger *zap.Logger) *UptimeLoadCollector {
	return &UptimeLoadCollector{sys: sys, logger: logger}
}

// ID returns the collector identifier.
func (c *UptimeLoadCollector) ID() string { return "uptime_load" }

// Label returns the collector display name.
func (c *UptimeLoadCollector) Label() string { return "System" }

// Collect returns uptime ("D days H:MM" or "H:MM") and the 1m load average.
func (c *UptimeLoadCollector) Collect(ctx context.Context) map[metric.ID]metric.Value {
	out := make(map[metric.ID]metric.Value, 2)

	secs, err := c.sys.UptimeSeconds()
	if err != nil {
		c.logger.Warn("uptime refresh failed", zap.Error(err))
		out[metric.Uptime] = metric.Str("ERR")
	} else {
		out[metric.Uptime] = metric.Str(FormatUptime(secs))
	}

	if load1, err := c.sys.Load1(); err != nil {
		c.logger.Warn("load average unavailable", zap.Error(err))
	} else {
		out[metric.LoadAvg] = metric.Str(fmt.Sprintf("%.2f", load1))
	}
	return out
}

// FormatUptime renders seconds since boot as "D days H:MM" when at least a
// day has passed, otherwise "H:MM".
func FormatUptime(secs uint64) string {
	days := secs / 86400
	hours := (secs % 86400) / 3600
	mins := (secs % 3600) / 60
	if days > 0 {
		return fmt.Sprintf("%d days %d:%02d", days, hours, mins)
	}
	return fmt.Sprintf("%d:%02d", hours, mins)
}
