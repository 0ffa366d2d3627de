// GPU collector backed by the vendor query CLI. Invokes nvidia-smi for a
// comma-separated temperature/utilization/fan line and parses by field
// position. Any failure yields no entries, never a crash.
package collector

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/glasspane/telemetry/internal/metric"
)

// gpuCLITimeout bounds the vendor CLI invocation.
const gpuCLITimeout = 5 * time.Second

// GPUCollector queries GPU temperature and utilization through the vendor CLI.
type GPUCollector struct {
	command string
	args    []string
	logger  *zap.Logger
}

// NewGPUCollector creates a collector invoking nvidia-smi.
func NewGPUCollector(logger *zap.Logger) *GPUCollector {
	return &GPUCollector{
		command: "nvidia-smi",
		args: []string{
			"--query-gpu=temperature.gpu,utilization.gpu,fan.speed",
			"--format=csv,noheader,nounits",
		},
		logger: logger,
	}
}

// NewGPUCollectorWithCommand creates a collector invoking an alternate
// command, used by tests.
func NewGPUCollectorWithCommand(command string, args []string, logger *zap.Logger) *GPUCollector {
	return &GPUCollector{command: command, args: args, logger: logger}
}

// ID returns the collector identifier.
func (c *GPUCollector) ID() string { return "gpu" }

// Label returns the collector display name.
func (c *GPUCollector) Label() string { return "GPU" }

// Collect runs the query command and parses temperature and utilization.
// Nonzero exit status or malformed output produces no entries.
func (c *GPUCollector) Collect(ctx context.Context) map[metric.ID]metric.Value {
	out := make(map[metric.ID]metric.Value, 2)

	cliCtx, cancel := context.WithTimeout(ctx, gpuCLITimeout)
	defer cancel()

	raw, err := exec.CommandContext(cliCtx, c.command, c.args...).Output()
	if err != nil {
		c.logger.Warn("GPU query command failed", zap.String("command", c.command), zap.Error(err))
		return out
	}

	parts := strings.Split(strings.TrimSpace(string(raw)), ",")
	if len(parts) < 3 {
		c.logger.Warn("GPU query output format mismatch", zap.String("output", strings.TrimSpace(string(raw))))
		return out
	}
	if temp, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err == nil {
		out[metric.GPUTemp] = metric.Str(fmt.Sprintf("%.0f°C", temp))
	}
	if util, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err == nil {
		out[metric.GPUUtil] = metric.Str(fmt.Sprintf("%.0f%%", util))
	}
	// parts[2] is the fan speed; the hwmon collector owns FanSpeed.
	return out
}
