// Hardware sensor collector. Scans the hwmon sensor tree for known chips
// (CPU package, GPU, system management controller) to read temperatures
// and fan speed, falling back to parsing sensors(1) output when the
// expected chips are not present.
package collector

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/glasspane/telemetry/internal/metric"
)

// sensorCLITimeout bounds the sensors(1) fallback invocation.
const sensorCLITimeout = 5 * time.Second

// HwmonCollector reads temperatures and fan RPM from the sensor tree.
type HwmonCollector struct {
	basePath string
	// cliCommand is the fallback binary; replaceable in tests.
	cliCommand string
	logger     *zap.Logger
}

// NewHwmonCollector creates a sensor collector over /sys/class/hwmon.
func NewHwmonCollector(logger *zap.Logger) *HwmonCollector {
	return &HwmonCollector{basePath: "/sys/class/hwmon", cliCommand: "sensors", logger: logger}
}

// NewHwmonCollectorWithPath creates a sensor collector over an alternate
// sensor tree root, used by tests.
func NewHwmonCollectorWithPath(path string, logger *zap.Logger) *HwmonCollector {
	return &HwmonCollector{basePath: path, cliCommand: "sensors", logger: logger}
}

// ID returns the collector identifier.
func (c *HwmonCollector) ID() string { return "hwmon" }

// Label returns the collector display name.
func (c *HwmonCollector) Label() string { return "Sensors" }

// Collect scans the sensor tree for known chips. Missing readings trigger
// the sensors(1) CLI fallback for the gaps only.
func (c *HwmonCollector) Collect(ctx context.Context) map[metric.ID]metric.Value {
	out := make(map[metric.ID]metric.Value, 3)
	foundCPU, foundGPU, foundFan := false, false, false

	entries, err := os.ReadDir(c.basePath)
	if err != nil {
		c.logger.Debug("sensor tree unavailable", zap.String("path", c.basePath), zap.Error(err))
	}
	for _, entry := range entries {
		chipDir := filepath.Join(c.basePath, entry.Name())
		name, ok := readChipName(chipDir)
		if !ok {
			continue
		}
		switch name {
		case "k10temp", "coretemp":
			if milli, ok := readSensorInt(filepath.Join(chipDir, "temp1_input")); ok {
				out[metric.CPUTemp] = metric.Str(formatMilliCelsius(milli))
				foundCPU = true
			}
		case "amdgpu":
			if milli, ok := readSensorInt(filepath.Join(chipDir, "temp1_input")); ok {
				out[metric.GPUTemp] = metric.Str(formatMilliCelsius(milli))
				foundGPU = true
			}
			if rpm, ok := readSensorInt(filepath.Join(chipDir, "fan1_input")); ok {
				out[metric.FanSpeed] = metric.Str(fmt.Sprintf("%d RPM", rpm))
				foundFan = true
			}
		case "dell_smm":
			if rpm, ok := readSensorInt(filepath.Join(chipDir, "fan1_input")); ok {
				out[metric.FanSpeed] = metric.Str(fmt.Sprintf("%d RPM", rpm))
				foundFan = true
			}
		}
	}

	if !foundCPU || !foundGPU || !foundFan {
		c.collectFromCLI(ctx, out, foundCPU, foundGPU, foundFan)
	}
	return out
}

// collectFromCLI fills readings the sensor tree did not provide by parsing
// sensors(1) output: adapter header lines followed by "label: value" lines.
func (c *HwmonCollector) collectFromCLI(ctx context.Context, out map[metric.ID]metric.Value, foundCPU, foundGPU, foundFan bool) {
	cliCtx, cancel := context.WithTimeout(ctx, sensorCLITimeout)
	defer cancel()

	raw, err := exec.CommandContext(cliCtx, c.cliCommand).Output()
	if err != nil {
		c.logger.Debug("sensors CLI fallback unavailable", zap.Error(err))
		return
	}

	adapter := ""
	for _, line := range strings.Split(string(raw), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !strings.Contains(line, ":") {
			adapter = strings.TrimSpace(line)
			continue
		}
		switch {
		case !foundCPU && strings.HasPrefix(adapter, "k10temp") && strings.Contains(line, "Tctl:"):
			if val, ok := extractSensorValue(line); ok {
				out[metric.CPUTemp] = metric.Str(val)
				foundCPU = true
			}
		case !foundGPU && strings.HasPrefix(adapter, "amdgpu") && strings.Contains(line, "edge:"):
			if val, ok := extractSensorValue(line); ok {
				out[metric.GPUTemp] = metric.Str(val)
				foundGPU = true
			}
		case !foundFan && (strings.HasPrefix(adapter, "amdgpu") || strings.HasPrefix(adapter, "dell_smm")) && strings.Contains(line, "fan1:"):
			if val, ok := extractSensorValue(line); ok {
				out[metric.FanSpeed] = metric.Str(val)
				foundFan = true
			}
		}
	}
}

// readChipName reads the chip's "name" file.
func readChipName(chipDir string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(chipDir, "name"))
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// readSensorInt reads a single-integer sensor file.
func readSensorInt(path string) (int64, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	val, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// formatMilliCelsius renders a milli-degree reading to one decimal.
func formatMilliCelsius(milli int64) string {
	return fmt.Sprintf("%.1f°C", float64(milli)/1000.0)
}

// extractSensorValue pulls the reading out of a sensors(1) line such as
// "Tctl:         +45.1°C  (high = +70.0°C)", dropping the leading sign
// and the parenthesized limits.
func extractSensorValue(line string) (string, bool) {
	_, rest, ok := strings.Cut(line, ":")
	if !ok {
		return "", false
	}
	val, _, _ := strings.Cut(rest, "(")
	val = strings.TrimSpace(val)
	val = strings.ReplaceAll(val, "+", "")
	if val == "" {
		return "", false
	}
	return val, true
}
