package collector

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/glasspane/telemetry/internal/metric"
)

func TestGPUParsesCSVByPosition(t *testing.T) {
	c := NewGPUCollectorWithCommand("echo", []string{"45, 67, 30"}, zap.NewNop())
	out := c.Collect(context.Background())

	if got, _ := out[metric.GPUTemp].AsString(); got != "45°C" {
		t.Errorf("GpuTemp = %q, want 45°C", got)
	}
	if got, _ := out[metric.GPUUtil].AsString(); got != "67%" {
		t.Errorf("GpuUtil = %q, want 67%%", got)
	}
}

func TestGPUCommandFailureYieldsNoEntries(t *testing.T) {
	c := NewGPUCollectorWithCommand("false", nil, zap.NewNop())
	out := c.Collect(context.Background())
	if len(out) != 0 {
		t.Errorf("failed command produced entries: %v", out)
	}
}

func TestGPUMissingCommandYieldsNoEntries(t *testing.T) {
	c := NewGPUCollectorWithCommand("definitely-not-a-real-binary", nil, zap.NewNop())
	out := c.Collect(context.Background())
	if len(out) != 0 {
		t.Errorf("missing command produced entries: %v", out)
	}
}

func TestGPUMalformedOutputYieldsNoEntries(t *testing.T) {
	c := NewGPUCollectorWithCommand("echo", []string{"not csv"}, zap.NewNop())
	out := c.Collect(context.Background())
	if len(out) != 0 {
		t.Errorf("malformed output produced entries: %v", out)
	}
}

func TestGPUPartialFieldsParsed(t *testing.T) {
	// Utilization unreadable; temperature still surfaces.
	c := NewGPUCollectorWithCommand("echo", []string{"72, [N/A], 0"}, zap.NewNop())
	out := c.Collect(context.Background())

	if got, _ := out[metric.GPUTemp].AsString(); got != "72°C" {
		t.Errorf("GpuTemp = %q, want 72°C", got)
	}
	if _, ok := out[metric.GPUUtil]; ok {
		t.Error("unparseable utilization produced an entry")
	}
}
