package collector

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/glasspane/telemetry/internal/metric"
)

// writeChip lays out one hwmon chip directory with the given sensor files.
func writeChip(t *testing.T, root, dir, name string, files map[string]string) {
	t.Helper()
	chip := filepath.Join(root, dir)
	if err := os.MkdirAll(chip, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(chip, "name"), []byte(name+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	for f, content := range files {
		if err := os.WriteFile(filepath.Join(chip, f), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

// noCLI points the sensors fallback at a binary that cannot exist, so host
// tooling never leaks into assertions.
func noCLI(c *HwmonCollector) *HwmonCollector {
	c.cliCommand = "definitely-not-a-real-binary"
	return c
}

func TestHwmonCPUPackageTemperature(t *testing.T) {
	root := t.TempDir()
	writeChip(t, root, "hwmon0", "k10temp", map[string]string{"temp1_input": "45123\n"})

	c := noCLI(NewHwmonCollectorWithPath(root, zap.NewNop()))
	out := c.Collect(context.Background())

	got, ok := out[metric.CPUTemp].AsString()
	if !ok {
		t.Fatal("CpuTemp missing")
	}
	if got != "45.1°C" {
		t.Errorf("CpuTemp = %q, want %q", got, "45.1°C")
	}
}

func TestHwmonGPUAndFans(t *testing.T) {
	root := t.TempDir()
	writeChip(t, root, "hwmon0", "k10temp", map[string]string{"temp1_input": "60000\n"})
	writeChip(t, root, "hwmon1", "amdgpu", map[string]string{
		"temp1_input": "51500\n",
		"fan1_input":  "2400\n",
	})
	writeChip(t, root, "hwmon2", "dell_smm", map[string]string{"fan1_input": "3100\n"})

	c := noCLI(NewHwmonCollectorWithPath(root, zap.NewNop()))
	out := c.Collect(context.Background())

	if got, _ := out[metric.GPUTemp].AsString(); got != "51.5°C" {
		t.Errorf("GpuTemp = %q, want 51.5°C", got)
	}
	if got, _ := out[metric.FanSpeed].AsString(); got != "2400 RPM" && got != "3100 RPM" {
		t.Errorf("FanSpeed = %q, want a chip reading", got)
	}
}

func TestHwmonMalformedSensorFileIgnored(t *testing.T) {
	root := t.TempDir()
	writeChip(t, root, "hwmon0", "k10temp", map[string]string{"temp1_input": "not-a-number\n"})

	c := noCLI(NewHwmonCollectorWithPath(root, zap.NewNop()))
	out := c.Collect(context.Background())
	if _, ok := out[metric.CPUTemp]; ok {
		t.Error("malformed sensor file produced a CpuTemp entry")
	}
}

func TestHwmonMissingTreeDoesNotPanic(t *testing.T) {
	c := NewHwmonCollectorWithPath(filepath.Join(t.TempDir(), "absent"), zap.NewNop())
	// The CLI fallback may or may not exist on the host; either way the
	// collector must return without panicking.
	_ = c.Collect(context.Background())
}

func TestHwmonCLIFallbackParsesSensorsOutput(t *testing.T) {
	script := filepath.Join(t.TempDir(), "fake-sensors")
	output := "k10temp-pci-00c3\n" +
		"Tctl:         +45.1°C  (high = +70.0°C)\n" +
		"\n" +
		"amdgpu-pci-0300\n" +
		"fan1:        2400 RPM\n" +
		"edge:         +51.0°C\n"
	if err := os.WriteFile(script, []byte("#!/bin/sh\nprintf '%s' \""+output+"\"\n"), 0755); err != nil {
		t.Fatal(err)
	}

	// Empty sensor tree forces the CLI path for every reading.
	c := NewHwmonCollectorWithPath(t.TempDir(), zap.NewNop())
	c.cliCommand = script
	out := c.Collect(context.Background())

	if got, _ := out[metric.CPUTemp].AsString(); got != "45.1°C" {
		t.Errorf("CpuTemp = %q, want 45.1°C", got)
	}
	if got, _ := out[metric.GPUTemp].AsString(); got != "51.0°C" {
		t.Errorf("GpuTemp = %q, want 51.0°C", got)
	}
	if got, _ := out[metric.FanSpeed].AsString(); got != "2400 RPM" {
		t.Errorf("FanSpeed = %q, want 2400 RPM", got)
	}
}

func TestExtractSensorValue(t *testing.T) {
	tests := []struct {
		line string
		want string
		ok   bool
	}{
		{"Tctl:         +45.1°C", "45.1°C", true},
		{"fan1:        2400 RPM", "2400 RPM", true},
		{"edge:         +51.0°C  (crit = +100.0°C)", "51.0°C", true},
		{"no colon here", "", false},
		{"label:", "", false},
	}
	for _, tt := range tests {
		got, ok := extractSensorValue(tt.line)
		if ok != tt.ok || got != tt.want {
			t.Errorf("extractSensorValue(%q) = %q, %v; want %q, %v", tt.line, got, ok, tt.want, tt.ok)
		}
	}
}
