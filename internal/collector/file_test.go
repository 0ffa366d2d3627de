package collector

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/glasspane/telemetry/internal/metric"
)

func TestFileDeniedPathYieldsAccessDeniedWithoutRead(t *testing.T) {
	checked := ""
	deny := func(p string) bool {
		checked = p
		return false
	}
	// The path does not exist: a read attempt would surface "N/A" instead,
	// so ACCESS DENIED proves the file was never touched.
	files := []WatchedFile{{Name: "status", Path: "/nonexistent/status.txt", MetricID: "server_status"}}
	c := NewFileCollector(files, deny, zap.NewNop())

	out := c.Collect(context.Background())
	got, _ := out[metric.Parse("server_status")].AsString()
	if got != "ACCESS DENIED" {
		t.Errorf("value = %q, want ACCESS DENIED", got)
	}
	if checked != "/nonexistent/status.txt" {
		t.Errorf("path checker consulted with %q", checked)
	}
}

func TestFileFullContentTrimmed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.txt")
	if err := os.WriteFile(path, []byte("  all systems go\n"), 0644); err != nil {
		t.Fatal(err)
	}
	c := NewFileCollector([]WatchedFile{{Path: path, MetricID: "st"}}, allowAll, zap.NewNop())
	got, _ := c.Collect(context.Background())[metric.Parse("st")].AsString()
	if got != "all systems go" {
		t.Errorf("value = %q, want trimmed content", got)
	}
}

func TestFileTailReturnsLastLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	if err := os.WriteFile(path, []byte("first\nsecond\nlast line\n"), 0644); err != nil {
		t.Fatal(err)
	}
	c := NewFileCollector([]WatchedFile{{Path: path, MetricID: "log", Tail: true}}, allowAll, zap.NewNop())
	got, _ := c.Collect(context.Background())[metric.Parse("log")].AsString()
	if got != "last line" {
		t.Errorf("value = %q, want last line", got)
	}
}

func TestFileReadCappedAt64KiB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.txt")
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 100*1024)), 0644); err != nil {
		t.Fatal(err)
	}
	c := NewFileCollector([]WatchedFile{{Path: path, MetricID: "big"}}, allowAll, zap.NewNop())
	got, _ := c.Collect(context.Background())[metric.Parse("big")].AsString()
	if len(got) != 64*1024 {
		t.Errorf("read %d bytes, want cap at %d", len(got), 64*1024)
	}
}

func TestFileInvalidUTF8Replaced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bin.txt")
	if err := os.WriteFile(path, []byte{'o', 'k', 0xff, 0xfe}, 0644); err != nil {
		t.Fatal(err)
	}
	c := NewFileCollector([]WatchedFile{{Path: path, MetricID: "bin"}}, allowAll, zap.NewNop())
	got, _ := c.Collect(context.Background())[metric.Parse("bin")].AsString()
	if !strings.HasPrefix(got, "ok") || !strings.Contains(got, "�") {
		t.Errorf("value = %q, want lossy-decoded content", got)
	}
}

func TestFileMissingYieldsNA(t *testing.T) {
	c := NewFileCollector([]WatchedFile{{Path: filepath.Join(t.TempDir(), "gone.txt"), MetricID: "gone"}}, allowAll, zap.NewNop())
	got, _ := c.Collect(context.Background())[metric.Parse("gone")].AsString()
	if got != "N/A" {
		t.Errorf("value = %q, want N/A", got)
	}
}
