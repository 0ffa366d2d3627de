// Custom-file collector. Surfaces user-configured files (status files,
// shared logs) as custom metrics, gated by the path-safety boundary and
// capped at a fixed read size.
package collector

import (
	"context"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/glasspane/telemetry/internal/metric"
)

// maxFileBytes caps how much of a watched file is read per cycle.
const maxFileBytes = 64 * 1024

// WatchedFile describes one user-configured file to surface as a metric.
type WatchedFile struct {
	// Name is the display label.
	Name string
	// Path is the file to read.
	Path string
	// MetricID is the custom metric id the content is published under.
	MetricID string
	// Tail selects only the last line of the file instead of the full content.
	Tail bool
}

// FileCollector reads watched files into custom metric values.
type FileCollector struct {
	files  []WatchedFile
	isSafe PathChecker
	logger *zap.Logger
}

// NewFileCollector creates a file collector. isSafe is consulted before
// every read; a denied path yields "ACCESS DENIED" without touching the file.
func NewFileCollector(files []WatchedFile, isSafe PathChecker, logger *zap.Logger) *FileCollector {
	return &FileCollector{files: files, isSafe: isSafe, logger: logger}
}

// ID returns the collector identifier.
func (c *FileCollector) ID() string { return "files" }

// Label returns the collector display name.
func (c *FileCollector) Label() string { return "Files" }

// Collect reads each watched file, capped at 64 KiB, with invalid UTF-8
// replaced. Unreadable files degrade to "N/A".
func (c *FileCollector) Collect(ctx context.Context) map[metric.ID]metric.Value {
	out := make(map[metric.ID]metric.Value, len(c.files))
	for _, f := range c.files {
		if !c.isSafe(f.Path) {
			c.logger.Warn("access denied: unsafe watched-file path", zap.String("path", f.Path))
			out[metric.Parse(f.MetricID)] = metric.Str("ACCESS DENIED")
			continue
		}
		out[metric.Parse(f.MetricID)] = metric.Str(c.readFile(f))
	}
	return out
}

// readFile returns the trimmed content (or last line) of one watched file.
func (c *FileCollector) readFile(f WatchedFile) string {
	file, err := os.Open(f.Path)
	if err != nil {
		c.logger.Warn("watched file unreadable", zap.String("path", f.Path), zap.Error(err))
		return "N/A"
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxFileBytes))
	if err != nil {
		c.logger.Warn("watched file read failed", zap.String("path", f.Path), zap.Error(err))
		return "N/A"
	}

	content := strings.TrimSpace(strings.ToValidUTF8(string(data), "�"))
	if f.Tail {
		lines := strings.Split(content, "\n")
		return strings.TrimSpace(lines[len(lines)-1])
	}
	return content
}
