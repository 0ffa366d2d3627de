// Day-of-week collector for the header display. Always registered.
package collector

import (
	"context"
	"time"

	"github.com/glasspane/telemetry/internal/metric"
)

// DateCollector emits the current English weekday name.
type DateCollector struct {
	// now is replaceable in tests.
	now func() time.Time
}

// NewDateCollector creates a date collector using the wall clock.
func NewDateCollector() *DateCollector {
	return &DateCollector{now: time.Now}
}

// ID returns the collector identifier.
func (c *DateCollector) ID() string { return "date" }

// Label returns the collector display name.
func (c *DateCollector) Label() string { return "Date" }

// Collect returns the current day of week.
func (c *DateCollector) Collect(ctx context.Context) map[metric.ID]metric.Value {
	return map[metric.ID]metric.Value{
		metric.DayOfWeek: metric.Str(c.now().Weekday().String()),
	}
}
