// Package collector defines the Collector interface and provides one
// implementation per telemetry source. Collectors own their incremental
// state, absorb their own failures, and surface degraded placeholder
// values instead of errors.
package collector

import (
	"context"

	"github.com/glasspane/telemetry/internal/metric"
)

// Collector is the interface all metric collectors implement.
// Collect returns the partial value map for the metrics this collector owns.
// It must never panic on malformed external data: on failure it returns
// either no entry for the affected key or an explicit degraded value
// ("ERR", "N/A", "ACCESS DENIED") and logs a warning. External calls
// (HTTP, subprocesses) carry explicit timeouts so a single collector
// cannot stall a cycle indefinitely.
type Collector interface {
	// ID returns the stable identifier for this collector.
	ID() string

	// Label returns the human-readable name for this collector.
	Label() string

	// Collect gathers the current values. The context bounds cancellation
	// for blocking work; collectors close over their own state and are
	// safe to call once per cycle.
	Collect(ctx context.Context) map[metric.ID]metric.Value
}

// PathChecker is the external path-safety boundary. It is consulted before
// any user-configured file or repository is opened; false is a hard deny
// and is never bypassed.
type PathChecker func(path string) bool
