// Insight collector. Probes a local LLM endpoint at most once per hour and
// publishes readiness as a custom metric. High system load defers the
// probe to a later cycle without consuming the hourly slot.
package collector

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/glasspane/telemetry/internal/metric"
)

const (
	// insightInterval is the minimum spacing between probes.
	insightInterval = time.Hour
	// insightTimeout bounds the probe request.
	insightTimeout = 5 * time.Second
)

// InsightMetricID is the custom metric id the probe publishes under.
const InsightMetricID = "ai_insight"

// loadChecker reports whether the system is too loaded to probe.
// Satisfied by sysstat.Guard bound to the shared provider.
type loadChecker func() bool

// InsightCollector is the hourly-throttled external-insight fetcher.
type InsightCollector struct {
	baseURL   string
	client    *http.Client
	overLoad  loadChecker
	logger    *zap.Logger
	lastFetch time.Time
}

// NewInsightCollector creates an insight collector probing baseURL.
// overLoad is consulted before each probe; nil never defers.
func NewInsightCollector(baseURL string, overLoad func() bool, logger *zap.Logger) *InsightCollector {
	if overLoad == nil {
		overLoad = func() bool { return false }
	}
	return &InsightCollector{
		baseURL: baseURL,
		client:  &http.Client{Timeout: insightTimeout},
		// Primed in the past so the first cycle probes immediately.
		lastFetch: time.Now().Add(-insightInterval - time.Second),
		overLoad:  overLoad,
		logger:    logger,
	}
}

// ID returns the collector identifier.
func (c *InsightCollector) ID() string { return "insight" }

// Label returns the collector display name.
func (c *InsightCollector) Label() string { return "AI Insight" }

// Collect probes the endpoint when the hourly slot is open and the system
// is not under load. Between intervals it returns no entry.
func (c *InsightCollector) Collect(ctx context.Context) map[metric.ID]metric.Value {
	out := make(map[metric.ID]metric.Value, 1)

	if time.Since(c.lastFetch) < insightInterval {
		return out
	}
	if c.overLoad() {
		// Deferred, not consumed: the probe retries next cycle.
		c.logger.Debug("insight probe deferred: system under load")
		return out
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		c.logger.Warn("insight request build failed", zap.Error(err))
		return out
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("insight endpoint unreachable", zap.Error(err))
		c.lastFetch = time.Now()
		return out
	}
	defer resp.Body.Close()

	c.lastFetch = time.Now()
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("insight endpoint unhealthy", zap.Int("status", resp.StatusCode))
		return out
	}
	c.logger.Info("insight endpoint ready", zap.String("url", c.baseURL))
	out[metric.Parse(InsightMetricID)] = metric.Str("Ready")
	return out
}
