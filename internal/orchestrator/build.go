package orchestrator

import (
	"go.uber.org/zap"

	"github.com/glasspane/telemetry/internal/collector"
	"github.com/glasspane/telemetry/internal/config"
	"github.com/glasspane/telemetry/internal/metric"
	"github.com/glasspane/telemetry/internal/sysstat"
)

// coreMetrics are always collected regardless of screen configuration.
var coreMetrics = []metric.ID{
	metric.CPUUsage,
	metric.RAMUsage,
	metric.Uptime,
	metric.DayOfWeek,
}

// requiredMetrics derives the set of metric ids referenced anywhere in the
// configuration. Recomputed on every configuration update, never persisted.
func requiredMetrics(cfg *config.Config) map[metric.ID]bool {
	required := make(map[metric.ID]bool)
	for _, id := range coreMetrics {
		required[id] = true
	}
	for _, screen := range cfg.Screens {
		for _, name := range screen.Metrics {
			required[metric.Parse(name)] = true
		}
	}
	return required
}

// buildCollectors instantiates exactly the collectors whose outputs
// intersect the required metric set. The day-of-week collector is always
// included; weather, files, repositories, and the insight probe follow
// their own configuration switches.
func buildCollectors(cfg *config.Config, sys *sysstat.Provider, isSafe collector.PathChecker, logger *zap.Logger) []collector.Collector {
	required := requiredMetrics(cfg)
	anyOf := func(ids ...metric.ID) bool {
		for _, id := range ids {
			if required[id] {
				return true
			}
		}
		return false
	}

	var out []collector.Collector
	if anyOf(metric.CPUUsage) {
		out = append(out, collector.NewCPUCollector(sys, logger))
	}
	if anyOf(metric.RAMUsage, metric.RAMUsed, metric.RAMTotal) {
		out = append(out, collector.NewMemoryCollector(sys, logger))
	}
	if anyOf(metric.Uptime, metric.LoadAvg) {
		out = append(out, collector.NewUptimeLoadCollector(sys, logger))
	}
	if anyOf(metric.DiskUsage) {
		out = append(out, collector.NewDiskCollector(sys, logger))
	}
	if anyOf(metric.NetworkDetails) {
		out = append(out, collector.NewNetworkCollector(logger))
	}
	if anyOf(metric.CPUTemp, metric.FanSpeed, metric.GPUTemp) {
		out = append(out, collector.NewHwmonCollector(logger))
	}
	if anyOf(metric.GPUTemp, metric.GPUUtil) {
		out = append(out, collector.NewGPUCollector(logger))
	}
	if cfg.Weather.Enabled {
		out = append(out, collector.NewWeatherCollector(cfg.Weather.Lat, cfg.Weather.Lon, cfg.Weather.BaseURL, logger))
	}
	if len(cfg.CustomFiles) > 0 {
		files := make([]collector.WatchedFile, 0, len(cfg.CustomFiles))
		for _, f := range cfg.CustomFiles {
			files = append(files, collector.WatchedFile{
				Name:     f.Name,
				Path:     f.Path,
				MetricID: f.MetricID,
				Tail:     f.Tail,
			})
		}
		out = append(out, collector.NewFileCollector(files, isSafe, logger))
	}
	if len(cfg.Productivity.Repos) > 0 {
		out = append(out, collector.NewGitCollector(cfg.Productivity.Repos, cfg.Productivity.BatchCap, isSafe, logger))
	}
	if cfg.Productivity.InsightEnabled {
		guard := sysstat.NewGuard(80.0)
		out = append(out, collector.NewInsightCollector(cfg.Productivity.InsightURL,
			func() bool { return guard.ShouldThrottle(sys) }, logger))
	}
	out = append(out, collector.NewDateCollector())
	return out
}
