package orchestrator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/glasspane/telemetry/internal/config"
	"github.com/glasspane/telemetry/internal/metric"
	"github.com/glasspane/telemetry/internal/sysstat"
)

func allowAll(string) bool { return true }

func collectorIDs(cfg *config.Config) map[string]bool {
	ids := make(map[string]bool)
	for _, c := range buildCollectors(cfg, sysstat.NewProvider(), allowAll, zap.NewNop()) {
		ids[c.ID()] = true
	}
	return ids
}

func TestBuildCollectorsMinimalSet(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Screens = []config.ScreenConfig{{Metrics: []string{"cpu_usage", "day_of_week"}}}

	ids := collectorIDs(cfg)

	// Core metrics keep cpu, memory, uptime and date alive even with a
	// minimal screen list.
	for _, want := range []string{"cpu", "memory", "uptime_load", "date"} {
		if !ids[want] {
			t.Errorf("collector %q missing from minimal set %v", want, ids)
		}
	}
	for _, banned := range []string{"network", "weather", "hwmon", "gpu", "disk", "files", "git_delta", "insight"} {
		if ids[banned] {
			t.Errorf("collector %q built without any metric requiring it", banned)
		}
	}
}

func TestBuildCollectorsFollowsConfigSwitches(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Screens = []config.ScreenConfig{{Metrics: []string{"network_details", "gpu_temp"}}}
	cfg.Weather.Enabled = true
	cfg.CustomFiles = []config.CustomFile{{Path: "/tmp/x", MetricID: "x"}}
	cfg.Productivity.Repos = []string{"/tmp/repo"}
	cfg.Productivity.InsightEnabled = true

	ids := collectorIDs(cfg)
	for _, want := range []string{"network", "hwmon", "gpu", "weather", "files", "git_delta", "insight"} {
		if !ids[want] {
			t.Errorf("collector %q missing from %v", want, ids)
		}
	}
}

func TestBuildCollectorsLoadAvgRoutesToUptimeLoad(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Screens = []config.ScreenConfig{{Metrics: []string{"load_avg"}}}

	ids := collectorIDs(cfg)
	if !ids["uptime_load"] {
		t.Errorf("load_avg did not select the uptime/load collector: %v", ids)
	}
}

func TestDrainCommandsLastUpdateWins(t *testing.T) {
	orch := New(config.DefaultConfig(), sysstat.NewProvider(), allowAll, zap.NewNop())

	first := config.DefaultConfig()
	first.Productivity.BatchCap = 2
	second := config.DefaultConfig()
	second.Productivity.BatchCap = 9

	orch.cmds <- UpdateConfig{Config: first}
	orch.cmds <- ForceRefresh{}
	orch.cmds <- UpdateConfig{Config: second}

	rebuilt, closed := orch.drainCommands()
	if !rebuilt || closed {
		t.Fatalf("drainCommands = (%v, %v), want (true, false)", rebuilt, closed)
	}
	if orch.cfg.Productivity.BatchCap != 9 {
		t.Errorf("batch cap = %d, want the last queued update", orch.cfg.Productivity.BatchCap)
	}
}

func TestRunPicksUpWeatherAfterUpdateConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"current":{"temperature_2m":21.0,"weather_code":0}}`))
	}))
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.General.UpdateInterval = config.Duration{Duration: 20 * time.Millisecond}
	cfg.Screens = []config.ScreenConfig{{Metrics: []string{"cpu_usage"}}}

	orch := New(cfg, sysstat.NewProvider(), allowAll, zap.NewNop())
	orch.guard = sysstat.NewGuard(101) // busy CI hosts must not starve the loop
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		orch.Run(ctx)
		close(done)
	}()

	// Wait for the first snapshot before reconfiguring.
	waitFor(t, orch, metric.DayOfWeek)

	if _, ok := orch.Shared().Load().Values[metric.WeatherTemp]; ok {
		t.Fatal("weather present before it was enabled")
	}

	next := cfg.Clone()
	next.Weather.Enabled = true
	next.Weather.BaseURL = srv.URL
	orch.Commands() <- UpdateConfig{Config: next}

	waitFor(t, orch, metric.WeatherTemp)
	if got, _ := orch.Shared().Load().Values[metric.WeatherTemp].AsString(); got != "21.0°C" {
		t.Errorf("WeatherTemp = %q, want 21.0°C", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func TestRunStopsWhenCommandChannelCloses(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.General.UpdateInterval = config.Duration{Duration: 20 * time.Millisecond}
	cfg.Screens = []config.ScreenConfig{{Metrics: []string{"day_of_week"}}}

	orch := New(cfg, sysstat.NewProvider(), allowAll, zap.NewNop())
	orch.guard = sysstat.NewGuard(101)

	done := make(chan struct{})
	go func() {
		orch.Run(context.Background())
		close(done)
	}()

	waitFor(t, orch, metric.DayOfWeek)
	close(orch.cmds)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after the command channel closed")
	}
}

func TestSharedLoadIsolatedFromLaterPublishes(t *testing.T) {
	orch := New(config.DefaultConfig(), sysstat.NewProvider(), allowAll, zap.NewNop())

	orch.publish(map[metric.ID]metric.Value{metric.CPUUsage: metric.Str("1.0%")})
	first := orch.Shared().Load()

	orch.publish(map[metric.ID]metric.Value{metric.CPUUsage: metric.Str("2.0%")})

	if got, _ := first.Values[metric.CPUUsage].AsString(); got != "1.0%" {
		t.Errorf("earlier load mutated to %q", got)
	}
	if got, _ := orch.Shared().Load().Values[metric.CPUUsage].AsString(); got != "2.0%" {
		t.Errorf("latest load = %q, want the newest snapshot", got)
	}
}

// waitFor polls the shared snapshot until id appears or the deadline hits.
func waitFor(t *testing.T, orch *Orchestrator, id metric.ID) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := orch.Shared().Load().Values[id]; ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("metric %q never appeared in the shared snapshot", id)
}
