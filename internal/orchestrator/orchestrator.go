// Package orchestrator drives the collection loop: it derives the active
// collector set from configuration, polls every collector on a fixed
// cadence, publishes the merged snapshot atomically, and applies inbound
// reconfiguration commands without stopping the loop.
package orchestrator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/glasspane/telemetry/internal/collector"
	"github.com/glasspane/telemetry/internal/config"
	"github.com/glasspane/telemetry/internal/metric"
	"github.com/glasspane/telemetry/internal/sysstat"
)

const (
	// throttleBackoff is how long a throttled cycle sleeps before retrying.
	throttleBackoff = 2 * time.Second
	// throttleCPUThreshold is the global CPU percentage above which whole
	// cycles are skipped.
	throttleCPUThreshold = 70.0
	// commandBuffer sizes the inbound command channel. The consumer drains
	// it every cycle, so producers only block after this many undrained
	// commands within a single cycle.
	commandBuffer = 64
)

// Command is a reconfiguration or refresh message sent to the orchestrator.
type Command interface{ isCommand() }

// UpdateConfig replaces the active configuration; the collector set is
// rebuilt at the start of the next cycle.
type UpdateConfig struct {
	Config *config.Config
}

// ForceRefresh hints that a consumer wants fresh data. The fixed cadence
// already bounds staleness, so it is logged for observability only.
type ForceRefresh struct{}

func (UpdateConfig) isCommand() {}
func (ForceRefresh) isCommand() {}

// state is the orchestrator's explicit state machine.
type state int

const (
	stateBuilding state = iota
	stateCollecting
	stateSleeping
	stateStopped
)

// Orchestrator owns the collection loop. Run is the only writer of the
// shared snapshot; consumers read through Shared.
type Orchestrator struct {
	cfg        *config.Config
	sys        *sysstat.Provider
	guard      sysstat.Guard
	isSafe     collector.PathChecker
	logger     *zap.Logger
	shared     *Shared
	cmds       chan Command
	collectors []collector.Collector
}

// New creates an orchestrator for the given configuration. isSafe is the
// external path-safety predicate injected into the file and repository
// collectors.
func New(cfg *config.Config, sys *sysstat.Provider, isSafe collector.PathChecker, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		sys:    sys,
		guard:  sysstat.NewGuard(throttleCPUThreshold),
		isSafe: isSafe,
		logger: logger,
		shared: NewShared(),
		cmds:   make(chan Command, commandBuffer),
	}
}

// Shared returns the published-snapshot handle for consumers.
func (o *Orchestrator) Shared() *Shared { return o.shared }

// Commands returns the send handle for reconfiguration commands. Closing
// the channel is a normal shutdown trigger.
func (o *Orchestrator) Commands() chan<- Command { return o.cmds }

// Run drives the state machine until the context is cancelled or the
// command channel closes. It blocks; callers run it on a dedicated
// goroutine. Collectors execute synchronously within the cycle.
func (o *Orchestrator) Run(ctx context.Context) {
	st := stateBuilding
	var cycleStart time.Time

	for st != stateStopped {
		switch st {
		case stateBuilding:
			o.collectors = buildCollectors(o.cfg, o.sys, o.isSafe, o.logger)
			o.logger.Info("collector set built", zap.Int("collectors", len(o.collectors)))
			st = stateCollecting

		case stateCollecting:
			if ctx.Err() != nil {
				st = stateStopped
				continue
			}
			if o.guard.ShouldThrottle(o.sys) {
				o.logger.Debug("cycle skipped: CPU over threshold",
					zap.Float64("threshold", o.guard.Threshold))
				if !sleepCtx(ctx, throttleBackoff) {
					st = stateStopped
				}
				continue
			}

			cycleStart = time.Now()
			rebuilt, closed := o.drainCommands()
			if closed {
				o.logger.Info("command channel closed, shutting down")
				st = stateStopped
				continue
			}
			if rebuilt {
				st = stateBuilding
				continue
			}

			o.publish(o.collect(ctx))
			st = stateSleeping

		case stateSleeping:
			remaining := o.cfg.General.UpdateInterval.Duration - time.Since(cycleStart)
			if remaining > 0 && !sleepCtx(ctx, remaining) {
				st = stateStopped
				continue
			}
			// A cycle overrun proceeds immediately: no catch-up, no
			// skipped-cycle compensation.
			if ctx.Err() != nil {
				st = stateStopped
				continue
			}
			st = stateCollecting
		}
	}
	o.logger.Info("orchestrator stopped")
}

// drainCommands applies all pending commands without blocking. It reports
// whether a configuration change requires a rebuild, and whether the
// channel closed (shutdown). When several UpdateConfig commands are
// queued, the last one wins.
func (o *Orchestrator) drainCommands() (rebuilt, closed bool) {
	for {
		select {
		case cmd, ok := <-o.cmds:
			if !ok {
				return rebuilt, true
			}
			switch c := cmd.(type) {
			case UpdateConfig:
				o.logger.Info("applying configuration update")
				o.cfg = c.Config
				rebuilt = true
			case ForceRefresh:
				o.logger.Info("force refresh requested")
			}
		default:
			return rebuilt, false
		}
	}
}

// collect polls every active collector in registration order and merges
// the partial maps. A collector's failure is its own concern; merge order
// means a later collector wins a contested key.
func (o *Orchestrator) collect(ctx context.Context) map[metric.ID]metric.Value {
	values := make(map[metric.ID]metric.Value)
	for _, c := range o.collectors {
		for id, v := range c.Collect(ctx) {
			values[id] = v
		}
	}
	return values
}

// publish replaces the shared snapshot atomically. Readers see either the
// previous complete snapshot or this one, never a partial merge.
func (o *Orchestrator) publish(values map[metric.ID]metric.Value) {
	snap := metric.Snapshot{
		Values:     values,
		CapturedAt: time.Now(),
		DayOfWeek:  time.Now().Weekday().String(),
	}
	o.shared.store(snap)
	o.logger.Debug("snapshot published", zap.String("summary", snap.Summary()))
}

// sleepCtx sleeps for d or until the context is cancelled. It reports
// false when cancelled.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
