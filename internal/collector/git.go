// Code-delta collector. Answers "how many lines were added/deleted across
// the configured repositories within the rolling window" without letting a
// single cycle's cost grow with repository size: repositories are visited
// in capped round-robin batches, each history walk is capped and stops at
// the window edge, and the aggregate is cached for an hour once a full
// rotation pass has completed.
package collector

import (
	"context"
	"fmt"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"go.uber.org/zap"

	"github.com/glasspane/telemetry/internal/metric"
)

const (
	// defaultBatchCap is the maximum repositories visited per cycle.
	defaultBatchCap = 5
	// commitWalkCap is the maximum commits visited per repository walk.
	commitWalkCap = 500
	// deltaCacheTTL is how long a completed aggregate is served from cache.
	deltaCacheTTL = time.Hour
	// bootstrapWindow applies during the first hour of process uptime so
	// the metric is not empty right after startup.
	bootstrapWindow = time.Hour
	// steadyWindow is the rolling window once the process has been up an hour.
	steadyWindow = 24 * time.Hour
)

// lineDelta is an added/deleted line-count pair.
type lineDelta struct {
	added   int64
	deleted int64
}

func (d lineDelta) format() string {
	return fmt.Sprintf("+%d / -%d", d.added, d.deleted)
}

// GitCollector computes the rolling-window code delta over a set of local
// repositories. All incremental state (rotation cursor, cached totals,
// pass accumulator) is owned by the instance.
type GitCollector struct {
	repos    []string
	isSafe   PathChecker
	logger   *zap.Logger
	batchCap int

	cursor    int
	pending   lineDelta
	cached    lineDelta
	computed  bool
	lastCheck time.Time
	startTime time.Time
}

// NewGitCollector creates a code-delta collector. batchCap values below 1
// fall back to the default.
func NewGitCollector(repos []string, batchCap int, isSafe PathChecker, logger *zap.Logger) *GitCollector {
	if batchCap < 1 {
		batchCap = defaultBatchCap
	}
	return &GitCollector{
		repos:     repos,
		isSafe:    isSafe,
		logger:    logger,
		batchCap:  batchCap,
		startTime: time.Now(),
	}
}

// ID returns the collector identifier.
func (c *GitCollector) ID() string { return "git_delta" }

// Label returns the collector display name.
func (c *GitCollector) Label() string { return "Productivity" }

// Collect returns the "+added / -deleted" aggregate. While a rotation pass
// is in flight it scans the next batch and reports the running partial
// total; once the cursor completes a pass, the total is cached and served
// for an hour. Unsafe or unopenable repositories are skipped with a
// warning, never fatal.
func (c *GitCollector) Collect(ctx context.Context) map[metric.ID]metric.Value {
	now := time.Now()

	if len(c.repos) == 0 {
		return map[metric.ID]metric.Value{metric.CodeDelta: metric.Str(lineDelta{}.format())}
	}

	// Serve the completed aggregate while it is fresh. The explicit
	// computed flag distinguishes "no data yet" from a legitimate zero
	// delta, so quiet windows do not force a rescan every cycle.
	if c.computed && now.Sub(c.lastCheck) < deltaCacheTTL {
		return map[metric.ID]metric.Value{metric.CodeDelta: metric.Str(c.cached.format())}
	}

	cutoff := now.Add(-c.window(now))

	count := len(c.repos)
	if count > c.batchCap {
		count = c.batchCap
	}
	for i := 0; i < count; i++ {
		idx := (c.cursor + i) % len(c.repos)
		d := c.scanRepo(ctx, c.repos[idx], cutoff)
		c.pending.added += d.added
		c.pending.deleted += d.deleted
	}
	c.cursor = (c.cursor + count) % len(c.repos)

	if c.cursor == 0 {
		// Full pass complete: promote the accumulator to the cache.
		c.cached = c.pending
		c.pending = lineDelta{}
		c.computed = true
		c.lastCheck = now
		return map[metric.ID]metric.Value{metric.CodeDelta: metric.Str(c.cached.format())}
	}
	return map[metric.ID]metric.Value{metric.CodeDelta: metric.Str(c.pending.format())}
}

// window returns the rolling window width: one hour during the first hour
// of process uptime, 24 hours thereafter.
func (c *GitCollector) window(now time.Time) time.Duration {
	if now.Sub(c.startTime) < bootstrapWindow {
		return bootstrapWindow
	}
	return steadyWindow
}

// scanRepo walks one repository's history from HEAD, summing first-parent
// diff stats for commits inside the window. The walk stops at the first
// commit older than the cutoff or after commitWalkCap commits.
func (c *GitCollector) scanRepo(ctx context.Context, path string, cutoff time.Time) lineDelta {
	var d lineDelta

	if !c.isSafe(path) {
		c.logger.Warn("access denied: unsafe repository path", zap.String("repo", path))
		return d
	}

	repo, err := git.PlainOpen(path)
	if err != nil {
		c.logger.Warn("repository unopenable", zap.String("repo", path), zap.Error(err))
		return d
	}
	head, err := repo.Head()
	if err != nil {
		c.logger.Debug("repository has no HEAD", zap.String("repo", path), zap.Error(err))
		return d
	}
	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		c.logger.Warn("history walk failed", zap.String("repo", path), zap.Error(err))
		return d
	}
	defer iter.Close()

	visited := 0
	err = iter.ForEach(func(commit *object.Commit) error {
		if ctx.Err() != nil {
			return storer.ErrStop
		}
		if visited >= commitWalkCap {
			c.logger.Debug("commit walk cap reached", zap.String("repo", path))
			return storer.ErrStop
		}
		visited++

		if commit.Committer.When.Before(cutoff) {
			return storer.ErrStop
		}
		if commit.NumParents() == 0 {
			return nil
		}
		parent, err := commit.Parent(0)
		if err != nil {
			return nil
		}
		patch, err := parent.Patch(commit)
		if err != nil {
			return nil
		}
		for _, fs := range patch.Stats() {
			d.added += int64(fs.Addition)
			d.deleted += int64(fs.Deletion)
		}
		return nil
	})
	if err != nil {
		c.logger.Debug("history walk ended early", zap.String("repo", path), zap.Error(err))
	}
	return d
}
