package orchestrator

import (
	"sync"

	"github.com/glasspane/telemetry/internal/metric"
)

// Shared holds the current published snapshot behind a read lock. The
// orchestrator is the only writer; consumers (the renderer) clone on read
// and must not hold references into a stored snapshot across cycles.
type Shared struct {
	mu   sync.RWMutex
	snap metric.Snapshot
}

// NewShared creates an empty shared snapshot holder.
func NewShared() *Shared {
	return &Shared{snap: metric.NewSnapshot()}
}

// Load returns a deep copy of the current snapshot.
func (s *Shared) Load() metric.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone()
}

// store replaces the current snapshot. Replace, never merge: a reader sees
// either the previous complete snapshot or the new complete one.
func (s *Shared) store(snap metric.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}
