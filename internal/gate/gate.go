// Package gate bounds how many assets may be processed concurrently. The
// bound is adjustable at runtime without cancelling work already admitted.
package gate

import (
	"context"
	"fmt"
	"sync"
)

// Limits on the concurrency bound.
const (
	MinLimit = 1
	MaxLimit = 10
)

// Gate is a counting admission gate with a resizable bound.
type Gate struct {
	mu      sync.Mutex
	cond    *sync.Cond
	limit   int
	running int
}

// Snapshot reports the gate state at one instant.
type Snapshot struct {
	Limit   int `json:"limit"`
	Running int `json:"running"`
}

// New returns a gate with the given bound. Out-of-range bounds are clamped.
func New(limit int) *Gate {
	if limit < MinLimit {
		limit = MinLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	g := &Gate{limit: limit}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Acquire blocks until a slot is free or ctx is done. On success the caller
// must Release exactly once.
func (g *Gate) Acquire(ctx context.Context) error {
	// Waiters park on the cond, so a context cancellation has to wake them.
	stop := context.AfterFunc(ctx, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		g.cond.Broadcast()
	})
	defer stop()

	g.mu.Lock()
	defer g.mu.Unlock()
	for g.running >= g.limit {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.cond.Wait()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	g.running++
	return nil
}

// Release frees a slot taken by a successful Acquire.
func (g *Gate) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running == 0 {
		panic("gate: release without acquire")
	}
	g.running--
	g.cond.Signal()
}

// SetLimit changes the bound. Lowering it never interrupts admitted work;
// the gate simply stops admitting until occupancy falls below the new bound.
func (g *Gate) SetLimit(limit int) error {
	if limit < MinLimit || limit > MaxLimit {
		return fmt.Errorf("concurrency limit must be between %d and %d, got %d", MinLimit, MaxLimit, limit)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.limit = limit
	// Raising the bound may unblock several waiters at once.
	g.cond.Broadcast()
	return nil
}

// Limit returns the current bound.
func (g *Gate) Limit() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.limit
}

// Snapshot returns the current bound and occupancy.
func (g *Gate) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Snapshot{Limit: g.limit, Running: g.running}
}
