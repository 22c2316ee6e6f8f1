// internal/browser/gate.go
package browser

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ConcurrencyGate bounds the number of scrapes driving the browser at once.
type ConcurrencyGate struct {
	sem      *semaphore.Weighted
	capacity int
	inUse    atomic.Int64
}

// NewConcurrencyGate creates a gate with the given capacity (minimum 1).
func NewConcurrencyGate(capacity int) *ConcurrencyGate {
	if capacity < 1 {
		capacity = 1
	}
	return &ConcurrencyGate{
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: capacity,
	}
}

// Acquire blocks until a permit is free or ctx ends.
func (g *ConcurrencyGate) Acquire(ctx context.Context) (*Permit, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	g.inUse.Add(1)
	return &Permit{gate: g}, nil
}

// TryAcquire returns a permit only if one is immediately free.
func (g *ConcurrencyGate) TryAcquire() (*Permit, bool) {
	if !g.sem.TryAcquire(1) {
		return nil, false
	}
	g.inUse.Add(1)
	return &Permit{gate: g}, true
}

// Capacity returns the maximum number of concurrent permits.
func (g *ConcurrencyGate) Capacity() int {
	return g.capacity
}

// InUse returns the number of permits currently held.
func (g *ConcurrencyGate) InUse() int {
	return int(g.inUse.Load())
}

// Permit is one slot of a ConcurrencyGate.
type Permit struct {
	gate *ConcurrencyGate
	once sync.Once
}

// Release returns the slot. Calls after the first are no-ops.
func (p *Permit) Release() {
	if p == nil || p.gate == nil {
		return
	}
	p.once.Do(func() {
		p.gate.inUse.Add(-1)
		p.gate.sem.Release(1)
	})
}
