package verifier

import (
	"math/rand"
	"sync/atomic"
)

// Rotator hands out proxy IDs from a fixed pool. Exactly one Rotator
// exists per configuration load and is shared by reference across every
// concurrent verification; rebuilding it per request collapses
// round-robin to the first element.
type Rotator struct {
	ids      []string
	strategy PoolStrategy
	counter  atomic.Uint64
}

// NewRotator fixes the pool order for the lifetime of the rotator. The
// caller decides the order; it never changes afterwards.
func NewRotator(ids []string, strategy PoolStrategy) *Rotator {
	fixed := make([]string, len(ids))
	copy(fixed, ids)
	return &Rotator{ids: fixed, strategy: strategy}
}

// Next returns the proxy ID to use for one request, or false when the
// pool is empty. Safe for arbitrary concurrent callers: round-robin
// tickets come from a single atomic counter, so under N proxies every N
// consecutive calls process-wide visit each proxy exactly once.
func (r *Rotator) Next() (string, bool) {
	if r == nil || len(r.ids) == 0 {
		return "", false
	}
	switch r.strategy {
	case Random:
		return r.ids[rand.Intn(len(r.ids))], true
	default:
		ticket := r.counter.Add(1) - 1
		return r.ids[ticket%uint64(len(r.ids))], true
	}
}

// Size reports the number of proxies in rotation.
func (r *Rotator) Size() int {
	if r == nil {
		return 0
	}
	return len(r.ids)
}
