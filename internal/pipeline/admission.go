package pipeline

import "sync"

// gate limits concurrent generations to a fixed ceiling. It sheds load:
// callers over the limit are rejected immediately, never queued, so rejected
// requests carry no ordering or fairness guarantee.
type gate struct {
	slots chan struct{}
}

func newGate(max int) *gate {
	if max <= 0 {
		max = defaultMaxConcurrent
	}
	return &gate{slots: make(chan struct{}, max)}
}

// tryAcquire reserves an in-flight slot without blocking. On success it
// returns a release func to be deferred; release is safe to call more than
// once but gives the slot back exactly once.
func (g *gate) tryAcquire() (release func(), ok bool) {
	select {
	case g.slots <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-g.slots }) }, true
	default:
		return nil, false
	}
}

// inflight returns the number of admitted requests currently in flight.
func (g *gate) inflight() int { return len(g.slots) }
