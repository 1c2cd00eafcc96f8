package service

import "sync"

// groupLocks serializes check-then-append sequences per group. Reading
// balances and appending the resulting fact must happen atomically, or
// two concurrent settlements could both validate against stale
// balances and jointly overpay. Locks are keyed by group ID, so
// operations on different groups never block each other.
type groupLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newGroupLocks() *groupLocks {
	return &groupLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for the group, creating it on first use, and
// returns the unlock function.
func (g *groupLocks) lock(groupID string) func() {
	g.mu.Lock()
	l, ok := g.locks[groupID]
	if !ok {
		l = &sync.Mutex{}
		g.locks[groupID] = l
	}
	g.mu.Unlock()

	l.Lock()
	return l.Unlock
}
