package session

import (
	"context"
	"sync"
)

// Locks serializes work per session id. A turn holds its session's lock from
// lookup to response so two requests cannot race on turn advancement.
type Locks struct {
	mu    sync.Mutex
	holds map[string]*hold
}

type hold struct {
	sem  chan struct{}
	refs int
}

// NewLocks creates an empty lock table.
func NewLocks() *Locks {
	return &Locks{
		holds: make(map[string]*hold),
	}
}

func (l *Locks) acquireRef(id string) *hold {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, ok := l.holds[id]
	if !ok {
		h = &hold{sem: make(chan struct{}, 1)}
		l.holds[id] = h
	}
	h.refs++
	return h
}

func (l *Locks) releaseRef(id string, h *hold) {
	l.mu.Lock()
	defer l.mu.Unlock()
	h.refs--
	if h.refs == 0 {
		delete(l.holds, id)
	}
}

// Lock blocks until the lock for id is held or ctx is done. The returned
// release function must be called exactly once.
func (l *Locks) Lock(ctx context.Context, id string) (func(), error) {
	h := l.acquireRef(id)
	select {
	case h.sem <- struct{}{}:
	case <-ctx.Done():
		l.releaseRef(id, h)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-h.sem
			l.releaseRef(id, h)
		})
	}, nil
}

// TryLock acquires the lock for id only if it is free.
func (l *Locks) TryLock(id string) (bool, func()) {
	h := l.acquireRef(id)
	select {
	case h.sem <- struct{}{}:
	default:
		l.releaseRef(id, h)
		return false, nil
	}

	var once sync.Once
	return true, func() {
		once.Do(func() {
			<-h.sem
			l.releaseRef(id, h)
		})
	}
}

// IsHeld reports whether any caller holds or waits on the lock for id.
func (l *Locks) IsHeld(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.holds[id]
	return ok
}

// Len returns the number of ids with a holder or waiter.
func (l *Locks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.holds)
}
