package task

import (
	"context"
	"sync"
	"time"
)

// Event is a broadcast wake event shared by one or more waiters.
// The zero value is ready to use.
type Event struct {
	mu sync.Mutex
	ch chan struct{}
}

// NewEvent returns a new Event
func NewEvent() *Event {
	return &Event{}
}

// current channel. Must hold mu.
func (e *Event) gen() chan struct{} {
	if e.ch == nil {
		e.ch = make(chan struct{})
	}
	return e.ch
}

// Broadcast wakes everybody currently waiting on e.
func (e *Event) Broadcast() {
	e.mu.Lock()
	ch := e.gen()
	e.ch = nil
	e.mu.Unlock()
	close(ch)
}

// Wait blocks until Broadcast() is called, ctx is done or d has passed.
// It returns true if woken before the timeout. Like any condition wait, waking up
// says nothing about why. The caller must check its own state again.
func (e *Event) Wait(ctx context.Context, d time.Duration) bool {
	e.mu.Lock()
	ch := e.gen()
	e.mu.Unlock()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ch:
		return true
	case <-ctx.Done():
		return true
	case <-timer.C:
		return false
	}
}
