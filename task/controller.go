package task

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrAlreadyStarted is returned by Start() if the Controller has a running worker.
var ErrAlreadyStarted = errors.New("task: already started")

// Controller runs a StepFunc on a dedicated go-routine until its context is done.
// The zero value is an idle Controller.
type Controller struct {
	mu      sync.Mutex
	done    chan struct{}
	release func() bool
}

// Start spawns the worker go-routine. The worker loop is:
//
//	remaining := initial
//	repeat:
//		remaining = step(remaining)
//		if remaining > 0, wait on ev for remaining, else remaining = min
//		if ctx is done, exit
//
// The cancellation of ctx broadcasts ev, so a sleeping worker wakes immediately.
// Calling Start again before Stop() returns ErrAlreadyStarted.
func (c *Controller) Start(ctx context.Context, initial, min time.Duration, step StepFunc, ev *Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done != nil {
		return ErrAlreadyStarted
	}

	done := make(chan struct{})
	c.done = done
	c.release = context.AfterFunc(ctx, ev.Broadcast)

	go func() {
		defer close(done)
		remaining := initial
		for {
			remaining = step(remaining)
			if remaining > 0 {
				ev.Wait(ctx, remaining)
			} else {
				remaining = min
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()
	return nil
}

// Stop waits for the worker to exit. The context given to Start() must be
// canceled first, or Stop blocks until it is.
// Stop of an idle Controller returns at once. A stopped Controller can be started again.
func (c *Controller) Stop() {
	c.mu.Lock()
	done, release := c.done, c.release
	c.mu.Unlock()

	if done == nil {
		return
	}
	<-done
	release()

	c.mu.Lock()
	if c.done == done {
		c.done = nil
		c.release = nil
	}
	c.mu.Unlock()
}

// Running tells whether a worker was started and not yet joined by Stop()
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done != nil
}
