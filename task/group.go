package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// LoggerFunc receives log messages with a syslog level.
type LoggerFunc func(level int, message string)

const (
	lvlERROR = 3
	lvlINFO  = 6
)

// ErrGroupStopped is returned by Go() once the Group is stopped.
var ErrGroupStopped = errors.New("task: group stopped")

// Group is a set of Controllers sharing a cancellation context and a wake Event.
type Group struct {
	Logger LoggerFunc

	ctx    context.Context
	cancel context.CancelFunc
	ev     *Event

	mu    sync.Mutex
	tasks []*named
}

type named struct {
	name string
	ctrl Controller
}

// NewGroup returns a Group which is canceled when parent is done or StopAll() is called.
func NewGroup(parent context.Context) *Group {
	ctx, cancel := context.WithCancel(parent)
	return &Group{
		ctx:    ctx,
		cancel: cancel,
		ev:     NewEvent(),
	}
}

func (g *Group) log(level int, msg string) {
	if g.Logger != nil {
		g.Logger(level, msg)
	}
}

// Event returns the wake event shared by the tasks of g.
func (g *Group) Event() *Event {
	return g.ev
}

// Context returns the cancellation context shared by the tasks of g.
func (g *Group) Context() context.Context {
	return g.ctx
}

// Go starts a named task in the group.
// It returns ErrGroupStopped after StopAll() or once the parent context is done.
func (g *Group) Go(name string, initial, min time.Duration, step StepFunc) error {
	t := &named{name: name}
	g.mu.Lock()
	err := g.ctx.Err()
	if err != nil {
		err = ErrGroupStopped
	} else {
		err = t.ctrl.Start(g.ctx, initial, min, step, g.ev)
	}
	if err == nil {
		g.tasks = append(g.tasks, t)
	}
	g.mu.Unlock()
	if err != nil {
		g.log(lvlERROR, fmt.Sprintf("Task %s: %s", name, err))
		return err
	}
	g.log(lvlINFO, fmt.Sprintf("Task %s started", name))
	return nil
}

// StopAll cancels the group, wakes all tasks and waits for them to exit in reverse start order.
func (g *Group) StopAll() {
	g.cancel()
	g.ev.Broadcast()

	g.mu.Lock()
	tasks := g.tasks
	g.tasks = nil
	g.mu.Unlock()

	for i := range tasks {
		t := tasks[len(tasks)-i-1] // reverse order
		t.ctrl.Stop()
		g.log(lvlINFO, fmt.Sprintf("Task %s stopped", t.name))
	}
}
