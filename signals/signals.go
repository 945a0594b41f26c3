// Package signals dispatches OS signals to plain functions on a dedicated go-routine.
package signals

import (
	"os"
	"os/signal"
	"reflect"
	"sync"
)

// Action is a function called when an OS signal is recieved.
// It runs on the signal handler go-routine and should return quickly.
type Action func(sig os.Signal)

// Mappings map OS signals to functions
type Mappings map[os.Signal]Action

// Handler is a running signal handler started by RunSignalHandler.
type Handler struct {
	chans []chan os.Signal
	quit  chan struct{}
	done  chan struct{}
	once  sync.Once
}

// Allocate a 1-buffered channel for each signal and do a select
// over all channels - has to use reflect for dynamic numbers of select cases.
// The last case is the quit channel.
func (h *Handler) run(cases []reflect.SelectCase, actions []Action) {
	defer close(h.done)
	for {
		chosen, v, ok := reflect.Select(cases)
		if chosen == len(actions) || !ok {
			return
		}
		actions[chosen](v.Interface().(os.Signal))
	}
}

// Stop uninstalls the signal notifications and waits for the handler go-routine to exit.
// Signals will have their default behaviour afterwards.
func (h *Handler) Stop() {
	h.once.Do(func() {
		for _, ch := range h.chans {
			signal.Stop(ch)
		}
		close(h.quit)
	})
	<-h.done
}

// RunSignalHandler spawns a go-routine which will call the provided Actions
// when receiving the corresponding signals.
// Notification is installed before RunSignalHandler returns, so signals sent
// after that are never lost.
func RunSignalHandler(m Mappings) *Handler {
	h := &Handler{
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}

	cases := make([]reflect.SelectCase, 0, len(m)+1)
	actions := make([]Action, 0, len(m))

	for sig, action := range m {
		sigch := make(chan os.Signal, 1)
		cases = append(cases, reflect.SelectCase{
			Dir:  reflect.SelectRecv,
			Chan: reflect.ValueOf(sigch),
		})
		actions = append(actions, action)
		h.chans = append(h.chans, sigch)

		signal.Notify(sigch, sig)
	}
	cases = append(cases, reflect.SelectCase{
		Dir:  reflect.SelectRecv,
		Chan: reflect.ValueOf(h.quit),
	})

	go h.run(cases, actions)
	return h
}
