package log

import (
	"github.com/alexcvc/boilerplate-daemonContext/log/syslog"
)

// Handler is the interface needed to be a part of the Handler chain.
//
// Events are sent from a Logger down a chain of Handlers. The final Handler
// (which doesn't call other handlers) is called a formatter. It turns the
// event into a log line and writes it somewhere.
type Handler interface {
	Log(e Event) error
}

type handlerFunc func(e Event) error

// HandlerFunc generates a Handler from a function, by calling it when Log is called.
func HandlerFunc(fn func(e Event) error) Handler {
	return handlerFunc(fn)
}

func (h handlerFunc) Log(e Event) error {
	return h(e)
}

// FilterHandler lets a function decide whether to pass the Event on to h.
func FilterHandler(fn func(e Event) bool, h Handler) Handler {
	return HandlerFunc(func(e Event) error {
		if fn(e) {
			return h.Log(e)
		}
		return nil
	})
}

// LvlFilterHandler discards events with a level above maxLvl
func LvlFilterHandler(maxLvl syslog.Priority, h Handler) Handler {
	return FilterHandler(func(e Event) bool {
		return e.Lvl <= maxLvl
	}, h)
}

// MultiHandler distributes the event to several Handlers.
// If any fail, the last error is returned.
func MultiHandler(hs ...Handler) Handler {
	return HandlerFunc(func(e Event) error {
		var maybeErr error
		for _, h := range hs {
			if err := h.Log(e); err != nil {
				maybeErr = err
			}
		}
		return maybeErr
	})
}

// DiscardHandler drops all events.
func DiscardHandler() Handler {
	return HandlerFunc(func(Event) error { return nil })
}
