package daemon

import "fmt"

// State is the lifecycle state of a Daemon.
type State int32

const (
	// Start is the initial state, before StartAll() is called.
	Start State = iota
	// Running is the normal operating state.
	Running
	// Reload is transient. It is set by SIGHUP or ReloadAll() and consumed by IsRunning().
	Reload
	// Stop ends the current run. IsRunning() returns false.
	Stop
	// User1 is transient. It is set by SIGUSR1 and consumed by IsRunning().
	User1
	// User2 is transient. It is set by SIGUSR2 and consumed by IsRunning().
	User2
)

var stateNames = [...]string{
	Start:   "start",
	Running: "running",
	Reload:  "reload",
	Stop:    "stop",
	User1:   "user1",
	User2:   "user2",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Transient reports whether s is drained by the next call to IsRunning().
func (s State) Transient() bool {
	return s == Reload || s == User1 || s == User2
}

// Outcome is the result of a lifecycle callback.
type Outcome int

const (
	// Unspecified means no callback was registered or it has no opinion.
	Unspecified Outcome = iota
	Succeeded
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unspecified"
}

// OutcomeOf converts a plain success flag to an Outcome.
func OutcomeOf(ok bool) Outcome {
	if ok {
		return Succeeded
	}
	return Failed
}

// Func is a lifecycle callback.
type Func func() Outcome

// Application is implemented by programs wanting all lifecycle callbacks
// registered at once with Bind().
type Application interface {
	Start() Outcome
	Reload() Outcome
	User1() Outcome
	User2() Outcome
	Close() Outcome
}
