package daemon

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"syscall"

	godaemon "github.com/sevlyar/go-daemon"
	"golang.org/x/sys/unix"

	"github.com/alexcvc/boilerplate-daemonContext/signals"
)

// Daemon is the signal driven lifecycle state machine.
// The zero value is not usable, use New() or Instance().
type Daemon struct {
	state  atomic.Int32
	signal atomic.Int32 // last signal number stored by the signal handler

	onStart  Func
	onReload Func
	onUser1  Func
	onUser2  Func
	onClose  Func

	logger   LoggerFunc
	detacher Detacher
	handler  *signals.Handler

	detached atomic.Bool
	pidFile  *godaemon.LockFile
}

type config struct {
	logger   LoggerFunc
	detacher Detacher
	nosig    bool
}

// Option change the behaviour of a Daemon created with New()
type Option func(*config)

// Logger makes the Daemon log internal events to f.
func Logger(f LoggerFunc) Option {
	return Option(func(c *config) {
		c.logger = f
	})
}

// DetachWith replaces the primitive MakeDaemon() uses to go to background.
func DetachWith(d Detacher) Option {
	return Option(func(c *config) {
		c.detacher = d
	})
}

// IgnoreSignals makes New() not install any signal handlers.
// State can then only be changed with SetState(), ReloadAll() and CloseAll().
func IgnoreSignals() Option {
	return Option(func(c *config) {
		c.nosig = true
	})
}

var (
	instance     *Daemon
	instanceOnce sync.Once
	instanceOpts []Option
)

// Configure sets the options used by the first call to Instance().
// It has no effect once Instance() has been called.
func Configure(opts ...Option) {
	instanceOpts = opts
}

// Instance returns the process wide Daemon, creating it and installing
// its signal handlers on first use.
func Instance() *Daemon {
	instanceOnce.Do(func() {
		instance = New(instanceOpts...)
	})
	return instance
}

// New creates a Daemon in state Start.
// Unless IgnoreSignals() is given, the handlers for SIGINT, SIGTERM, SIGHUP, SIGUSR1
// and SIGUSR2 are installed before New returns.
func New(opts ...Option) *Daemon {
	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}

	d := &Daemon{
		logger:   cfg.logger,
		detacher: cfg.detacher,
	}
	if d.detacher == nil {
		d.detacher = &Reborn{}
	}
	if !cfg.nosig {
		d.handler = signals.RunSignalHandler(signals.Mappings{
			syscall.SIGINT:  d.signalAction(Stop),
			syscall.SIGTERM: d.signalAction(Stop),
			syscall.SIGHUP:  d.signalAction(Reload),
			syscall.SIGUSR1: d.signalAction(User1),
			syscall.SIGUSR2: d.signalAction(User2),
		})
	}
	return d
}

// signalAction only stores. No logging or callbacks happen on the signal side.
func (d *Daemon) signalAction(s State) signals.Action {
	return func(sig os.Signal) {
		if n, ok := sig.(syscall.Signal); ok {
			d.signal.Store(int32(n))
		}
		d.state.Store(int32(s))
	}
}

// StopSignals uninstalls the signal handlers of d.
func (d *Daemon) StopSignals() {
	if d.handler != nil {
		d.handler.Stop()
	}
}

// State returns the current lifecycle state.
func (d *Daemon) State() State {
	return State(d.state.Load())
}

// SetState forces the lifecycle state. A test console can use this to
// request Stop or Reload without sending a signal.
func (d *Daemon) SetState(s State) {
	d.state.Store(int32(s))
}

// SetStartFunc registers the callback run by StartAll().
func (d *Daemon) SetStartFunc(f Func) { d.onStart = f }

// SetReloadFunc registers the callback run when a Reload is consumed.
func (d *Daemon) SetReloadFunc(f Func) { d.onReload = f }

// SetUser1Func registers the callback run when User1 is consumed.
func (d *Daemon) SetUser1Func(f Func) { d.onUser1 = f }

// SetUser2Func registers the callback run when User2 is consumed.
func (d *Daemon) SetUser2Func(f Func) { d.onUser2 = f }

// SetCloseFunc registers the callback run by CloseAll().
func (d *Daemon) SetCloseFunc(f Func) { d.onClose = f }

// Bind registers all callbacks of app.
// Like the Set*Func methods it must be called before StartAll().
func (d *Daemon) Bind(app Application) {
	d.onStart = app.Start
	d.onReload = app.Reload
	d.onUser1 = app.User1
	d.onUser2 = app.User2
	d.onClose = app.Close
}

func call(f Func) Outcome {
	if f == nil {
		return Unspecified
	}
	return f()
}

// StartAll enters Running and calls the start callback.
// The state is Running even if the callback fails. The caller decides whether to abort.
func (d *Daemon) StartAll() Outcome {
	d.SetState(Running)
	o := call(d.onStart)
	d.log(LvlDEBUG, fmt.Sprintf("Start: %s", o))
	return o
}

// ReloadAll requests a Reload to be handled by the next IsRunning().
func (d *Daemon) ReloadAll() Outcome {
	d.SetState(Reload)
	return Unspecified
}

// CloseAll enters Stop and calls the close callback.
func (d *Daemon) CloseAll() Outcome {
	d.SetState(Stop)
	o := call(d.onClose)
	d.log(LvlDEBUG, fmt.Sprintf("Close: %s", o))
	return o
}

// IsRunning consumes one pending transient state and reports whether the
// daemon is still Running.
// A pending Reload, User1 or User2 is reset to Running before the matching
// callback is called. If the callback returns Failed, the state becomes Stop.
// At most one callback runs per call. A transient state arriving while it
// runs stays pending for the next call and keeps IsRunning true.
// IsRunning must not be called concurrently.
func (d *Daemon) IsRunning() bool {
	s := d.State()
	for s.Transient() {
		// A signal may replace s right now. Then retry with the new value.
		if d.state.CompareAndSwap(int32(s), int32(Running)) {
			break
		}
		s = d.State()
	}
	if !s.Transient() {
		return s == Running
	}
	d.logTransient(s)

	var f Func
	switch s {
	case Reload:
		f = d.onReload
	case User1:
		f = d.onUser1
	case User2:
		f = d.onUser2
	}
	if o := call(f); o == Failed {
		d.log(LvlERROR, fmt.Sprintf("%s failed, stopping", s))
		d.SetState(Stop)
	}

	s = d.State()
	return s == Running || s.Transient()
}

func (d *Daemon) logTransient(s State) {
	if d.logger == nil {
		return
	}
	if n := d.signal.Swap(0); n != 0 {
		d.log(LvlNOTICE, fmt.Sprintf("%s: %s requested", unix.SignalName(syscall.Signal(n)), s))
		return
	}
	d.log(LvlNOTICE, fmt.Sprintf("%s requested", s))
}
