/*
Package daemon implements the lifecycle controller of a classic UNIX daemon.

A Daemon converts the process signals SIGINT, SIGTERM, SIGHUP, SIGUSR1 and SIGUSR2 into a
small state machine:

	SIGINT, SIGTERM -> Stop
	SIGHUP          -> Reload
	SIGUSR1         -> User1
	SIGUSR2         -> User2

The signal side only stores the new state. Callbacks registered with SetStartFunc,
SetReloadFunc, SetUser1Func, SetUser2Func and SetCloseFunc (or all at once with Bind) run
on the goroutine polling IsRunning(), never in signal context.

A host program typically looks like:

	d := daemon.Instance()
	d.Bind(app)
	if cfg.IsDaemon {
		if err := d.MakeDaemon(cfg.PidFile); err != nil {
			os.Exit(1)
		}
	}
	if d.StartAll() == daemon.Failed {
		os.Exit(1)
	}
	for d.IsRunning() {
		time.Sleep(time.Second)
	}
	if d.CloseAll() == daemon.Failed {
		os.Exit(1)
	}

IsRunning() is the only place transient states (Reload, User1, User2) are consumed, one
per call. It must be called at bounded intervals and only from one goroutine.

MakeDaemon() detaches from the controlling terminal by re-executing the program in a new
session (see github.com/sevlyar/go-daemon) and writes a locked PID file. It can only be
performed once per process.
*/
package daemon
