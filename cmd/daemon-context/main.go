// daemon-context runs an application context under the daemon lifecycle:
// settings loaded from the config folder and reloaded on SIGHUP or when
// the settings file changes, a worker task, systemd notification and watchdog.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alexcvc/boilerplate-daemonContext/cli"
	"github.com/alexcvc/boilerplate-daemonContext/console"
	"github.com/alexcvc/boilerplate-daemonContext/daemon"
	"github.com/alexcvc/boilerplate-daemonContext/log"
	"github.com/alexcvc/boilerplate-daemonContext/sd"
	"github.com/alexcvc/boilerplate-daemonContext/task"
	"github.com/alexcvc/boilerplate-daemonContext/version"
)

const name = "daemon-context"

var options = cli.Options{
	Name:       name,
	Foreground: cli.Foreground,
	LogFile:    true,
	Samples: []string{
		" -F",
		" -D -P /var/run/some.pid",
		" -F -S /app/config",
		" -D -x /app/config/settings.yaml -P /var/run/some.pid -L /var/log/" + name + ".log",
	},
}

func notify(status int, msg string) {
	if err := sd.NotifyStatus(status, msg); err != nil && !errors.Is(err, sd.ErrNoSocket) {
		log.WARN("sd notify failed", "err", err)
	}
}

func exitOnError(err error, msg string) {
	if err != nil {
		log.Fatalf("%s: %s. Exit", msg, err)
	}
}

func releasePidFile(d *daemon.Daemon, logger *log.Logger) {
	if err := d.ReleasePidFile(); err != nil {
		logger.WARN("removing pid file", "err", err)
	}
}

func main() {
	dc, flags := options.MustParse()
	exitOnError(dc.Abs(), "bad path")

	logger := log.Default()
	routeStdlog(logger)

	app, err := newAppContext(dc, flags, logger)
	exitOnError(err, "configuration")
	exitOnError(app.Validate(), "configuration mismatch")
	// read settings once to fail early and to know the log file
	exitOnError(app.load(), "prepare the application for task start failed")
	logFile := app.settings().Log.File

	daemon.Configure(
		daemon.Logger(logger.LogFunc()),
		daemon.DetachWith(&daemon.Reborn{LogFileName: logFile}),
	)
	d := daemon.Instance()
	d.SetStartFunc(func() daemon.Outcome {
		logger.INFO("Start all function called.")
		return app.Start()
	})
	d.SetCloseFunc(func() daemon.Outcome {
		logger.INFO("Close all function called.")
		return app.Close()
	})
	d.SetReloadFunc(func() daemon.Outcome {
		logger.INFO("Reload function called.")
		notify(sd.StatusReloading, "Reloading")
		defer notify(sd.StatusReady, "Running")
		return app.Reload()
	})
	d.SetUser1Func(func() daemon.Outcome {
		logger.INFO("User1 function called.")
		return app.User1()
	})
	d.SetUser2Func(func() daemon.Outcome {
		logger.INFO("User2 function called.")
		return app.User2()
	})

	if dc.IsDaemon {
		exitOnError(d.MakeDaemon(dc.PidFile), "Error starting the daemon")
	} else if logFile != "" {
		f, err := log.OpenFile(logFile)
		exitOnError(err, "log file")
		log.SetOutput(f, log.LstdFlags|log.Llevel|log.Lpid)
	}

	if d.StartAll() == daemon.Failed {
		logger.CRIT("Error starting the daemon.")
		releasePidFile(d, logger)
		os.Exit(1)
	}
	if dc.IsDaemon {
		if err := sd.Notify(sd.NotifyMainPid, "READY=1", "STATUS=Running"); err != nil && !errors.Is(err, sd.ErrNoSocket) {
			logger.WARN("sd notify failed", "err", err)
		}
	} else {
		notify(sd.StatusReady, "Running")
	}

	tasks := task.NewGroup(context.Background())
	tasks.Logger = logger.LogFunc()
	exitOnError(tasks.Go("application", time.Second, time.Millisecond, app.Process), "application task")
	if step, interval, ok := sd.WatchdogStep(func(err error) { logger.WARN("watchdog", "err", err) }); ok {
		exitOnError(tasks.Go("watchdog", 0, interval, step), "watchdog task")
	}

	// settings file changes are handled like SIGHUP
	go func() {
		err := app.cfg.Watch(tasks.Context(), func(ev fsnotify.Event) {
			logger.NOTICE("Settings file changed", "file", ev.Name)
			d.ReloadAll()
		})
		if err != nil {
			logger.WARN("Not watching settings", "err", err)
		}
	}()

	var con *console.Console
	if dc.HasTestConsole {
		con = newConsole(d, app)
		con.Logger = logger.LogFunc()
		con.Greet()
	}

	for d.IsRunning() {
		if con == nil {
			time.Sleep(time.Second)
			continue
		}
		quit, err := con.Next(tasks.Context(), time.Second)
		if quit {
			d.SetState(daemon.Stop)
		}
		if err != nil {
			logger.NOTICE("console closed", "err", err)
			con = nil
		}
	}

	notify(sd.StatusStopping, "Stopping")
	logger.INFO("The daemon process is stopping")
	logger.INFO("Waiting for the application task to complete")
	tasks.StopAll()

	code := 0
	if d.CloseAll() == daemon.Failed {
		logger.ERROR("Error closing the daemon.")
		code = 1
	}
	releasePidFile(d, logger)
	d.StopSignals()
	logger.INFO("The daemon process ended")
	os.Exit(code)
}

func newConsole(d *daemon.Daemon, app *appContext) *console.Console {
	con := console.New()
	con.RegisterCommand("R", console.Func("execute reload functions", func(context.Context, io.Writer) error {
		d.ReloadAll()
		return nil
	}))
	con.RegisterCommand("v", console.Func("version", func(_ context.Context, w io.Writer) error {
		fmt.Fprintln(w, " v."+version.Short())
		return nil
	}))
	con.RegisterCommand("s", console.Func("show settings", func(_ context.Context, w io.Writer) error {
		return app.WriteSettings(w)
	}))
	con.RegisterCommand("1", console.Func("log status (like SIGUSR1)", func(context.Context, io.Writer) error {
		d.SetState(daemon.User1)
		return nil
	}))
	con.RegisterCommand("2", console.Func("toggle debug logging (like SIGUSR2)", func(context.Context, io.Writer) error {
		d.SetState(daemon.User2)
		return nil
	}))
	return con
}
