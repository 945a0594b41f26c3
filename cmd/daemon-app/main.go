// daemon-app is the plain daemon host: callbacks that only log,
// a worker ticking every second and an optional test console.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alexcvc/boilerplate-daemonContext/cli"
	"github.com/alexcvc/boilerplate-daemonContext/console"
	"github.com/alexcvc/boilerplate-daemonContext/daemon"
	"github.com/alexcvc/boilerplate-daemonContext/log"
	"github.com/alexcvc/boilerplate-daemonContext/sd"
	"github.com/alexcvc/boilerplate-daemonContext/task"
	"github.com/alexcvc/boilerplate-daemonContext/version"
)

const name = "daemon-app"

var options = cli.Options{
	Name:       name,
	Foreground: cli.Test,
	Samples: []string{
		" -T",
		" -D -P /var/run/some.pid",
		" -T -S /app/config",
		" -D -x /app/config/settings.yaml -P /var/run/some.pid",
	},
}

func logged(msg string) daemon.Func {
	return func() daemon.Outcome {
		log.INFO(msg)
		return daemon.Succeeded
	}
}

func notify(status int, msg string) {
	if err := sd.NotifyStatus(status, msg); err != nil && !errors.Is(err, sd.ErrNoSocket) {
		log.WARN("sd notify failed", "err", err)
	}
}

func releasePidFile(d *daemon.Daemon, logger *log.Logger) {
	if err := d.ReleasePidFile(); err != nil {
		logger.WARN("removing pid file", "err", err)
	}
}

func main() {
	cfg, _ := options.MustParse()
	if err := cfg.Abs(); err != nil {
		log.Fatalf("%s", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("configuration mismatch: %s", err)
	}

	daemon.Configure(daemon.Logger(log.LogFunc))
	d := daemon.Instance()

	d.SetStartFunc(logged("Start all function called."))
	d.SetCloseFunc(logged("Close all function called."))
	d.SetReloadFunc(func() daemon.Outcome {
		notify(sd.StatusReloading, "Reloading")
		log.INFO("Reload function called.")
		notify(sd.StatusReady, "Running")
		return daemon.Succeeded
	})
	d.SetUser1Func(logged("User1 function called."))
	d.SetUser2Func(logged("User2 function called."))

	if cfg.IsDaemon {
		if err := d.MakeDaemon(cfg.PidFile); err != nil {
			log.Fatalf("Error starting the daemon: %s", err)
		}
	}

	if d.StartAll() == daemon.Failed {
		log.CRIT("Error starting the daemon.")
		releasePidFile(d, log.Default())
		os.Exit(1)
	}
	notify(sd.StatusReady, "Running")

	tasks := task.NewGroup(context.Background())
	tasks.Logger = log.LogFunc
	err := tasks.Go("application", time.Second, time.Millisecond, task.Fixed(time.Second, func() {
		log.INFO("application task ticks 1000 ms")
	}))
	if err != nil {
		log.Fatalf("application task: %s", err)
	}
	if step, interval, ok := sd.WatchdogStep(func(err error) { log.WARN("watchdog", "err", err) }); ok {
		if err := tasks.Go("watchdog", 0, interval, step); err != nil {
			log.Fatalf("watchdog task: %s", err)
		}
	}

	var con *console.Console
	if cfg.HasTestConsole {
		con = console.New()
		con.Logger = log.LogFunc
		con.RegisterCommand("R", console.Func("execute reload functions", func(context.Context, io.Writer) error {
			d.ReloadAll()
			return nil
		}))
		con.RegisterCommand("v", console.Func("version", func(_ context.Context, w io.Writer) error {
			fmt.Fprintln(w, " v."+version.Short())
			return nil
		}))
		con.Greet()
	}

	for d.IsRunning() {
		if con == nil {
			time.Sleep(time.Second)
			continue
		}
		quit, err := con.Next(context.Background(), time.Second)
		if quit {
			d.SetState(daemon.Stop)
		}
		if err != nil {
			log.NOTICE("console closed", "err", err)
			con = nil
		}
	}

	notify(sd.StatusStopping, "Stopping")
	log.INFO("The daemon process is stopping")
	tasks.StopAll()

	code := 0
	if d.CloseAll() == daemon.Failed {
		log.ERROR("Error closing the daemon.")
		code = 1
	}
	releasePidFile(d, log.Default())
	log.INFO("The daemon process ended")
	d.StopSignals()
	os.Exit(code)
}
