// task-abstracting shows a task.Controller running a step function with an
// accelerating interval, stopped from the console or by SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alexcvc/boilerplate-daemonContext/cli"
	"github.com/alexcvc/boilerplate-daemonContext/console"
	"github.com/alexcvc/boilerplate-daemonContext/daemon"
	"github.com/alexcvc/boilerplate-daemonContext/log"
	"github.com/alexcvc/boilerplate-daemonContext/task"
)

var options = cli.Options{
	Name:       "task-abstracting",
	Foreground: cli.Test,
	Samples:    []string{" -T", " -D -P /var/run/some.pid"},
}

// process grows the interval by a second up to 4 s, then asks for the
// minimum interval once.
var process = task.Accelerate(time.Second, 4*time.Second, 0, func(next time.Duration) {
	log.INFO(fmt.Sprintf("Process for %d ms", next.Milliseconds()))
})

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

	d := daemon.New(daemon.Logger(log.LogFunc))
	if cfg.IsDaemon {
		if err := d.MakeDaemon(cfg.PidFile); err != nil {
			log.Fatalf("Error starting the daemon: %s", err)
		}
	} else {
		// no option given means the console
		cfg.HasTestConsole = true
	}
	d.StartAll()

	ctx, cancel := context.WithCancel(context.Background())
	ev := task.NewEvent()
	var ctrl task.Controller
	if err := ctrl.Start(ctx, time.Second, time.Millisecond, process, ev); err != nil {
		log.Fatalf("%s", err)
	}

	var con *console.Console
	if cfg.HasTestConsole {
		con = console.New()
		con.Logger = log.LogFunc
		con.RegisterCommand("t", console.Func("task state", func(_ context.Context, w io.Writer) error {
			fmt.Fprintln(w, "task running:", ctrl.Running())
			return nil
		}))
		con.Greet()
	}

	for d.IsRunning() {
		if con == nil {
			time.Sleep(time.Second)
			continue
		}
		quit, err := con.Next(ctx, time.Second)
		if quit {
			d.SetState(daemon.Stop)
		}
		if err != nil {
			con = nil
		}
	}

	log.INFO("The daemon process is stopping")
	cancel()
	ev.Broadcast()
	ctrl.Stop()

	d.CloseAll()
	releasePidFile(d, log.Default())
	d.StopSignals()
	log.INFO("The daemon process ended successfully")
	os.Exit(0)
}
