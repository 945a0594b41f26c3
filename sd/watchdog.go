package sd

import (
	"time"

	"github.com/alexcvc/boilerplate-daemonContext/task"
)

// WatchdogStep returns a task.StepFunc sending WATCHDOG=1 at half the interval
// systemd asked for. ok is false if the watchdog is not enabled for this process.
// Errors are passed to onErr if not nil.
func WatchdogStep(onErr func(error)) (step task.StepFunc, interval time.Duration, ok bool) {
	enabled, timeout := WatchdogEnabled()
	if !enabled {
		return nil, 0, false
	}
	interval = timeout / 2
	step = func(time.Duration) time.Duration {
		if err := NotifyStatus(StatusWatchdog, ""); err != nil && onErr != nil {
			onErr(err)
		}
		return interval
	}
	return step, interval, true
}
