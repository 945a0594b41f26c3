package task

import "time"

// StepFunc does one unit of work. It gets the duration suggested by the previous
// call (the initial duration on the first call) and returns how long to sleep before
// the next call. A zero or negative result means "run again after the minimum interval".
// It must not block beyond the work itself.
type StepFunc func(suggested time.Duration) time.Duration

// Fixed runs work at a constant interval.
func Fixed(interval time.Duration, work func()) StepFunc {
	return func(time.Duration) time.Duration {
		work()
		return interval
	}
}

// Accelerate runs work and grows the interval by step on each call.
// When the suggested interval exceeds limit, the next interval is reset instead.
// A reset of 0 makes the Controller use its minimum interval once.
func Accelerate(step, limit, reset time.Duration, work func(next time.Duration)) StepFunc {
	return func(suggested time.Duration) time.Duration {
		next := suggested + step
		if suggested >= limit {
			next = reset
		}
		work(next)
		return next
	}
}
