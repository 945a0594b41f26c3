/*
Package task runs cooperatively cancellable periodic workers.

A Controller calls a StepFunc repeatedly on its own go-routine. The step function does one
unit of work and returns how long to sleep before the next call. The sleep is a wait on a
shared Event, which the cancellation of the Controller's context broadcasts, so a Controller
sleeping for minutes still stops promptly:

	ev := task.NewEvent()
	ctx, cancel := context.WithCancel(context.Background())

	var c task.Controller
	c.Start(ctx, time.Second, 10*time.Millisecond, task.Fixed(time.Minute, work), ev)
	...
	cancel()
	c.Stop() // returns as soon as the current step is done
*/
package task
