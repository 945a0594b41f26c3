/*
Package sd talks to systemd over the sd_notify(3) interface.

https://www.freedesktop.org/software/systemd/man/sd_notify.html

It supports:

   * Notifying the service manager about startup completion, reloading and stopping.
   * Free text status updates.
   * Watchdog keep-alive messages, including a task.StepFunc to send them periodically.

Package "sd" does not depend on systemd as such. Without a NOTIFY_SOCKET in the environment,
Notify() returns ErrNoSocket which callers can choose to ignore.
*/
package sd
