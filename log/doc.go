/*
Package log is a leveled key/value logger using the 8 syslog levels.

Events carry a level, a message and key/value data, and are handed to a Handler. The final
Handler of a chain is a formatter writing lines to an io.Writer:

	<3>failed to load settings file=/etc/app/settings.yaml

is the output of the minimal formatter, which systemd understands as a journal priority
prefix. The standard formatter adds date, time, pid and level like the standard library
logger does.

The package level functions log to a default Logger:

	log.SetLevel(syslog.LOG_DEBUG)
	log.INFO("started", "pid", os.Getpid())
	log.ERROR("reload failed", "err", err)

A Logger only generates events for levels at or below its level:

	l := log.NewLogger(syslog.LOG_WARN, log.NewMinFormatter(log.SyncWriter(os.Stdout)))
	l.INFO("ignored")
	l.ERROR("printed")

With() creates a child Logger logging the given key/value pairs with every event.
*/
package log
