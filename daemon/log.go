package daemon

// implements a simple log interface for syslog leveled logging.

// Syslog priority levels
const (
	LvlEMERG int = iota // Not to be used by applications.
	LvlALERT
	LvlCRIT
	LvlERROR
	LvlWARN
	LvlNOTICE
	LvlINFO
	LvlDEBUG
)

// A LoggerFunc can be set to make the daemon internal events log to a custom log library
type LoggerFunc func(level int, message string)

// log is used to log internal events if a LoggerFunc was given with the Logger option.
func (d *Daemon) log(level int, msg string) {
	if d.logger != nil {
		d.logger(level, msg)
	}
}
