package log

import (
	"time"

	"github.com/alexcvc/boilerplate-daemonContext/log/syslog"
)

// Event is a log event passed down a Handler chain.
// Handlers must not modify it.
type Event struct {
	Lvl  syslog.Priority // Level this event was logged at.
	Msg  string
	Data []interface{} // key/value pairs, including those of the Logger context
	Time time.Time
}
