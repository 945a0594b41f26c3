package log

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexcvc/boilerplate-daemonContext/log/syslog"
)

// LvlDEFAULT is the level at which Print*() functions log.
const LvlDEFAULT syslog.Priority = syslog.LOG_INFO

// Logger generates leveled events with key/value data and passes them to a Handler.
//
// A Logger and the children created by With() share level and Handler,
// both of which can be changed atomically while in use.
type Logger struct {
	level *atomic.Int32
	h     *atomic.Pointer[Handler]
	data  []interface{} // K/V attributes common to all events
}

// NewLogger creates a Logger with a level and a Handler.
func NewLogger(level syslog.Priority, handler Handler) *Logger {
	l := &Logger{
		level: new(atomic.Int32),
		h:     new(atomic.Pointer[Handler]),
	}
	l.level.Store(int32(level))
	l.SetHandler(handler)
	return l
}

// SetHandler atomically swaps the Handler of l and all its context children.
func (l *Logger) SetHandler(h Handler) {
	if h == nil {
		h = DiscardHandler()
	}
	l.h.Store(&h)
}

// Handler returns the current Handler
func (l *Logger) Handler() Handler {
	return *l.h.Load()
}

// Level returns the current log level
func (l *Logger) Level() syslog.Priority {
	return syslog.Priority(l.level.Load())
}

// SetLevel sets the level. It returns false if level is out of range.
func (l *Logger) SetLevel(level syslog.Priority) bool {
	if level < syslog.LOG_EMERG || level > syslog.LOG_DEBUG {
		return false
	}
	l.level.Store(int32(level))
	return true
}

// IncLevel makes the Logger more verbose. Returns false if already at LOG_DEBUG.
func (l *Logger) IncLevel() bool {
	for {
		cur := l.level.Load()
		if syslog.Priority(cur) >= syslog.LOG_DEBUG {
			return false
		}
		if l.level.CompareAndSwap(cur, cur+1) {
			return true
		}
	}
}

// DecLevel makes the Logger less verbose. Returns false if already at LOG_EMERG.
func (l *Logger) DecLevel() bool {
	for {
		cur := l.level.Load()
		if syslog.Priority(cur) <= syslog.LOG_EMERG {
			return false
		}
		if l.level.CompareAndSwap(cur, cur-1) {
			return true
		}
	}
}

// Does tells whether an event at level would be generated.
func (l *Logger) Does(level syslog.Priority) bool {
	return level <= l.Level()
}

// With returns a child Logger which adds the key/value pairs to all events.
func (l *Logger) With(kv ...interface{}) *Logger {
	kv = normalize(kv)
	data := make([]interface{}, 0, len(l.data)+len(kv))
	data = append(data, l.data...)
	data = append(data, kv...)
	return &Logger{
		level: l.level,
		h:     l.h,
		data:  data,
	}
}

// Unconditionaly logs an event
func (l *Logger) log(level syslog.Priority, msg string, kv []interface{}) error {
	e := Event{
		Lvl:  level,
		Msg:  msg,
		Time: time.Now(),
		Data: l.data,
	}
	if kv = normalize(kv); kv != nil {
		e.Data = append(append(make([]interface{}, 0, len(l.data)+len(kv)), l.data...), kv...)
	}
	return l.Handler().Log(e)
}

// Log logs msg at level if the Logger level allows it.
func (l *Logger) Log(level syslog.Priority, msg string, kv ...interface{}) error {
	if !l.Does(level) {
		return nil
	}
	return l.log(level, msg, kv)
}

// ALERT logs at syslog.LOG_ALERT
func (l *Logger) ALERT(msg string, kv ...interface{}) { l.Log(syslog.LOG_ALERT, msg, kv...) }

// CRIT logs at syslog.LOG_CRIT
func (l *Logger) CRIT(msg string, kv ...interface{}) { l.Log(syslog.LOG_CRIT, msg, kv...) }

// ERROR logs at syslog.LOG_ERROR
func (l *Logger) ERROR(msg string, kv ...interface{}) { l.Log(syslog.LOG_ERROR, msg, kv...) }

// WARN logs at syslog.LOG_WARN
func (l *Logger) WARN(msg string, kv ...interface{}) { l.Log(syslog.LOG_WARN, msg, kv...) }

// NOTICE logs at syslog.LOG_NOTICE
func (l *Logger) NOTICE(msg string, kv ...interface{}) { l.Log(syslog.LOG_NOTICE, msg, kv...) }

// INFO logs at syslog.LOG_INFO
func (l *Logger) INFO(msg string, kv ...interface{}) { l.Log(syslog.LOG_INFO, msg, kv...) }

// DEBUG logs at syslog.LOG_DEBUG
func (l *Logger) DEBUG(msg string, kv ...interface{}) { l.Log(syslog.LOG_DEBUG, msg, kv...) }

// Printf logs at LvlDEFAULT like the standard library.
func (l *Logger) Printf(format string, v ...interface{}) {
	if l.Does(LvlDEFAULT) {
		l.log(LvlDEFAULT, fmt.Sprintf(format, v...), nil)
	}
}

// Println logs at LvlDEFAULT like the standard library.
func (l *Logger) Println(v ...interface{}) {
	if l.Does(LvlDEFAULT) {
		s := fmt.Sprintln(v...)
		l.log(LvlDEFAULT, s[:len(s)-1], nil)
	}
}

// LogFunc adapts l to a plain "func(level int, message string)" as used by
// the daemon and task packages.
func (l *Logger) LogFunc() func(level int, message string) {
	return func(level int, message string) {
		l.Log(syslog.Priority(level), message)
	}
}
