package log

import (
	"fmt"
	"io"
	"os"

	"github.com/alexcvc/boilerplate-daemonContext/log/syslog"
)

// All the toplevel package functionality

// The default log context
var defaultLogger = NewLogger(LvlDEFAULT, NewStdFormatter(SyncWriter(os.Stderr), "", LstdFlags|Llevel))

// Default returns the default Logger
func Default() *Logger {
	return defaultLogger
}

// Minimal sets the default logger to the minimal mode, where it doesn't log timestamps
// But only emits systemd/syslog-compatible "<level>message" lines to stdout.
func Minimal() {
	defaultLogger.SetHandler(NewMinFormatter(SyncWriter(os.Stdout)))
}

// SetOutput makes the default Logger write standard formatted lines to w with flags.
func SetOutput(w io.Writer, flags int) {
	defaultLogger.SetHandler(NewStdFormatter(SyncWriter(w), "", flags))
}

// With creates a child K/V logger of the default logger
func With(kv ...interface{}) *Logger {
	return defaultLogger.With(kv...)
}

func ALERT(msg string, kv ...interface{})  { defaultLogger.Log(syslog.LOG_ALERT, msg, kv...) }
func CRIT(msg string, kv ...interface{})   { defaultLogger.Log(syslog.LOG_CRIT, msg, kv...) }
func ERROR(msg string, kv ...interface{})  { defaultLogger.Log(syslog.LOG_ERROR, msg, kv...) }
func WARN(msg string, kv ...interface{})   { defaultLogger.Log(syslog.LOG_WARN, msg, kv...) }
func NOTICE(msg string, kv ...interface{}) { defaultLogger.Log(syslog.LOG_NOTICE, msg, kv...) }
func INFO(msg string, kv ...interface{})   { defaultLogger.Log(syslog.LOG_INFO, msg, kv...) }
func DEBUG(msg string, kv ...interface{})  { defaultLogger.Log(syslog.LOG_DEBUG, msg, kv...) }

// Log logs on the default Logger
func Log(level syslog.Priority, msg string, kv ...interface{}) {
	defaultLogger.Log(level, msg, kv...)
}

// IncLevel increases the default Logger level.
func IncLevel() bool {
	return defaultLogger.IncLevel()
}

// DecLevel decreases the default Logger level.
func DecLevel() bool {
	return defaultLogger.DecLevel()
}

// SetLevel sets the default Logger level.
func SetLevel(level syslog.Priority) bool {
	return defaultLogger.SetLevel(level)
}

// Level returns the default Logger level.
func Level() syslog.Priority {
	return defaultLogger.Level()
}

// Printf logs on the default Logger at LvlDEFAULT
func Printf(format string, v ...interface{}) {
	defaultLogger.Printf(format, v...)
}

// Println logs on the default Logger at LvlDEFAULT
func Println(v ...interface{}) {
	defaultLogger.Println(v...)
}

// Fatalf logs at LOG_ALERT and exits with status 1.
func Fatalf(format string, v ...interface{}) {
	defaultLogger.Log(syslog.LOG_ALERT, fmt.Sprintf(format, v...))
	os.Exit(1)
}

// LogFunc adapts the default Logger for the daemon and task packages.
func LogFunc(level int, message string) {
	defaultLogger.Log(syslog.Priority(level), message)
}
