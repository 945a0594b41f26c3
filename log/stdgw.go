package log

import (
	"io"
	"strings"

	"github.com/alexcvc/boilerplate-daemonContext/log/syslog"
)

// StdlibAdapter wraps a Logger and allows it to be passed as output to
// a standard library logger (or a notepad of them).
// Each written line becomes an event. A leading "[prefix] " is kept in the
// message. If the first word after it is a level name like "WARN" or "ERROR",
// the event gets that level and the word is dropped.
type StdlibAdapter struct {
	level  syslog.Priority
	logger *Logger
}

// NewStdlibAdapter returns an io.Writer logging each line written to it on l at level.
func NewStdlibAdapter(l *Logger, level syslog.Priority) io.Writer {
	return &StdlibAdapter{level: level, logger: l}
}

// Write implements io.Writer.
func (a *StdlibAdapter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		level, msg := a.parse(line)
		a.logger.Log(level, msg)
	}
	return len(p), nil
}

func (a *StdlibAdapter) parse(line string) (syslog.Priority, string) {
	var prefix string
	rest := line
	if strings.HasPrefix(rest, "[") {
		if i := strings.Index(rest, "] "); i > 0 {
			prefix, rest = rest[:i+2], rest[i+2:]
		}
	}
	word, msg, found := strings.Cut(rest, " ")
	if !found || strings.ToUpper(word) != word {
		return a.level, line
	}
	level, err := syslog.ParsePriority(word)
	if err != nil {
		return a.level, line
	}
	return level, prefix + msg
}
