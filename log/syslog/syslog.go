// Package syslog holds the syslog priority levels used by the log package,
// source code compatible with the standard library "log/syslog" constants.
package syslog

import (
	"fmt"
	stdsyslog "log/syslog"
	"strconv"
	"strings"
)

type Priority stdsyslog.Priority

const (
	LOG_EMERG Priority = iota
	LOG_ALERT
	LOG_CRIT
	LOG_ERR
	LOG_WARNING
	LOG_NOTICE
	LOG_INFO
	LOG_DEBUG
)

// aliases

const (
	LOG_ERROR Priority = LOG_ERR
	LOG_WARN  Priority = LOG_WARNING
)

var names = [...]string{"emerg", "alert", "crit", "error", "warning", "notice", "info", "debug"}

func (p Priority) String() string {
	if p >= 0 && int(p) < len(names) {
		return names[p]
	}
	return strconv.Itoa(int(p))
}

// ParsePriority accepts a level name ("error", "warn", ...) or a number 0-7.
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "err":
		return LOG_ERR, nil
	case "warn":
		return LOG_WARN, nil
	case "emergency":
		return LOG_EMERG, nil
	case "critical":
		return LOG_CRIT, nil
	}
	for i, n := range names {
		if s == n {
			return Priority(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < len(names) {
		return Priority(n), nil
	}
	return LOG_INFO, fmt.Errorf("unknown log level %q", s)
}
