package sd

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

const (
	envNotifySocket = "NOTIFY_SOCKET"
	envWatchdogUsec = "WATCHDOG_USEC"
	envWatchdogPid  = "WATCHDOG_PID"
)

const (
	// Don't send a STATUS
	StatusNone = iota
	// Tell systemd status is READY
	StatusReady
	// Tell systemd status is RELOADING
	StatusReloading
	// Tell systemd status is STOPPING
	StatusStopping
	// Tell the systemd WATCHDOG we are alive
	StatusWatchdog
)

const (
	// Unset the systemd notify/Watchdog env vars
	NotifyUnsetEnv = 1 << iota
	// Add MAINPID=<pid of this process>. Needed after detaching.
	NotifyMainPid
)

// ErrNoSocket informs the caller that there's no NOTIFY_SOCKET avaliable
var ErrNoSocket = errors.New("no systemd notify socket in environment")

// The environment is read on each call, since a detached child
// gets it from its parent and tests change it.
func notifySocket() string {
	s := os.Getenv(envNotifySocket)
	// Handle abstract sockets
	if s != "" && s[0] == '@' {
		s = "\x00" + s[1:]
	}
	return s
}

// WatchdogEnabled tell whether systemd asked us to enable watchdog notifications,
// and the interval within which a keep-alive must be sent.
func WatchdogEnabled() (enabled bool, when time.Duration) {
	usec, err := strconv.ParseInt(os.Getenv(envWatchdogUsec), 10, 64)
	if err != nil || usec <= 0 {
		return false, 0
	}
	if pidStr := os.Getenv(envWatchdogPid); pidStr != "" {
		pid, err := strconv.Atoi(pidStr)
		if err != nil || pid != unix.Getpid() {
			return false, 0
		}
	}
	return true, time.Duration(usec) * time.Microsecond
}

// NotifyStatus sends systemd the service status over the notify socket.
func NotifyStatus(status int, message string) error {
	var lines []string
	switch status {
	case StatusNone:
	case StatusReady:
		lines = append(lines, "READY=1")
	case StatusReloading:
		lines = append(lines, "RELOADING=1")
	case StatusStopping:
		lines = append(lines, "STOPPING=1")
	case StatusWatchdog:
		lines = append(lines, "WATCHDOG=1")
	default:
		return fmt.Errorf("unknown notify status %d", status)
	}
	if message != "" {
		lines = append(lines, "STATUS="+message)
	}
	return Notify(0, lines...)
}

// Notify lets you control the message sent to the nofify socket more directly.
// flags control whether to unset the ENV and whether to add the MAINPID.
func Notify(flags int, lines ...string) error {
	if flags&NotifyUnsetEnv != 0 {
		defer func() {
			os.Unsetenv(envNotifySocket)
			os.Unsetenv(envWatchdogUsec)
			os.Unsetenv(envWatchdogPid)
		}()
	}

	addr := notifySocket()
	if addr == "" {
		return ErrNoSocket
	}

	if flags&NotifyMainPid != 0 {
		lines = append(lines, "MAINPID="+strconv.Itoa(unix.Getpid()))
	}

	conn, err := net.DialUnix("unixgram", nil, &net.UnixAddr{Name: addr, Net: "unixgram"})
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Write([]byte(strings.Join(lines, "\n")))
	return err
}
