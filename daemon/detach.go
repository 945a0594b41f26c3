package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	godaemon "github.com/sevlyar/go-daemon"
)

// ErrAlreadyDetached is returned by MakeDaemon() on every call but the first.
var ErrAlreadyDetached = errors.New("daemon: already detached")

// PidFilePerm is the permission of PID files created by MakeDaemon()
var PidFilePerm os.FileMode = 0644

// DefaultUmask is the file mode creation mask of a Reborn daemon with no Umask set.
const DefaultUmask = 027

// Detacher puts the process in background.
// Detach returns only in the process which is to continue as the daemon.
type Detacher interface {
	Detach() error
}

// DetacherFunc adapts a function to the Detacher interface.
type DetacherFunc func() error

// Detach calls f()
func (f DetacherFunc) Detach() error {
	return f()
}

// Reborn detaches by re-executing the program in a new session with
// standard input from /dev/null and standard output/error to LogFileName
// (or /dev/null). The original process exits with status 0 once the
// child has been started, like daemon(3).
type Reborn struct {
	// LogFileName receives stdout and stderr of the daemon if set.
	LogFileName string
	// WorkDir is the working directory of the daemon. Defaults to "/".
	WorkDir string
	// Umask of the daemon. Defaults to DefaultUmask.
	Umask int
	// Exit terminates the original process. Defaults to os.Exit.
	Exit func(code int)
}

// Detach implements Detacher
func (r *Reborn) Detach() error {
	child, err := r.context().Reborn()
	if err != nil {
		return err
	}
	if child != nil {
		exit := r.Exit
		if exit == nil {
			exit = os.Exit
		}
		exit(0)
	}
	return nil
}

func (r *Reborn) context() *godaemon.Context {
	ctx := &godaemon.Context{
		LogFileName: r.LogFileName,
		WorkDir:     r.WorkDir,
		Umask:       r.Umask,
	}
	if ctx.WorkDir == "" {
		ctx.WorkDir = "/"
	}
	if ctx.Umask == 0 {
		ctx.Umask = DefaultUmask
	}
	return ctx
}

// MakeDaemon detaches the process from its controlling terminal and writes
// the PID to pidFile, unless pidFile is empty.
// Only the first call does anything. Later calls return ErrAlreadyDetached.
// The PID file is kept locked until ReleasePidFile() or process exit.
func (d *Daemon) MakeDaemon(pidFile string) error {
	if !d.detached.CompareAndSwap(false, true) {
		d.log(LvlWARN, "Already running as daemon")
		return ErrAlreadyDetached
	}

	// The detached process may run with another working directory.
	if pidFile != "" {
		abs, err := filepath.Abs(pidFile)
		if err != nil {
			return fmt.Errorf("pid file %q: %w", pidFile, err)
		}
		pidFile = abs
	}

	if err := d.detacher.Detach(); err != nil {
		d.log(LvlCRIT, fmt.Sprintf("Failed to detach: %s", err))
		return fmt.Errorf("detach: %w", err)
	}

	if pidFile == "" {
		d.log(LvlNOTICE, fmt.Sprintf("Running in background (pid=%d)", os.Getpid()))
		return nil
	}

	lock, err := godaemon.CreatePidFile(pidFile, PidFilePerm)
	if err != nil {
		d.log(LvlCRIT, fmt.Sprintf("Failed to write pid file %s: %s", pidFile, err))
		return fmt.Errorf("pid file %q: %w", pidFile, err)
	}
	d.pidFile = lock
	d.log(LvlNOTICE, fmt.Sprintf("Running in background (pid=%d, pidfile=%s)", os.Getpid(), pidFile))
	return nil
}

// ReleasePidFile unlocks and removes the PID file written by MakeDaemon().
func (d *Daemon) ReleasePidFile() error {
	if d.pidFile == nil {
		return nil
	}
	lock := d.pidFile
	d.pidFile = nil
	return lock.Remove()
}
