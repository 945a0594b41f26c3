package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexcvc/boilerplate-daemonContext/daemon"
	"github.com/alexcvc/boilerplate-daemonContext/log"
	"github.com/alexcvc/boilerplate-daemonContext/log/syslog"
)

func TestProcess(t *testing.T) {
	d := time.Second
	var seen []time.Duration
	for i := 0; i < 5; i++ {
		d = process(d)
		seen = append(seen, d)
	}
	assert.Equal(t, []time.Duration{2 * time.Second, 3 * time.Second, 4 * time.Second, 0, time.Second}, seen)
}

func TestReleasePidFile(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "test.pid")
	d := daemon.New(daemon.IgnoreSignals(), daemon.DetachWith(daemon.DetacherFunc(func() error { return nil })))
	require.NoError(t, d.MakeDaemon(pidFile))

	var buf bytes.Buffer
	logger := log.NewLogger(syslog.LOG_INFO, log.NewMinFormatter(&buf))
	releasePidFile(d, logger)
	assert.Empty(t, buf.String())
	_, err := os.Stat(pidFile)
	assert.True(t, os.IsNotExist(err))

	d = daemon.New(daemon.IgnoreSignals(), daemon.DetachWith(daemon.DetacherFunc(func() error { return nil })))
	require.NoError(t, d.MakeDaemon(pidFile))
	require.NoError(t, os.Remove(pidFile))
	releasePidFile(d, logger)
	assert.Contains(t, buf.String(), "removing pid file")
}
