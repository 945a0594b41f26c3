package main

import (
	"fmt"
	"io"
	stdlog "log"
	"sync/atomic"
	"time"

	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/pflag"

	"github.com/alexcvc/boilerplate-daemonContext/config"
	"github.com/alexcvc/boilerplate-daemonContext/daemon"
	"github.com/alexcvc/boilerplate-daemonContext/log"
	"github.com/alexcvc/boilerplate-daemonContext/log/syslog"
	"github.com/alexcvc/boilerplate-daemonContext/task"
)

// appSettings are the values read from the settings file, the environment and flags.
type appSettings struct {
	Log struct {
		Level string
		File  string
	}
	Task struct {
		Step  time.Duration
		Limit time.Duration
		Reset time.Duration
	}
}

func setDefaults(cfg *config.Config) {
	cfg.SetDefault("log.level", "info")
	cfg.SetDefault("log.file", "")
	cfg.SetDefault("task.step", time.Second)
	cfg.SetDefault("task.limit", 4*time.Second)
	cfg.SetDefault("task.reset", time.Second)
}

// appContext is the application run by the daemon-context program.
type appContext struct {
	daemon config.Daemon
	cfg    *config.Config
	logger *log.Logger

	current atomic.Pointer[appSettings]
	ticks   atomic.Int64
	started time.Time

	// level to restore when debug is toggled off, -1 if debug is not toggled on
	savedLevel atomic.Int32
}

// newAppContext builds the configuration registry: defaults, then the settings
// file and ".env" of the config folder, then DAEMON_* environment variables,
// then the flags given.
func newAppContext(dc config.Daemon, flags *pflag.FlagSet, logger *log.Logger) (*appContext, error) {
	notes := jww.NewNotepad(jww.LevelCritical, jww.LevelInfo, io.Discard,
		log.NewStdlibAdapter(logger, syslog.LOG_INFO), "config", 0)
	cfg := config.New(config.EnvPrefix("daemon"), config.Notepad(notes))
	setDefaults(cfg)

	if f := dc.SettingsFile(); f != "" {
		cfg.AddConfigFile("", f)
	}
	cfg.AddEnvFile(dc.EnvFile())

	for _, key := range []string{"log.level", "log.file", "task.step", "task.limit", "task.reset"} {
		if err := cfg.BindEnv(key); err != nil {
			return nil, err
		}
	}
	if flags != nil {
		if f := flags.Lookup("logfile"); f != nil {
			if err := cfg.BindPFlag("log.file", f); err != nil {
				return nil, err
			}
		}
	}

	a := &appContext{daemon: dc, cfg: cfg, logger: logger}
	a.savedLevel.Store(-1)
	a.current.Store(&appSettings{})
	return a, nil
}

// Validate checks the paths given on the command line.
func (a *appContext) Validate() error {
	return a.daemon.Validate()
}

func (a *appContext) settings() *appSettings {
	return a.current.Load()
}

// load reads all sources and applies the settings.
// On error the previous settings stay in effect.
func (a *appContext) load() error {
	if err := a.cfg.Load(); err != nil {
		return err
	}
	s := new(appSettings)
	if err := a.cfg.Unmarshal(s); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	level, err := syslog.ParsePriority(s.Log.Level)
	if err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	if s.Task.Step <= 0 || s.Task.Limit <= 0 {
		return fmt.Errorf("settings: task step and limit must be positive")
	}

	a.current.Store(s)
	if a.savedLevel.Load() < 0 {
		a.logger.SetLevel(level)
	} else {
		a.savedLevel.Store(int32(level))
	}
	return nil
}

// Start implements daemon.Application
func (a *appContext) Start() daemon.Outcome {
	a.started = time.Now()
	if err := a.load(); err != nil {
		a.logger.ERROR("Loading settings failed", "err", err)
		return daemon.Failed
	}
	s := a.settings()
	a.logger.INFO("Application context started", "files", a.cfg.Files(), "level", s.Log.Level)
	return daemon.Succeeded
}

// Reload implements daemon.Application
// A broken settings file does not stop the daemon. The old settings are kept.
func (a *appContext) Reload() daemon.Outcome {
	if err := a.load(); err != nil {
		a.logger.ERROR("Reloading settings failed, keeping the previous ones", "err", err)
		return daemon.Unspecified
	}
	a.logger.NOTICE("Settings reloaded", "level", a.settings().Log.Level)
	return daemon.Succeeded
}

// User1 implements daemon.Application by logging the status.
func (a *appContext) User1() daemon.Outcome {
	s := a.settings()
	a.logger.NOTICE("Status",
		"uptime", time.Since(a.started).Round(time.Second),
		"ticks", a.ticks.Load(),
		"level", a.logger.Level(),
		"step", s.Task.Step,
		"limit", s.Task.Limit)
	return daemon.Succeeded
}

// User2 implements daemon.Application by toggling debug logging.
func (a *appContext) User2() daemon.Outcome {
	if saved := a.savedLevel.Swap(-1); saved >= 0 {
		a.logger.SetLevel(syslog.Priority(saved))
		a.logger.NOTICE("Debug logging off", "level", a.logger.Level())
		return daemon.Succeeded
	}
	a.savedLevel.Store(int32(a.logger.Level()))
	a.logger.SetLevel(syslog.LOG_DEBUG)
	a.logger.NOTICE("Debug logging on")
	return daemon.Succeeded
}

// Close implements daemon.Application
func (a *appContext) Close() daemon.Outcome {
	a.logger.INFO("Application context closed", "ticks", a.ticks.Load())
	return daemon.Succeeded
}

// Process is the step of the application task. The interval grows by the
// configured step up to the limit, then starts over from the reset value.
func (a *appContext) Process(suggested time.Duration) time.Duration {
	s := a.settings()
	return task.Accelerate(s.Task.Step, s.Task.Limit, s.Task.Reset, func(next time.Duration) {
		a.ticks.Add(1)
		a.logger.INFO(fmt.Sprintf("application task ticks %d ms", suggested.Milliseconds()), "next", next)
	})(suggested)
}

// WriteSettings dumps the effective configuration.
func (a *appContext) WriteSettings(w io.Writer) error {
	return a.cfg.WriteTo(w, "yaml")
}

var _ daemon.Application = (*appContext)(nil)

// routeStdlog makes output of the standard library logger go to logger at debug level.
func routeStdlog(logger *log.Logger) {
	stdlog.SetFlags(0)
	stdlog.SetOutput(log.NewStdlibAdapter(logger, syslog.LOG_DEBUG))
}
