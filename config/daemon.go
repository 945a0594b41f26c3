package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultSettingsName is the base name of the settings file looked up in the config folder.
const DefaultSettingsName = "settings"

// Daemon holds the settings of a daemon host program given on the command line.
type Daemon struct {
	PidFile        string `mapstructure:"pidfile"`
	IsDaemon       bool   `mapstructure:"background"`
	HasTestConsole bool   `mapstructure:"console"`
	ConfigFile     string `mapstructure:"cfgfile"`
	ConfigFolder   string `mapstructure:"cfgpath"`
	LogFile        string `mapstructure:"logfile"`
}

// PathError tells which configured path is wrong.
type PathError struct {
	Desc string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %q %s", e.Desc, e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

var (
	ErrPathMissing   = errors.New("doesn't exist")
	ErrPathMandatory = errors.New("is mandatory but not defined")
)

// ValidatePath checks that path exists. An empty path is only an error if mandatory.
func ValidatePath(path, desc string, mandatory bool) error {
	if path == "" {
		if mandatory {
			return &PathError{Desc: desc, Path: path, Err: ErrPathMandatory}
		}
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			err = ErrPathMissing
		}
		return &PathError{Desc: desc, Path: path, Err: err}
	}
	return nil
}

// Validate checks the optional config folder and config file.
// All failures are reported, joined.
func (d *Daemon) Validate() error {
	return errors.Join(
		ValidatePath(d.ConfigFolder, "Configuration folder", false),
		ValidatePath(d.ConfigFile, "Configuration file", false),
	)
}

// Abs makes all paths absolute, so they stay valid when the process
// changes working directory on detach.
func (d *Daemon) Abs() error {
	for _, p := range []*string{&d.PidFile, &d.ConfigFile, &d.ConfigFolder, &d.LogFile} {
		if *p == "" {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return err
		}
		*p = abs
	}
	return nil
}

// SettingsFile returns the config file to load: ConfigFile if given, else the
// first "settings.<ext>" in ConfigFolder with a supported extension. It returns
// "" if there is none.
func (d *Daemon) SettingsFile() string {
	if d.ConfigFile != "" {
		return d.ConfigFile
	}
	if d.ConfigFolder == "" {
		return ""
	}
	for _, ext := range SupportedFormats {
		f := filepath.Join(d.ConfigFolder, DefaultSettingsName+"."+ext)
		if _, err := os.Stat(f); err == nil {
			return f
		}
	}
	return ""
}

// EnvFile returns the ".env" file in ConfigFolder, or "" if there is none.
func (d *Daemon) EnvFile() string {
	if d.ConfigFolder == "" {
		return ""
	}
	f := filepath.Join(d.ConfigFolder, ".env")
	if _, err := os.Stat(f); err != nil {
		return ""
	}
	return f
}
