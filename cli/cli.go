// Package cli parses the command line of the daemon host programs.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/alexcvc/boilerplate-daemonContext/config"
	"github.com/alexcvc/boilerplate-daemonContext/version"
)

// ErrVersion is returned by Parse when the version was requested.
var ErrVersion = errors.New("version requested")

// Foreground mode flag of a program. Programs differ in the letter.
var (
	Test       = Mode{Short: "T", Long: "test"}
	Foreground = Mode{Short: "F", Long: "foreground"}
)

// Mode names the flag selecting foreground mode with a test console.
type Mode struct {
	Short string
	Long  string
}

// Options describe the command line of a program.
type Options struct {
	// Program name used in help and version output.
	Name string
	// The foreground flag. Default is Test (-T).
	Foreground Mode
	// Offer -L/--logfile.
	LogFile bool
	// Sample argument lists shown after the option list.
	Samples []string
}

// modeValue is shared by -D and the foreground flag, so the last one given wins.
type modeValue struct {
	d      *config.Daemon
	daemon bool
}

func (m *modeValue) String() string {
	if m.d == nil {
		return "false"
	}
	if m.daemon {
		return strconv.FormatBool(m.d.IsDaemon)
	}
	return strconv.FormatBool(m.d.HasTestConsole)
}

func (m *modeValue) Set(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	switch {
	case b:
		m.d.IsDaemon = m.daemon
		m.d.HasTestConsole = !m.daemon
	case m.daemon:
		m.d.IsDaemon = false
	default:
		m.d.HasTestConsole = false
	}
	return nil
}

func (m *modeValue) Type() string { return "bool" }

func (m *modeValue) IsBoolFlag() bool { return true }

// pathValue refuses empty arguments.
type pathValue struct {
	p    *string
	what string
}

func (v *pathValue) String() string {
	if v.p == nil {
		return ""
	}
	return *v.p
}

func (v *pathValue) Set(s string) error {
	if s == "" {
		return fmt.Errorf("missing %s argument", v.what)
	}
	*v.p = s
	return nil
}

func (v *pathValue) Type() string { return "string" }

func (o *Options) mode() Mode {
	if o.Foreground.Short == "" {
		return Test
	}
	return o.Foreground
}

// FlagSet returns the flags of the program, storing into d.
// The returned set also has "help" and "version" flags.
func (o *Options) FlagSet(d *config.Daemon) *pflag.FlagSet {
	fs := pflag.NewFlagSet(o.Name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.SortFlags = false

	fg := o.mode()
	fs.VarPF(&modeValue{d: d, daemon: true}, "background", "D", "start as daemon").NoOptDefVal = "true"
	fs.VarPF(&modeValue{d: d}, fg.Long, fg.Short, "start in foreground with test console").NoOptDefVal = "true"
	fs.VarP(&pathValue{p: &d.ConfigFolder, what: "configuration folder"}, "cfgpath", "S", "path to `folder` with configuration files")
	fs.VarP(&pathValue{p: &d.ConfigFile, what: "configuration file"}, "cfgfile", "x", "specified configuration `file`")
	fs.VarP(&pathValue{p: &d.PidFile, what: "pid file"}, "pidfile", "P", "create pid `file`")
	if o.LogFile {
		fs.VarP(&pathValue{p: &d.LogFile, what: "log file"}, "logfile", "L", "specified log `file`")
	}
	fs.BoolP("version", "v", false, "version")
	fs.BoolP("help", "h", false, "this message")
	return fs
}

// Parse parses args (without the program name).
// It returns pflag.ErrHelp for -h and ErrVersion for -v.
func (o *Options) Parse(args []string) (d config.Daemon, fs *pflag.FlagSet, err error) {
	fs = o.FlagSet(&d)
	if err = fs.Parse(args); err != nil {
		return
	}
	if help, _ := fs.GetBool("help"); help {
		return d, fs, pflag.ErrHelp
	}
	if v, _ := fs.GetBool("version"); v {
		return d, fs, ErrVersion
	}
	if fs.NArg() > 0 {
		err = fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	return
}

// Usage writes the option list and the sample command lines.
func (o *Options) Usage(w io.Writer) {
	var d config.Daemon
	fmt.Fprintf(w, "\nUsage: %s [OPTIONS]\n\n", o.Name)
	fmt.Fprint(w, o.FlagSet(&d).FlagUsages())
	if len(o.Samples) == 0 {
		return
	}
	fmt.Fprintf(w, "\nSample command lines:\n\n")
	for _, s := range o.Samples {
		fmt.Fprintln(w, o.Name+s)
	}
}

// MustParse parses os.Args. It prints help or version and exits 0 if asked for them.
// On errors it prints the error and usage to stderr and exits 1.
func (o *Options) MustParse() (config.Daemon, *pflag.FlagSet) {
	d, fs, err := o.Parse(os.Args[1:])
	switch {
	case err == nil:
		return d, fs
	case errors.Is(err, pflag.ErrHelp):
		o.Usage(os.Stdout)
		os.Exit(0)
	case errors.Is(err, ErrVersion):
		fmt.Println(version.String(o.Name))
		os.Exit(0)
	}
	fmt.Fprintln(os.Stderr, "Error in option:", err)
	o.Usage(os.Stderr)
	os.Exit(1)
	return d, fs
}
