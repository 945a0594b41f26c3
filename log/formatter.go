package log

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/alexcvc/boilerplate-daemonContext/log/syslog"
)

// Flags for the standard formatter, compatible with the standard library log package.
const (
	Ldate         = 1 << iota // the date in the local time zone: 2009/01/23
	Ltime                     // the time in the local time zone: 01:23:23
	Lmicroseconds             // microsecond resolution: 01:23:23.123123.  assumes Ltime.
	LUTC                      // if Ldate or Ltime is set, use UTC rather than the local time zone
	Llevel                    // prefix the line with the syslog level: <3>
	Lpid                      // the process id: [1234]
	Lcolor                    // color the message by level if the output is a TTY

	LstdFlags = Ldate | Ltime
)

var colors = [...]string{
	syslog.LOG_EMERG:   "\x1b[35m",
	syslog.LOG_ALERT:   "\x1b[35m",
	syslog.LOG_CRIT:    "\x1b[31m",
	syslog.LOG_ERR:     "\x1b[31m",
	syslog.LOG_WARNING: "\x1b[33m",
	syslog.LOG_NOTICE:  "\x1b[32m",
	syslog.LOG_INFO:    "",
	syslog.LOG_DEBUG:   "\x1b[36m",
}

const colorReset = "\x1b[0m"

// MinFormatterOption configures NewMinFormatter()
type MinFormatterOption func(*minFormatter)

// PrefixOpt sets a prefix written after the level.
func PrefixOpt(prefix string) MinFormatterOption {
	return func(f *minFormatter) {
		f.prefix = prefix
	}
}

type minFormatter struct {
	out    io.Writer
	prefix string
}

// NewMinFormatter creates a formatter writing "<level>prefix message k=v" lines,
// which is what systemd expects on stdout of a service.
func NewMinFormatter(w io.Writer, opts ...MinFormatterOption) Handler {
	f := &minFormatter{out: w}
	for _, o := range opts {
		o(f)
	}
	return f
}

func (f *minFormatter) Log(e Event) error {
	var buf bytes.Buffer
	buf.WriteByte('<')
	buf.WriteString(strconv.Itoa(int(e.Lvl)))
	buf.WriteByte('>')
	buf.WriteString(f.prefix)
	buf.WriteString(e.Msg)
	writeKV(&buf, e.Data)
	buf.WriteByte('\n')
	_, err := f.out.Write(buf.Bytes())
	return err
}

type stdFormatter struct {
	out    io.Writer
	prefix string
	flags  int
	pid    string
}

// NewStdFormatter creates a formatter like the standard library logger, with the
// extra flags Llevel, Lpid and Lcolor.
func NewStdFormatter(w io.Writer, prefix string, flags int) Handler {
	return &stdFormatter{
		out:    w,
		prefix: prefix,
		flags:  flags,
		pid:    strconv.Itoa(os.Getpid()),
	}
}

func (f *stdFormatter) Log(e Event) error {
	var buf bytes.Buffer
	if f.flags&Llevel != 0 {
		fmt.Fprintf(&buf, "<%d>", e.Lvl)
	}
	buf.WriteString(f.prefix)
	if f.flags&(Ldate|Ltime|Lmicroseconds) != 0 {
		t := e.Time
		if t.IsZero() {
			t = time.Now()
		}
		if f.flags&LUTC != 0 {
			t = t.UTC()
		}
		if f.flags&Ldate != 0 {
			buf.WriteString(t.Format("2006/01/02 "))
		}
		if f.flags&(Ltime|Lmicroseconds) != 0 {
			if f.flags&Lmicroseconds != 0 {
				buf.WriteString(t.Format("15:04:05.000000 "))
			} else {
				buf.WriteString(t.Format("15:04:05 "))
			}
		}
	}
	if f.flags&Lpid != 0 {
		buf.WriteByte('[')
		buf.WriteString(f.pid)
		buf.WriteString("] ")
	}

	color := ""
	if f.flags&Lcolor != 0 && int(e.Lvl) < len(colors) {
		if tw, ok := f.out.(MaybeTtyWriter); ok && tw.IsTty() {
			color = colors[e.Lvl]
		}
	}
	buf.WriteString(color)
	buf.WriteString(e.Msg)
	writeKV(&buf, e.Data)
	if color != "" {
		buf.WriteString(colorReset)
	}
	buf.WriteByte('\n')
	_, err := f.out.Write(buf.Bytes())
	return err
}

func writeKV(buf *bytes.Buffer, kv []interface{}) {
	for i := 0; i+1 < len(kv); i += 2 {
		buf.WriteByte(' ')
		fmt.Fprint(buf, kv[i])
		buf.WriteByte('=')
		writeValue(buf, kv[i+1])
	}
}

func writeValue(buf *bytes.Buffer, v interface{}) {
	var s string
	switch x := v.(type) {
	case nil:
		s = "nil"
	case string:
		s = x
	case error:
		s = x.Error()
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprint(x)
	}
	if s == "" || bytes.ContainsAny([]byte(s), " \t\n\"=") {
		s = strconv.Quote(s)
	}
	buf.WriteString(s)
}
