// Package console implements the foreground test console of a daemon host.
//
// Commands are single words read line by line from an input stream,
// like "R" to reload or "q" to quit. Commands are looked up in a registry.
// A help command lists them.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// Command is the interface of a specific console command
type Command interface {
	// ShortUsage provides a short description of the command for the help listing.
	ShortUsage() (syntax string, comment string)

	// Invoke runs the command being passed the console output,
	// the name the command was invoked with and its arguments.
	Invoke(ctx context.Context, out io.Writer, cmd string, args []string) error
}

// Usager is implemented by commands providing their own full documentation,
// shown by "h <cmd>".
type Usager interface {
	Usage(cmd string, out io.Writer)
}

// Func makes a Command of a function, described by comment in the help listing.
func Func(comment string, f func(ctx context.Context, out io.Writer) error) Command {
	return &funcCommand{comment: comment, f: f}
}

type funcCommand struct {
	comment string
	f       func(ctx context.Context, out io.Writer) error
}

func (c *funcCommand) ShortUsage() (string, string) {
	return "", c.comment
}

func (c *funcCommand) Invoke(ctx context.Context, out io.Writer, cmd string, args []string) error {
	return c.f(ctx, out)
}

// LoggerFunc receives log messages with a syslog level.
type LoggerFunc func(level int, message string)

const lvlWARN = 4

// Console reads commands from In and writes their output to Out.
type Console struct {
	In  io.Reader
	Out io.Writer

	// The commands invoking the help system. Default "h" and "?".
	HelpCommands []string
	// The command making Next() report quit. Default "q".
	QuitCommand string

	// A logger to log input errors to.
	Logger LoggerFunc

	mu       sync.Mutex
	names    []string
	commands map[string]Command

	once    sync.Once
	lines   chan string
	readErr error
}

// New returns a Console reading stdin and writing stdout.
func New() *Console {
	return &Console{In: os.Stdin, Out: os.Stdout}
}

// RegisterCommand registers an implementation of the Command interface under a command name.
// The help listing shows commands in registration order.
func (c *Console) RegisterCommand(name string, cmd Command) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.commands == nil {
		c.commands = make(map[string]Command)
	}
	if _, ok := c.commands[name]; !ok {
		c.names = append(c.names, name)
	}
	c.commands[name] = cmd
}

func (c *Console) helpCommands() []string {
	if len(c.HelpCommands) == 0 {
		return []string{"h", "?"}
	}
	return c.HelpCommands
}

func (c *Console) quitCommand() string {
	if c.QuitCommand == "" {
		return "q"
	}
	return c.QuitCommand
}

// Interactive tells whether the console input is a terminal.
func (c *Console) Interactive() bool {
	f, ok := c.In.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Greet prints how to get the command listing.
func (c *Console) Greet() {
	h := c.helpCommands()[0]
	if c.Interactive() {
		fmt.Fprintf(c.Out, "Press the %s key to display the Console Menu...\n", h)
		return
	}
	fmt.Fprintf(c.Out, "Send %q to display the Console Menu...\n", h)
}

// the reader goroutine cannot be interrupted while blocked in a read.
// It ends when In reaches EOF or fails.
func (c *Console) start() {
	c.lines = make(chan string)
	go func() {
		defer close(c.lines)
		scanner := bufio.NewScanner(c.In)
		for scanner.Scan() {
			c.lines <- scanner.Text()
		}
		c.readErr = scanner.Err()
	}()
}

// Next waits up to timeout for an input line and executes it.
// It returns quit == true if the quit command was read.
// At end of input it returns io.EOF, and the console should not be used any more.
func (c *Console) Next(ctx context.Context, timeout time.Duration) (quit bool, err error) {
	c.once.Do(c.start)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-timer.C:
		return false, nil
	case line, ok := <-c.lines:
		if !ok {
			if c.readErr != nil {
				if c.Logger != nil {
					c.Logger(lvlWARN, fmt.Sprintf("reading console: %s", c.readErr))
				}
				return false, c.readErr
			}
			return false, io.EOF
		}
		return c.Execute(ctx, line), nil
	}
}

// Execute runs a single command line and tells whether it was the quit command.
func (c *Console) Execute(ctx context.Context, line string) (quit bool) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return false
	}

	if tokens[0] == c.quitCommand() {
		return true
	}

	var cmd string
	var cmdhelp bool
	if c.isHelp(tokens[0]) {
		if len(tokens) != 2 {
			c.help(c.Out)
			return false
		}
		cmd = tokens[1]
		cmdhelp = true
	} else {
		cmd = tokens[0]
	}

	c.mu.Lock()
	cmdobj, ok := c.commands[cmd]
	c.mu.Unlock()

	if !ok {
		fmt.Fprintln(c.Out, "Unknown command, try: "+c.helpCommands()[0])
		return false
	}

	if cmdhelp {
		if u, ok := cmdobj.(Usager); ok {
			u.Usage(cmd, c.Out)
		} else {
			syntax, comment := cmdobj.ShortUsage()
			fmt.Fprintln(c.Out, strings.TrimSpace(cmd+" "+syntax), "-", comment)
		}
		return false
	}

	if err := cmdobj.Invoke(ctx, c.Out, cmd, tokens[1:]); err != nil {
		if errors.Is(err, context.Canceled) {
			return false
		}
		fmt.Fprintln(c.Out, "Error:", err.Error())
	}
	return false
}

func (c *Console) isHelp(s string) bool {
	for _, h := range c.helpCommands() {
		if s == h {
			return true
		}
	}
	return false
}

type usageinfo struct {
	name    string
	syntax  string
	comment string
}

func (c *Console) help(w io.Writer) {
	c.mu.Lock()
	var infos []usageinfo
	for _, name := range c.names {
		syntax, comment := c.commands[name].ShortUsage()
		infos = append(infos, usageinfo{name, syntax, comment})
	}
	c.mu.Unlock()

	infos = append(infos,
		usageinfo{name: c.quitCommand(), comment: "quit from application."},
		usageinfo{name: strings.Join(c.helpCommands(), "|"), comment: "this information."},
	)

	var namelength, syntaxlength int
	for _, info := range infos {
		if len(info.name) > namelength {
			namelength = len(info.name)
		}
		if len(info.syntax) > syntaxlength {
			syntaxlength = len(info.syntax)
		}
	}

	fmt.Fprintln(w, "Application test console:")
	for _, info := range infos {
		if syntaxlength > 0 {
			fmt.Fprintf(w, " %-*s %-*s -  %s\n", namelength, info.name, syntaxlength, info.syntax, info.comment)
		} else {
			fmt.Fprintf(w, " %-*s -  %s\n", namelength, info.name, info.comment)
		}
	}
}
