package log

import (
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// MaybeTtyWriter is a writer which know whether the underlying writer is a TTY
type MaybeTtyWriter interface {
	IsTty() bool
	io.Writer
}

type fder interface {
	Fd() uintptr
}

// IsTty tells whether w is a file connected to a terminal.
func IsTty(w io.Writer) bool {
	f, ok := w.(fder)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// syncWriter allows to synchronize writes to an io.Writer and implements MaybeTtyWriter
type syncWriter struct {
	mu    sync.Mutex
	out   io.Writer
	istty bool
}

// SyncWriter encapsulates an io.Writer in a Mutex, so only one Write operation is done
// at a time.
func SyncWriter(w io.Writer) io.Writer {
	return &syncWriter{out: w, istty: IsTty(w)}
}

func (s *syncWriter) IsTty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.istty
}

func (s *syncWriter) Write(b []byte) (n int, err error) {
	s.mu.Lock()
	n, err = s.out.Write(b)
	s.mu.Unlock()
	return
}

// SetOutput replaces the underlying writer.
func (s *syncWriter) SetOutput(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.istty = IsTty(w)
	s.out = w
}

// OpenFile opens path for appending log lines, creating it if needed.
func OpenFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
}
