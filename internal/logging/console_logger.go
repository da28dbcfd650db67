package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// ConsoleLogger writes one line per message. Safe for concurrent use.
type ConsoleLogger struct {
	verbose bool
	prefix  string
	out     io.Writer
	mu      *sync.Mutex
}

// NewConsoleLogger returns a logger writing to stderr.
// Verbose messages are dropped unless verbose is true.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return NewWriterLogger(os.Stderr, verbose)
}

// NewWriterLogger returns a logger writing to w.
func NewWriterLogger(w io.Writer, verbose bool) *ConsoleLogger {
	return &ConsoleLogger{verbose: verbose, out: w, mu: &sync.Mutex{}}
}

// WithPrefix returns a logger that starts every line with "[prefix] ".
// The copy shares the writer and its lock with l.
func (l *ConsoleLogger) WithPrefix(prefix string) *ConsoleLogger {
	c := *l
	if prefix != "" {
		c.prefix = "[" + prefix + "] "
	}
	return &c
}

func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.write("[VERBOSE] ", format, args)
}

func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	l.write("", format, args)
}

func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.write("[ERROR] ", format, args)
}

func (l *ConsoleLogger) write(level, format string, args []interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.out, l.prefix+level+msg+"\n")
}
