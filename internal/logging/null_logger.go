package logging

import "github.com/vvka-141/flrload/pkg/flrload"

// NullLogger discards all messages. Tests and library callers that only care
// about returned errors use it.
type NullLogger struct{}

func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (l *NullLogger) Verbose(format string, args ...interface{}) {}

func (l *NullLogger) Info(format string, args ...interface{}) {}

func (l *NullLogger) Error(format string, args ...interface{}) {}

var (
	_ flrload.Logger = (*NullLogger)(nil)
	_ flrload.Logger = (*ConsoleLogger)(nil)
)
