package flrload

// Logger is the logging surface used by the import pipeline.
// Implementations must be safe for concurrent use by multiple goroutines.
type Logger interface {
	// Verbose logs diagnostics such as resolved connection settings and
	// individual batch flushes. Only emitted when verbose mode is on.
	Verbose(format string, args ...interface{})

	// Info logs progress notices and summaries. Always emitted.
	Info(format string, args ...interface{})

	// Error logs failures. Always emitted.
	Error(format string, args ...interface{})
}
