package flrload

import "time"

// ErrorClassifier decides whether a failed operation may be attempted again.
type ErrorClassifier interface {
	// IsTransient reports whether err is temporary (server starting, network blip).
	IsTransient(err error) bool
}

// BackoffStrategy decides how long to wait between attempts.
type BackoffStrategy interface {
	// NextDelay returns the wait before retry number attempt (zero-indexed).
	NextDelay(attempt int) time.Duration

	// MaxAttempts returns the retry budget (0 = no retries, -1 = unlimited).
	MaxAttempts() int
}
