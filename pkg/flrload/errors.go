package flrload

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	err := service.Import(ctx, cfg)
//	if errors.Is(err, flrload.ErrFieldDecode) {
//	    // The input file contains a malformed numeric column
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnknownRecordType indicates no layout is registered for a record type.
	ErrUnknownRecordType = errors.New("unknown record type")

	// ErrUnrecognizedRecordType indicates a line starts with a marker that is
	// not part of the marker map.
	ErrUnrecognizedRecordType = errors.New("unrecognized record type")

	// ErrFieldOutOfBounds indicates a field's column range extends past the line.
	ErrFieldOutOfBounds = errors.New("field out of bounds")

	// ErrFieldDecode indicates a numeric field holds text that is not an integer.
	ErrFieldDecode = errors.New("field decode error")

	// ErrSyntheticFieldCollision indicates a synthetic field shares its name
	// with a layout field.
	ErrSyntheticFieldCollision = errors.New("synthetic field collides with layout field")

	// ErrImportBatchFailed indicates the sink rejected a bulk write.
	ErrImportBatchFailed = errors.New("import batch failed")

	// ErrFieldSetMismatch indicates a record does not carry the field set the
	// importer writes.
	ErrFieldSetMismatch = errors.New("record field set mismatch")

	// ErrImporterClosed indicates a record was appended after Close.
	ErrImporterClosed = errors.New("importer is closed")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")
)

// FieldError describes a field that could not be decoded from a line.
// Start and End are the effective 1-based columns after the offset was applied.
type FieldError struct {
	Field string
	Raw   string
	Start int
	End   int
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s (columns %d-%d): %v: %q", e.Field, e.Start, e.End, e.Err, e.Raw)
}

func (e *FieldError) Unwrap() error { return e.Err }

// LineError attaches the input position to a classification or decode failure.
type LineError struct {
	Line       int
	RecordType RecordType
	Err        error
}

func (e *LineError) Error() string {
	if e.RecordType == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d (%s): %v", e.Line, e.RecordType, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// BatchError reports a bulk write the sink rejected. Ordinals count records
// appended to the importer, starting at 1; lines are input line numbers.
type BatchError struct {
	Target       string
	FirstOrdinal int
	LastOrdinal  int
	FirstLine    int
	LastLine     int
	Err          error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%v: %s records %d-%d (lines %d-%d): %v",
		ErrImportBatchFailed, e.Target, e.FirstOrdinal, e.LastOrdinal, e.FirstLine, e.LastLine, e.Err)
}

// Unwrap exposes both the sentinel and the sink's own error.
func (e *BatchError) Unwrap() []error { return []error{ErrImportBatchFailed, e.Err} }

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		// Checked first: a cancelled run may also carry batch errors from
		// writes that were cut short.
		return ExitInterrupted
	case errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrUnknownRecordType),
		errors.Is(err, ErrSyntheticFieldCollision),
		errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrUnrecognizedRecordType),
		errors.Is(err, ErrFieldOutOfBounds),
		errors.Is(err, ErrFieldDecode),
		errors.Is(err, ErrFieldSetMismatch):
		return ExitDecodeError
	case errors.Is(err, ErrImportBatchFailed):
		return ExitImportFailed
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	}

	errStr := err.Error()
	if isUsageError(errStr) {
		return ExitUsageError
	}
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}

// isUsageError recognises the messages cobra produces for bad invocations.
func isUsageError(msg string) bool {
	for _, prefix := range []string{
		"unknown flag",
		"unknown shorthand flag",
		"unknown command",
		"accepts ",
		"accepts at most",
		"required flag",
		"invalid argument",
		"flag needs an argument",
	} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}
