package flrload

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Import completed and every importer closed
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration, layout or synthetic field setup
	ExitConnectionError = 11 // Failed to connect to database
	ExitDecodeError     = 20 // Input line could not be classified or decoded
	ExitImportFailed    = 21 // Storage rejected a bulk write
	ExitInterrupted     = 22 // Cancelled by a signal or the global timeout
)

const (
	// DefaultBatchSize is the number of records an importer buffers before
	// it writes them to the sink in one bulk operation.
	DefaultBatchSize = 25_000

	// ProgressInterval is the number of person records between progress notices.
	ProgressInterval = 25_000

	// MaxLineLength bounds a single input line. Census extracts are a few
	// hundred columns wide; anything near this limit is not an FLR file.
	MaxLineLength = 1 << 20

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of connection retry attempts.
	DefaultRetryMaxAttempts = 3

	// DefaultTimeout guards a whole import against hangs (network, locks).
	DefaultTimeout = 2 * time.Hour

	// CloseTimeout bounds the final flush of buffered records after an
	// import was cancelled.
	CloseTimeout = 30 * time.Second

	// DefaultSourceFile is the bundled sample extract used when no input file is named.
	DefaultSourceFile = "input_data/usa_0001.dat"
)

// Synthetic field names a reader can append to a decoded record.
const (
	FieldLineNumber = "line_number"
	FieldRecordType = "record_type"
)

// Record types present in IPUMS USA hierarchical extracts.
const (
	RecordTypeHousehold RecordType = "household"
	RecordTypePerson    RecordType = "person"
)
