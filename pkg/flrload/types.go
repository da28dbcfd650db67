package flrload

import (
	"errors"
	"fmt"
	"time"
)

// ImportConfig contains all parameters needed for one import run.
type ImportConfig struct {
	// SourcePath is the FLR extract to read.
	SourcePath string

	// Connection is the resolved target database. Ignored in DryRun mode.
	Connection *ConnectionConfig

	// Format describes markers, layouts, offset and synthetic fields.
	Format Format

	// Tables maps each record type to the table receiving it.
	Tables map[RecordType]string

	// Indexes lists the columns indexed when tables are (re)created.
	Indexes map[RecordType][]string

	// BatchSize is the number of records per bulk write.
	BatchSize int

	// ValidateRows asks the sink to check every row during bulk writes.
	ValidateRows bool

	// RecreateSchema drops and creates every target table before reading.
	RecreateSchema bool

	// SingleTransaction makes the whole file one transaction.
	SingleTransaction bool

	// DryRun decodes and batches without touching a database.
	DryRun bool

	// Timeout is the global timeout for the whole import.
	Timeout time.Duration

	// Verbose enables detailed logging
	Verbose bool
}

// Validate checks if the ImportConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *ImportConfig) Validate() error {
	var errs []error

	if c.SourcePath == "" {
		errs = append(errs, fmt.Errorf("SourcePath is required: %w", ErrInvalidConfig))
	}

	if !c.DryRun && c.Connection == nil {
		errs = append(errs, fmt.Errorf("Connection is required unless DryRun is set: %w", ErrInvalidConfig))
	}

	if c.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("BatchSize must be positive, got %d: %w", c.BatchSize, ErrInvalidConfig))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	if c.SingleTransaction && c.DryRun {
		errs = append(errs, fmt.Errorf("single transaction has no effect in dry-run mode: %w", ErrInvalidConfig))
	}

	if len(c.Format.Markers) == 0 {
		errs = append(errs, fmt.Errorf("format has no record markers: %w", ErrInvalidConfig))
	}
	if len(c.Format.Layouts) == 0 {
		errs = append(errs, fmt.Errorf("format has no layouts: %w", ErrInvalidConfig))
	}

	for _, rt := range c.Format.RecordTypes() {
		if c.Tables[rt] == "" {
			errs = append(errs, fmt.Errorf("no table configured for record type %q: %w", rt, ErrInvalidConfig))
		}
	}

	return errors.Join(errs...)
}

// TypeSummary counts what one importer wrote.
type TypeSummary struct {
	Table   string
	Records int
	Batches int
}

// ImportSummary reports the outcome of a completed import.
type ImportSummary struct {
	RunID    string
	Source   string
	Lines    int
	Types    map[RecordType]TypeSummary
	Duration time.Duration
	DryRun   bool

	// SourceBytes and the digests describe the file as read.
	SourceBytes      int64
	SourceSHA256     string
	NormalizedSHA256 string
}

// Records returns the total number of records written across all types.
func (s *ImportSummary) Records() int {
	total := 0
	for _, t := range s.Types {
		total += t.Records
	}
	return total
}
