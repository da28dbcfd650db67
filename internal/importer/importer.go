// Package importer buffers decoded records and writes them to a sink in
// fixed-size batches.
package importer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vvka-141/flrload/internal/logging"
	"github.com/vvka-141/flrload/pkg/flrload"
)

// Observer is notified after every flush attempt.
type Observer interface {
	BatchFlushed(target string, rows int, elapsed time.Duration, err error)
}

// Stats counts what an importer has done so far.
type Stats struct {
	Appended int
	Batches  int
	Rows     int64
}

// Importer accumulates records for one target and flushes them with a single
// Sink.BulkWrite whenever the buffer reaches the batch size.
//
// An Importer is driven by one goroutine. Flushed batches are never rolled
// back by later failures.
type Importer struct {
	sink      flrload.Sink
	target    string
	batchSize int
	validate  bool
	logger    flrload.Logger
	observer  Observer

	columns  []string
	explicit bool
	fieldSet map[string]struct{}

	buffer []*flrload.Record
	stats  Stats
	closed bool
}

// Option configures an Importer.
type Option func(*Importer)

// WithValidation forwards validate to the sink with every batch.
func WithValidation(validate bool) Option {
	return func(i *Importer) { i.validate = validate }
}

// WithFields fixes the column order. Records are projected onto these
// columns; a record lacking one of them is rejected.
func WithFields(fields []string) Option {
	return func(i *Importer) {
		if len(fields) == 0 {
			return
		}
		i.columns = append([]string(nil), fields...)
		i.explicit = true
	}
}

// WithBatchSize sets the flush threshold. Values below 1 keep the default.
func WithBatchSize(n int) Option {
	return func(i *Importer) {
		if n > 0 {
			i.batchSize = n
		}
	}
}

// WithLogger sets the logger used for flush messages.
func WithLogger(logger flrload.Logger) Option {
	return func(i *Importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithObserver registers an observer for flush results.
func WithObserver(o Observer) Option {
	return func(i *Importer) { i.observer = o }
}

// New returns an importer that writes to target through sink. A nil sink is
// a programmer error and panics.
func New(sink flrload.Sink, target string, opts ...Option) *Importer {
	if sink == nil {
		panic("sink cannot be nil")
	}

	i := &Importer{
		sink:      sink,
		target:    target,
		batchSize: flrload.DefaultBatchSize,
		logger:    logging.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.explicit {
		i.fieldSet = keySet(i.columns)
	}
	i.buffer = make([]*flrload.Record, 0, i.batchSize)
	return i
}

// Target returns the name records are written to.
func (i *Importer) Target() string { return i.target }

// Columns returns the column order, or nil before the first record when the
// order is inferred.
func (i *Importer) Columns() []string { return append([]string(nil), i.columns...) }

// Stats returns the counters accumulated so far.
func (i *Importer) Stats() Stats { return i.stats }

// Append adds rec to the buffer and flushes when the buffer is full.
// A record whose field set differs from the importer's columns is rejected
// with ErrFieldSetMismatch and not buffered.
func (i *Importer) Append(ctx context.Context, rec *flrload.Record) error {
	if i.closed {
		return flrload.ErrImporterClosed
	}
	if rec == nil {
		return fmt.Errorf("%s: cannot append a nil record", i.target)
	}
	if err := i.accept(rec); err != nil {
		return err
	}

	i.buffer = append(i.buffer, rec)
	i.stats.Appended++

	if len(i.buffer) >= i.batchSize {
		return i.flush(ctx)
	}
	return nil
}

// Close flushes any buffered records. Calling Close again is a no-op.
func (i *Importer) Close(ctx context.Context) error {
	if i.closed {
		return nil
	}
	i.closed = true
	if len(i.buffer) == 0 {
		return nil
	}
	return i.flush(ctx)
}

func (i *Importer) accept(rec *flrload.Record) error {
	if i.columns == nil {
		i.columns = rec.Names()
		i.fieldSet = keySet(i.columns)
		return nil
	}

	names := rec.Names()
	got := keySet(names)

	var missing, unexpected []string
	for _, col := range i.columns {
		if _, ok := got[strings.ToLower(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if !i.explicit {
		for _, n := range names {
			if _, ok := i.fieldSet[strings.ToLower(n)]; !ok {
				unexpected = append(unexpected, n)
			}
		}
	}
	if len(missing) == 0 && len(unexpected) == 0 {
		return nil
	}

	sort.Strings(missing)
	sort.Strings(unexpected)
	return &flrload.LineError{
		Line:       rec.Line,
		RecordType: rec.Type,
		Err: fmt.Errorf("%w: %s missing %v, unexpected %v",
			flrload.ErrFieldSetMismatch, i.target, missing, unexpected),
	}
}

func (i *Importer) flush(ctx context.Context) error {
	batch := i.buffer
	i.buffer = make([]*flrload.Record, 0, i.batchSize)

	rows := make([][]flrload.Value, len(batch))
	for n, rec := range batch {
		row := make([]flrload.Value, len(i.columns))
		for c, col := range i.columns {
			row[c], _ = rec.Get(col)
		}
		rows[n] = row
	}

	start := time.Now()
	written, err := i.sink.BulkWrite(ctx, i.target, i.columns, rows, i.validate)
	elapsed := time.Since(start)

	if i.observer != nil {
		i.observer.BatchFlushed(i.target, len(rows), elapsed, err)
	}

	if err != nil {
		last := i.stats.Appended
		return &flrload.BatchError{
			Target:       i.target,
			FirstOrdinal: last - len(batch) + 1,
			LastOrdinal:  last,
			FirstLine:    batch[0].Line,
			LastLine:     batch[len(batch)-1].Line,
			Err:          err,
		}
	}

	i.stats.Batches++
	i.stats.Rows += written
	i.logger.Verbose("Flushed %d %s records in %v", len(rows), i.target, elapsed.Round(time.Millisecond))
	return nil
}

func keySet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = struct{}{}
	}
	return set
}
