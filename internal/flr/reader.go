package flr

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/vvka-141/flrload/internal/layout"
	"github.com/vvka-141/flrload/pkg/flrload"
)

// Reader yields one decoded record per line of an FLR stream.
//
// It follows the bufio.Scanner pattern: call Next until it returns false,
// then check Err. A Reader is single-use and not safe for concurrent use.
type Reader struct {
	scanner    *bufio.Scanner
	classifier *Classifier
	registry   *layout.Registry
	offset     int
	synthetic  map[flrload.RecordType][]string

	line int
	rec  *flrload.Record
	err  error
	done bool
}

// NewReader validates f and returns a reader over src. Configuration errors,
// including synthetic fields that collide with layout fields, are reported
// here before anything is read.
func NewReader(src io.Reader, f flrload.Format) (*Reader, error) {
	registry, err := layout.NewRegistry(f.Layouts...)
	if err != nil {
		return nil, err
	}

	classifier, err := NewClassifier(f.Markers)
	if err != nil {
		return nil, err
	}

	var errs []error
	for marker, rt := range f.Markers {
		if _, err := registry.LayoutFor(rt); err != nil {
			errs = append(errs, fmt.Errorf("marker %q: %w", marker, err))
		}
	}

	synthetic := make(map[flrload.RecordType][]string, len(f.Synthetic))
	for rt, names := range f.Synthetic {
		l, err := registry.LayoutFor(rt)
		if err != nil {
			errs = append(errs, fmt.Errorf("synthetic fields: %w", err))
			continue
		}
		if err := checkSynthetic(l, names); err != nil {
			errs = append(errs, err)
			continue
		}
		synthetic[rt] = append([]string(nil), names...)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), flrload.MaxLineLength)

	return &Reader{
		scanner:    scanner,
		classifier: classifier,
		registry:   registry,
		offset:     f.Offset,
		synthetic:  synthetic,
	}, nil
}

func checkSynthetic(l *flrload.Layout, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		key := strings.ToLower(name)
		switch {
		case key != flrload.FieldLineNumber && key != flrload.FieldRecordType:
			return fmt.Errorf("record type %q: unknown synthetic field %q: %w", l.RecordType(), name, flrload.ErrInvalidConfig)
		case seen[key]:
			return fmt.Errorf("record type %q: synthetic field %q listed twice: %w", l.RecordType(), name, flrload.ErrInvalidConfig)
		}
		seen[key] = true
		if _, ok := l.Lookup(name); ok {
			return fmt.Errorf("%w: record type %q already has a field named %q",
				flrload.ErrSyntheticFieldCollision, l.RecordType(), name)
		}
	}
	return nil
}

// Next advances to the next record. It returns false at end of input or on
// the first error; Err distinguishes the two.
func (r *Reader) Next() bool {
	if r.done {
		return false
	}
	r.rec = nil

	if !r.scanner.Scan() {
		r.done = true
		if err := r.scanner.Err(); err != nil {
			r.err = &flrload.LineError{Line: r.line + 1, Err: err}
		}
		return false
	}
	r.line++

	rec, err := r.decode(strings.TrimSuffix(r.scanner.Text(), "\r"))
	if err != nil {
		r.done = true
		r.err = err
		return false
	}
	r.rec = rec
	return true
}

func (r *Reader) decode(text string) (*flrload.Record, error) {
	rt, err := r.classifier.Classify(text)
	if err != nil {
		return nil, &flrload.LineError{Line: r.line, Err: err}
	}

	l, err := r.registry.LayoutFor(rt)
	if err != nil {
		return nil, &flrload.LineError{Line: r.line, RecordType: rt, Err: err}
	}

	synthetic := r.synthetic[rt]
	rec := flrload.NewRecord(rt, r.line, l.Len()+len(synthetic))
	if err := decodeInto(rec, text, l, r.offset); err != nil {
		return nil, &flrload.LineError{Line: r.line, RecordType: rt, Err: err}
	}

	for _, name := range synthetic {
		switch strings.ToLower(name) {
		case flrload.FieldLineNumber:
			rec.Set(name, flrload.Int(int64(r.line)))
		case flrload.FieldRecordType:
			rec.Set(name, flrload.Text(string(rt)))
		}
	}
	return rec, nil
}

// Record returns the record produced by the last successful Next.
func (r *Reader) Record() *flrload.Record { return r.rec }

// Err returns the error that stopped iteration, or nil at a clean end.
func (r *Reader) Err() error { return r.err }

// Line returns the number of lines consumed so far.
func (r *Reader) Line() int { return r.line }

// All returns an iterator over the remaining records. A terminating error is
// yielded once with a nil record.
func (r *Reader) All() iter.Seq2[*flrload.Record, error] {
	return func(yield func(*flrload.Record, error) bool) {
		for r.Next() {
			if !yield(r.rec, nil) {
				return
			}
		}
		if r.err != nil {
			yield(nil, r.err)
		}
	}
}
