// Package memory keeps written batches in memory. It backs dry runs and
// tests that need a sink without a database.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/vvka-141/flrload/pkg/flrload"
)

// Table is what one target has received.
type Table struct {
	Columns []string
	Rows    [][]flrload.Value
	Count   int64
	Batches int
}

// Sink implements flrload.Sink. Safe for concurrent use.
type Sink struct {
	mu     sync.Mutex
	tables map[string]*Table
	keep   bool
}

// New returns a sink. With keepRows false only counts are kept.
func New(keepRows bool) *Sink {
	return &Sink{tables: make(map[string]*Table), keep: keepRows}
}

// BulkWrite records the batch. With validate set it rejects a batch whose
// columns differ from earlier batches of the same target, or a row whose
// width differs from the column list.
func (s *Sink) BulkWrite(ctx context.Context, target string, columns []string, rows [][]flrload.Value, validate bool) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(target)
	t, ok := s.tables[key]
	if !ok {
		t = &Table{Columns: slices.Clone(columns)}
	}

	if validate {
		if ok && !slices.EqualFunc(t.Columns, columns, strings.EqualFold) {
			return 0, fmt.Errorf("%s: columns %v differ from %v", target, columns, t.Columns)
		}
		for i, row := range rows {
			if len(row) != len(columns) {
				return 0, fmt.Errorf("%s: row %d has %d values for %d columns", target, i+1, len(row), len(columns))
			}
		}
	}

	if s.keep {
		for _, row := range rows {
			t.Rows = append(t.Rows, slices.Clone(row))
		}
	}
	t.Count += int64(len(rows))
	t.Batches++
	s.tables[key] = t
	return int64(len(rows)), nil
}

// Table returns a copy of what target has received, or nil.
func (s *Sink) Table(target string) *Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[strings.ToLower(target)]
	if !ok {
		return nil
	}
	return &Table{Columns: slices.Clone(t.Columns), Rows: slices.Clone(t.Rows), Count: t.Count, Batches: t.Batches}
}

// Targets lists the targets written so far.
func (s *Sink) Targets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.tables))
	for k := range s.tables {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var _ flrload.Sink = (*Sink)(nil)
