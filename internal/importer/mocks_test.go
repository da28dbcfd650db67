package importer

import (
	"context"
	"sync"
	"time"

	"github.com/vvka-141/flrload/pkg/flrload"
)

type bulkCall struct {
	target   string
	columns  []string
	rows     [][]flrload.Value
	validate bool
}

// mockSink records every BulkWrite and fails the calls listed in failOn
// (1-based).
type mockSink struct {
	mu     sync.Mutex
	calls  []bulkCall
	failOn map[int]error
}

func (m *mockSink) BulkWrite(ctx context.Context, target string, columns []string, rows [][]flrload.Value, validate bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, bulkCall{target: target, columns: columns, rows: rows, validate: validate})
	if err := m.failOn[len(m.calls)]; err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

type flush struct {
	target string
	rows   int
	err    error
}

type mockObserver struct {
	flushes []flush
}

func (m *mockObserver) BatchFlushed(target string, rows int, elapsed time.Duration, err error) {
	m.flushes = append(m.flushes, flush{target: target, rows: rows, err: err})
}
