package services

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/flrload/pkg/flrload"
)

type mockConnector struct {
	pool  *pgxpool.Pool
	err   error
	calls int
}

func (m *mockConnector) Connect(_ context.Context) (*pgxpool.Pool, error) {
	m.calls++
	return m.pool, m.err
}

type mockSchemaManager struct {
	exists    bool
	existsErr error
	createErr error
	dropErr   error
	created   []string
	dropped   []string
}

func (m *mockSchemaManager) Exists(_ context.Context, _ flrload.DBConnection, _ string) (bool, error) {
	return m.exists, m.existsErr
}

func (m *mockSchemaManager) Create(_ context.Context, _ flrload.DBConnection, spec flrload.TableSpec) error {
	m.created = append(m.created, spec.Name)
	return m.createErr
}

func (m *mockSchemaManager) Drop(_ context.Context, _ flrload.DBConnection, table string) error {
	m.dropped = append(m.dropped, table)
	return m.dropErr
}

type mockObserver struct {
	mu      sync.Mutex
	decoded map[flrload.RecordType]int
	flushed map[string]int
}

func newMockObserver() *mockObserver {
	return &mockObserver{decoded: map[flrload.RecordType]int{}, flushed: map[string]int{}}
}

func (m *mockObserver) RecordDecoded(rt flrload.RecordType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decoded[rt]++
}

func (m *mockObserver) BatchFlushed(target string, rows int, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		m.flushed[target] += rows
	}
}

type mockLogger struct{}

func (m *mockLogger) Verbose(_ string, _ ...interface{}) {}
func (m *mockLogger) Info(_ string, _ ...interface{})    {}
func (m *mockLogger) Error(_ string, _ ...interface{})   {}
