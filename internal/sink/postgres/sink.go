// Package postgres writes import batches into PostgreSQL tables.
//
// Unchecked batches go through COPY. Validated batches are first checked
// against the table's catalogue entry and then inserted with one pgx.Batch
// inside a transaction. Either way a failed batch leaves no rows behind.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/flrload/internal/db/manager"
	"github.com/vvka-141/flrload/pkg/flrload"
)

// ErrRowRejected marks a batch that failed validation before reaching the table.
var ErrRowRejected = errors.New("row rejected")

// maxReportedRows caps how many bad rows one error lists.
const maxReportedRows = 10

// Conn is the part of a pool or transaction the sink uses.
// *pgxpool.Pool and pgx.Tx both satisfy it.
type Conn interface {
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Sink implements flrload.Sink. It caches table definitions and is not safe
// for concurrent use.
type Sink struct {
	conn    Conn
	catalog map[string]map[string]column
}

func New(conn Conn) *Sink {
	return &Sink{conn: conn, catalog: make(map[string]map[string]column)}
}

// BulkWrite implements flrload.Sink.
func (s *Sink) BulkWrite(ctx context.Context, target string, columns []string, rows [][]flrload.Value, validate bool) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = strings.ToLower(c)
	}
	table := strings.ToLower(target)

	if !validate {
		n, err := s.conn.CopyFrom(ctx, pgx.Identifier{table}, cols, &rowSource{rows: rows, idx: -1})
		if err != nil {
			return 0, fmt.Errorf("copy into %s: %w", table, err)
		}
		return n, nil
	}

	defs, err := s.columns(ctx, table)
	if err != nil {
		return 0, err
	}
	if err := checkRows(table, cols, rows, defs); err != nil {
		return 0, err
	}
	return s.insert(ctx, table, cols, rows)
}

func (s *Sink) insert(ctx context.Context, table string, cols []string, rows [][]flrload.Value) (int64, error) {
	idents := make([]string, len(cols))
	params := make([]string, len(cols))
	for i, c := range cols {
		idents[i] = manager.Ident(c)
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		manager.Ident(table), strings.Join(idents, ", "), strings.Join(params, ", "))

	batch := &pgx.Batch{}
	for _, row := range rows {
		args := make([]any, len(row))
		for i, v := range row {
			args[i] = v.Any()
		}
		batch.Queue(sql, args...)
	}

	err := pgx.BeginFunc(ctx, s.conn, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", table, err)
	}
	return int64(len(rows)), nil
}

type rowSource struct {
	rows [][]flrload.Value
	idx  int
	buf  []any
}

func (r *rowSource) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *rowSource) Values() ([]any, error) {
	row := r.rows[r.idx]
	if cap(r.buf) < len(row) {
		r.buf = make([]any, len(row))
	}
	r.buf = r.buf[:len(row)]
	for i, v := range row {
		r.buf[i] = v.Any()
	}
	return r.buf, nil
}

func (r *rowSource) Err() error { return nil }

var _ flrload.Sink = (*Sink)(nil)
