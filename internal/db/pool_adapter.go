package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/flrload/pkg/flrload"
)

// Querier is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Adapter exposes a pool or transaction as a flrload.DBConnection.
type Adapter struct {
	q Querier
}

func NewAdapter(q Querier) *Adapter { return &Adapter{q: q} }

func (a *Adapter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return a.q.Exec(ctx, sql, args...)
}

func (a *Adapter) QueryRow(ctx context.Context, sql string, args ...any) flrload.Row {
	return a.q.QueryRow(ctx, sql, args...)
}

var _ flrload.DBConnection = (*Adapter)(nil)
