package flrload

import "context"

// Sink is the bulk-writable store that receives flushed batches.
//
// BulkWrite writes rows into target in one operation. columns gives the
// column for each position of every row. With validate set the sink checks
// each row before accepting it; without it the sink performs an unchecked
// bulk load. A failed call must leave no row of that call behind.
type Sink interface {
	BulkWrite(ctx context.Context, target string, columns []string, rows [][]Value, validate bool) (int64, error)
}

// TableSpec describes the table that stores one record type.
type TableSpec struct {
	// Name is the table name, e.g. "households".
	Name string

	// Layout supplies one column per field, typed by field kind and width.
	Layout *Layout

	// Synthetic lists the synthetic fields stored after the layout columns.
	Synthetic []string

	// IndexColumns are indexed after creation (e.g. the serial number).
	IndexColumns []string
}

// SchemaManager creates and drops the tables an import writes to.
// Implementations are stateless; thread safety depends on the DBConnection.
type SchemaManager interface {
	// Exists reports whether the table exists in the current search path.
	Exists(ctx context.Context, conn DBConnection, table string) (bool, error)

	// Create creates the table and its indexes.
	Create(ctx context.Context, conn DBConnection, spec TableSpec) error

	// Drop drops the table if it exists.
	Drop(ctx context.Context, conn DBConnection, table string) error
}
