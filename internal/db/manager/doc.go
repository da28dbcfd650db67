// Package manager creates and drops the tables an import writes to.
//
// Each record type gets one table: a bigserial id, one column per layout
// field, then the synthetic columns. Integer fields map to integer, or to
// bigint when the field is wider than nine digits; text fields map to text.
// Column and table names are lower-cased and quoted with
// pgx.Identifier.Sanitize.
//
//	mgr := manager.New()
//	if err := mgr.Drop(ctx, conn, "people"); err != nil { ... }
//	if err := mgr.Create(ctx, conn, spec); err != nil { ... }
package manager
