package manager

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/flrload/pkg/flrload"
)

const queryTableExists = "SELECT to_regclass($1) IS NOT NULL"

// maxIntegerDigits is the widest integer field that fits a PostgreSQL integer.
const maxIntegerDigits = 9

// Manager implements flrload.SchemaManager. It is stateless.
type Manager struct{}

func New() *Manager { return &Manager{} }

// Exists reports whether table resolves in the current search path.
func (m *Manager) Exists(ctx context.Context, conn flrload.DBConnection, table string) (bool, error) {
	var exists bool
	if err := conn.QueryRow(ctx, queryTableExists, Ident(table)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check table %q: %w", table, err)
	}
	return exists, nil
}

// Create creates the table for spec and its indexes.
func (m *Manager) Create(ctx context.Context, conn flrload.DBConnection, spec flrload.TableSpec) error {
	for _, stmt := range CreateStatements(spec) {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table %q: %w", spec.Name, err)
		}
	}
	return nil
}

// Drop drops table if it exists.
func (m *Manager) Drop(ctx context.Context, conn flrload.DBConnection, table string) error {
	if _, err := conn.Exec(ctx, "DROP TABLE IF EXISTS "+Ident(table)); err != nil {
		return fmt.Errorf("failed to drop table %q: %w", table, err)
	}
	return nil
}

// CreateStatements returns the CREATE TABLE statement followed by one
// CREATE INDEX per index column.
func CreateStatements(spec flrload.TableSpec) []string {
	cols := []string{"id bigserial PRIMARY KEY"}
	if spec.Layout != nil {
		for _, f := range spec.Layout.Fields() {
			cols = append(cols, Ident(f.Name)+" "+ColumnType(f))
		}
	}
	for _, name := range spec.Synthetic {
		cols = append(cols, Ident(name)+" "+syntheticType(name))
	}

	stmts := []string{fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", Ident(spec.Name), strings.Join(cols, ",\n  "))}
	for _, col := range spec.IndexColumns {
		index := strings.ToLower(spec.Name + "_" + col + "_idx")
		stmts = append(stmts, fmt.Sprintf("CREATE INDEX %s ON %s (%s)", Ident(index), Ident(spec.Name), Ident(col)))
	}
	return stmts
}

// ColumnType returns the PostgreSQL type of a layout field.
func ColumnType(f flrload.Field) string {
	switch {
	case f.Kind == flrload.KindText:
		return "text"
	case f.Range.Width() > maxIntegerDigits:
		return "bigint"
	default:
		return "integer"
	}
}

func syntheticType(name string) string {
	if strings.EqualFold(name, flrload.FieldRecordType) {
		return "text"
	}
	return "integer"
}

// Ident quotes a name as a lower-case identifier, so that LINE_NUMBER,
// line_number and Line_Number all refer to the same column.
func Ident(name string) string {
	return pgx.Identifier{strings.ToLower(name)}.Sanitize()
}

var _ flrload.SchemaManager = (*Manager)(nil)
