package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/flrload/pkg/flrload"
)

const queryColumns = `
	SELECT column_name::text, data_type::text, is_nullable = 'YES'
	FROM information_schema.columns
	WHERE table_schema = current_schema() AND table_name = $1`

type column struct {
	Name     string
	Type     string
	Nullable bool
}

func (s *Sink) columns(ctx context.Context, table string) (map[string]column, error) {
	if defs, ok := s.catalog[table]; ok {
		return defs, nil
	}

	rows, err := s.conn.Query(ctx, queryColumns, table)
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", table, err)
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByPos[column])
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", table, err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("table %s not found in current schema: %w", table, ErrRowRejected)
	}

	defs := make(map[string]column, len(list))
	for _, c := range list {
		defs[c.Name] = c
	}
	s.catalog[table] = defs
	return defs, nil
}

// checkRows rejects the batch if any value would not fit its column.
func checkRows(table string, cols []string, rows [][]flrload.Value, defs map[string]column) error {
	var errs []error
	for _, c := range cols {
		if _, ok := defs[c]; !ok {
			errs = append(errs, fmt.Errorf("%s has no column %s", table, c))
		}
	}
	if len(errs) > 0 {
		sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
		return fmt.Errorf("%w: %w", ErrRowRejected, errors.Join(errs...))
	}

	bad := 0
	for r, row := range rows {
		for i, v := range row {
			if err := fits(v, defs[cols[i]]); err != nil {
				errs = append(errs, fmt.Errorf("row %d column %s: %w", r+1, cols[i], err))
				bad++
				break
			}
		}
		if bad == maxReportedRows {
			break
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrRowRejected, errors.Join(errs...))
	}
	return nil
}

func fits(v flrload.Value, c column) error {
	if v.IsEmpty() {
		if !c.Nullable {
			return errors.New("null in NOT NULL column")
		}
		return nil
	}

	n, isInt := v.Int()
	switch c.Type {
	case "smallint":
		return fitsRange(v, isInt, n, math.MinInt16, math.MaxInt16)
	case "integer":
		return fitsRange(v, isInt, n, math.MinInt32, math.MaxInt32)
	case "bigint", "numeric":
		return fitsRange(v, isInt, n, math.MinInt64, math.MaxInt64)
	default:
		return nil
	}
}

func fitsRange(v flrload.Value, isInt bool, n, lo, hi int64) error {
	if !isInt {
		return fmt.Errorf("text %q in numeric column", v.String())
	}
	if n < lo || n > hi {
		return fmt.Errorf("%d out of range", n)
	}
	return nil
}
