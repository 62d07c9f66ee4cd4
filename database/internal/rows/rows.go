// Package rows turns database/sql result sets into column-keyed rows.
package rows

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gaborage/bricksql/database/types"
)

// Querier is the subset of *sql.DB (and *sql.Tx) used to run a query.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Query runs query on q and scans every returned row.
func Query(ctx context.Context, q Querier, query string, args []any) ([]types.Row, error) {
	rs, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return Scan(rs)
}

// Scan reads all remaining rows from rs and closes it. Each row is keyed by
// the column name as returned by the driver. Byte slices are copied; for
// columns that are not binary they are converted to strings.
func Scan(rs *sql.Rows) ([]types.Row, error) {
	defer rs.Close()

	columns, err := rs.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	binary := make([]bool, len(columns))
	if colTypes, err := rs.ColumnTypes(); err == nil {
		for i, ct := range colTypes {
			binary[i] = isBinary(ct.DatabaseTypeName())
		}
	}

	out := make([]types.Row, 0)
	values := make([]any, len(columns))
	targets := make([]any, len(columns))
	for i := range values {
		targets[i] = &values[i]
	}

	for rs.Next() {
		if err := rs.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(types.Row, len(columns))
		for i, name := range columns {
			row[name] = normalize(values[i], binary[i])
		}
		out = append(out, row)
	}

	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return out, nil
}

// normalize detaches driver-owned buffers from the scanned value.
func normalize(v any, binary bool) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	if binary {
		return append([]byte(nil), b...)
	}
	return string(b)
}

func isBinary(typeName string) bool {
	name := strings.ToUpper(typeName)
	return strings.Contains(name, "BLOB") ||
		strings.Contains(name, "BINARY") ||
		name == "IMAGE" ||
		name == "BIT"
}
