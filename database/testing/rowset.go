package testing

import (
	"fmt"

	dbtypes "github.com/gaborage/bricksql/database/types"
)

// RowSet is a fixture of result rows returned by a TestDB expectation.
// Columns are the labels the builder renders, e.g. "A_id".
//
//	rows := NewRowSet("A_id", "A_name", "B_title").
//	    AddRow(7, "Alice", "admin").
//	    AddRow(8, "Bob", nil)
type RowSet struct {
	columns []string
	rows    [][]any
}

// NewRowSet creates an empty RowSet with the given column labels.
func NewRowSet(columns ...string) *RowSet {
	return &RowSet{
		columns: columns,
		rows:    make([][]any, 0),
	}
}

// AddRow appends one row. Panics if the value count does not match the columns.
func (rs *RowSet) AddRow(values ...any) *RowSet {
	if len(values) != len(rs.columns) {
		panic(fmt.Sprintf("AddRow: expected %d values for columns %v, got %d",
			len(rs.columns), rs.columns, len(values)))
	}
	rs.rows = append(rs.rows, values)
	return rs
}

// AddRows appends count rows produced by generator.
func (rs *RowSet) AddRows(count int, generator func(i int) []any) *RowSet {
	for i := 0; i < count; i++ {
		rs.AddRow(generator(i)...)
	}
	return rs
}

// RowCount returns the number of rows.
func (rs *RowSet) RowCount() int {
	return len(rs.rows)
}

// Columns returns the column labels.
func (rs *RowSet) Columns() []string {
	return append([]string(nil), rs.columns...)
}

// Rows materializes the fixture as executor rows. Each call returns fresh maps.
func (rs *RowSet) Rows() []dbtypes.Row {
	out := make([]dbtypes.Row, 0, len(rs.rows))
	for _, values := range rs.rows {
		row := make(dbtypes.Row, len(rs.columns))
		for i, col := range rs.columns {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	return out
}
