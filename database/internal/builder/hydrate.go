package builder

import (
	"fmt"

	dbtypes "github.com/gaborage/bricksql/database/types"
)

// Entry is one table's row object within a hydrated record.
type Entry struct {
	Table  string
	Alias  string
	Object any
}

// Record is one result row. In model mode Entries holds one object per
// registered table in registration order; in raw mode Values holds the row
// exactly as the executor returned it.
type Record struct {
	Entries []Entry
	Values  dbtypes.Row
}

// Object returns the first entry built for table.
func (r Record) Object(table string) (any, bool) {
	for _, e := range r.Entries {
		if e.Table == table {
			return e.Object, true
		}
	}
	return nil, false
}

// Result is the hydrated output of one Fetch call.
type Result struct {
	Records []Record
	raw     bool
}

// Raw reports whether the result holds flat rows instead of table objects.
func (r *Result) Raw() bool {
	return r.raw
}

// Len returns the number of records.
func (r *Result) Len() int {
	return len(r.Records)
}

// hydrator rebuilds per-table objects from rows whose columns are keyed
// "<alias>_<field>".
type hydrator struct {
	schema   dbtypes.SchemaProvider
	tables   []dbtypes.TableRef
	selected map[string][]string
	raw      bool
}

func (h hydrator) hydrate(rows []dbtypes.Row) (*Result, error) {
	result := &Result{Records: make([]Record, 0, len(rows)), raw: h.raw}

	if h.raw {
		for _, row := range rows {
			result.Records = append(result.Records, Record{Values: row})
		}
		return result, nil
	}

	for i, row := range rows {
		entries := make([]Entry, 0, len(h.tables))
		for _, ref := range h.tables {
			fields := selectedFields(ref, h.selected)
			data := make(map[string]any, len(fields))
			for _, f := range fields {
				if v, ok := row[columnKey(ref.Alias(), f)]; ok {
					data[f] = v
				}
			}
			obj, err := h.schema.Construct(ref.Name(), data)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d, table %s: %w", dbtypes.ErrHydrationFailed, i, ref.Name(), err)
			}
			entries = append(entries, Entry{Table: ref.Name(), Alias: ref.Alias(), Object: obj})
		}
		result.Records = append(result.Records, Record{Entries: entries})
	}
	return result, nil
}

// selectedFields returns the SelectFields restriction for ref, or all its fields.
func selectedFields(ref dbtypes.TableRef, selected map[string][]string) []string {
	if fields, ok := selected[ref.Alias()]; ok {
		return fields
	}
	return ref.Fields()
}

// columnKey is the result-set column name for a table field.
func columnKey(alias, field string) string {
	return alias + "_" + field
}
