// Package types contains the core contracts shared by the query builder, the
// schema providers and the execution primitives.
// They live apart from the database package to avoid import cycles and to
// keep them easy to fake in tests.
//
//nolint:revive // Package name "types" is intentionally generic to avoid circular
package types

import "context"

// Vendor identifies a SQL dialect. It is selected once per builder.
type Vendor = string

const (
	MySQL  Vendor = "mysql"
	MSSQL  Vendor = "mssql"
	SQLite Vendor = "sqlite"
)

// Row is a single result row keyed by the rendered (possibly aliased) column name.
type Row = map[string]any

// Executor is the execution primitive: it sends SQL plus an ordered parameter
// list and returns the resulting rows. Implementations must preserve
// parameter order and key columns by their rendered names.
type Executor interface {
	Execute(ctx context.Context, query string, args []any) ([]Row, error)
}

// SchemaProvider maps table names to their persisted fields and builds
// table-row objects from field data.
//
// FieldsOf returns the ordered field list of table, or an error matching
// ErrUnknownTable when the table cannot be resolved.
// Construct builds the row object for table from a field → value mapping.
// Implementations must be safe for concurrent reads.
type SchemaProvider interface {
	FieldsOf(table string) ([]string, error)
	Construct(table string, fields map[string]any) (any, error)
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, query string, args []any) ([]Row, error)

// Execute calls f(ctx, query, args).
func (f ExecutorFunc) Execute(ctx context.Context, query string, args []any) ([]Row, error) {
	return f(ctx, query, args)
}

// Connection is an Executor backed by a pooled database handle.
type Connection interface {
	Executor

	// Health pings the database.
	Health(ctx context.Context) error
	// Stats reports pool statistics.
	Stats() (map[string]any, error)
	Close() error
	// DatabaseType returns the vendor the connection talks to.
	DatabaseType() string
}
