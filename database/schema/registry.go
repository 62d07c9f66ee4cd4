// Package schema provides SchemaProvider implementations: a Registry of
// tables with explicit constructors, struct registration driven by `db`
// tags, and Record-backed tables declared in configuration.
package schema

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/gaborage/bricksql/database/types"
)

// Constructor builds the row object of one table from a field → value map.
// Fields absent from the result set are absent from the map.
type Constructor func(fields map[string]any) (any, error)

// Sentinel errors for registration problems.
var (
	ErrEmptyTableName = errors.New("table name cannot be empty")
	ErrNoFields       = errors.New("table must declare at least one field")
	ErrDuplicateField = errors.New("duplicate field")
	ErrInvalidField   = errors.New("invalid field name")
	ErrNilConstructor = errors.New("constructor cannot be nil")
)

type table struct {
	fields    []string
	construct Constructor
}

// Registry is a concurrency-safe SchemaProvider. Registering a table name
// twice replaces the earlier definition.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]table
}

var _ types.SchemaProvider = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]table)}
}

// Register declares table with its ordered persisted fields and constructor.
func (r *Registry) Register(name string, fields []string, ctor Constructor) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyTableName
	}
	if ctor == nil {
		return fmt.Errorf("register %s: %w", name, ErrNilConstructor)
	}
	if err := validateFields(fields); err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[name] = table{fields: slices.Clone(fields), construct: ctor}
	return nil
}

// FieldsOf returns a copy of the ordered field list of table.
func (r *Registry) FieldsOf(name string) ([]string, error) {
	t, ok := r.get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownTable, name)
	}
	return slices.Clone(t.fields), nil
}

// Construct builds the row object for table from fields.
func (r *Registry) Construct(name string, fields map[string]any) (any, error) {
	t, ok := r.get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownTable, name)
	}
	return t.construct(fields)
}

// Tables returns the registered table names in sorted order.
func (r *Registry) Tables() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *Registry) get(name string) (table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[name]
	return t, ok
}

func validateFields(fields []string) error {
	if len(fields) == 0 {
		return ErrNoFields
	}
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if err := validateFieldName(f); err != nil {
			return err
		}
		if _, dup := seen[f]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateField, f)
		}
		seen[f] = struct{}{}
	}
	return nil
}

// validateFieldName rejects names that cannot be a plain column identifier.
// Field names are rendered into SQL and into "<alias>_<field>" labels.
func validateFieldName(field string) error {
	if field == "" {
		return fmt.Errorf("%w: empty", ErrInvalidField)
	}
	for _, d := range []string{";", "--", "/*", "*/", `"`, "'", "`", "[", "]", " ", "."} {
		if strings.Contains(field, d) {
			return fmt.Errorf("%w: %q contains %q", ErrInvalidField, field, d)
		}
	}
	return nil
}
