//revive:disable-next-line:var-naming // Package name "types" avoids circular imports.
package types

// TableRef is a table registered in one query under a generated alias.
// It is created by From/Join and never changes afterwards.
type TableRef struct {
	name   string
	alias  string
	fields []string
}

// NewTableRef creates a table reference. The field slice is copied.
func NewTableRef(name, alias string, fields []string) TableRef {
	return TableRef{
		name:   name,
		alias:  alias,
		fields: append([]string(nil), fields...),
	}
}

// Name returns the table name (unquoted).
func (t TableRef) Name() string {
	return t.name
}

// Alias returns the generated alias.
func (t TableRef) Alias() string {
	return t.alias
}

// Fields returns a copy of the table's declared fields in schema order.
func (t TableRef) Fields() []string {
	return append([]string(nil), t.fields...)
}

// HasField reports whether field is declared by the table.
func (t TableRef) HasField(field string) bool {
	for _, f := range t.fields {
		if f == field {
			return true
		}
	}
	return false
}
