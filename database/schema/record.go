package schema

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/gaborage/bricksql/config"
)

// Record is the row object of a table declared without a Go type.
// Fields keeps the declared order; Values holds what the row returned.
type Record struct {
	Table  string
	Fields []string
	Values map[string]any
}

// Get returns the value of field and whether the row carried it.
func (r *Record) Get(field string) (any, bool) {
	v, ok := r.Values[field]
	return v, ok
}

// MarshalJSON encodes the record as an object whose keys follow Fields.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, f := range r.Fields {
		v, ok := r.Values[f]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false

		key, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RecordConstructor returns a Constructor producing *Record values for table.
func RecordConstructor(table string, fields []string) Constructor {
	declared := slices.Clone(fields)
	return func(values map[string]any) (any, error) {
		rec := &Record{
			Table:  table,
			Fields: declared,
			Values: make(map[string]any, len(values)),
		}
		for k, v := range values {
			rec.Values[k] = v
		}
		return rec, nil
	}
}

// FromConfig builds a Registry from the tables declared in cfg. Every table
// hydrates into *Record.
func FromConfig(cfg config.SchemaConfig) (*Registry, error) {
	r := NewRegistry()
	if err := RegisterConfig(r, cfg); err != nil {
		return nil, err
	}
	return r, nil
}

// RegisterConfig adds the tables declared in cfg to r.
func RegisterConfig(r *Registry, cfg config.SchemaConfig) error {
	names := make([]string, 0, len(cfg.Tables))
	for name := range cfg.Tables {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		fields := cfg.Tables[name]
		if err := r.Register(name, fields, RecordConstructor(name, fields)); err != nil {
			return err
		}
	}
	return nil
}
