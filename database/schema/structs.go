package schema

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

const tagName = "db"

// RegisterStruct declares table with the `db`-tagged fields of T, in
// declaration order, and hydrates rows into *T.
//
//	type User struct {
//	    ID     int64  `db:"id"`
//	    Name   string `db:"name"`
//	    RoleID int64  `db:"role_id"`
//	}
//
//	err := schema.RegisterStruct[User](registry, "Users")
//
// Values are converted weakly, so driver representations such as []byte for
// text or int64 for booleans land in the natural Go field type.
func RegisterStruct[T any](r *Registry, table string) error {
	fields, err := structFields(reflect.TypeFor[T]())
	if err != nil {
		return fmt.Errorf("register %s: %w", table, err)
	}
	return r.Register(table, fields, decodeInto[T])
}

// structFields lists the db tags of t's exported fields. Fields tagged "-"
// or untagged are skipped.
func structFields(t reflect.Type) ([]string, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected a struct type, got %s", t.Kind())
	}

	fields := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get(tagName)
		if tag == "" || tag == "-" {
			continue
		}
		if err := validateFieldName(tag); err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", t.Name(), f.Name, err)
		}
		fields = append(fields, tag)
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields with `db` tags found in struct %s", t.Name())
	}
	return fields, nil
}

func decodeInto[T any](fields map[string]any) (any, error) {
	out := new(T)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          tagName,
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(fields); err != nil {
		return nil, err
	}
	return out, nil
}
