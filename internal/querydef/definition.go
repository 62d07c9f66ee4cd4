// Package querydef reads SELECT definitions from YAML and replays them onto a
// database.Select. It backs the bricksql CLI.
//
//	from: Users
//	joins:
//	  - kind: left
//	    left: Users
//	    right: Roles
//	    left_field: role_id
//	    right_field: id
//	where:
//	  - {table: Users, field: id, op: "=", value: 7}
//	  - or: true
//	    group:
//	      - {table: Roles, field: title, op: in, value: [admin, ops]}
//	      - {table: Roles, field: id, op: is_null}
//	order:
//	  - {table: Users, field: name, dir: desc}
//	limit: {limit: 10, offset: 0}
package querydef

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Definition is one SELECT statement described declaratively.
type Definition struct {
	From        Tables              `yaml:"from" validate:"min=1,dive,required"`
	Joins       []Join              `yaml:"joins" validate:"dive"`
	Fields      map[string][]string `yaml:"fields" validate:"dive,keys,required,endkeys,min=1,dive,required"`
	Expressions []string            `yaml:"expressions" validate:"dive,required"`
	Where       []Predicate         `yaml:"where" validate:"dive"`
	Group       []Column            `yaml:"group" validate:"dive"`
	Having      []Predicate         `yaml:"having" validate:"dive"`
	Order       []Order             `yaml:"order" validate:"dive"`
	Limit       *Page               `yaml:"limit"`
}

// Join describes one Join/JoinOn call.
type Join struct {
	Kind       string `yaml:"kind"`
	Left       string `yaml:"left" validate:"required"`
	Right      string `yaml:"right" validate:"required"`
	LeftField  string `yaml:"left_field" validate:"required"`
	RightField string `yaml:"right_field"`
	Op         string `yaml:"op"`
}

// Predicate is a WHERE/HAVING condition or, when Group is set, a
// parenthesized list of conditions. Or connects it to the previous entry.
type Predicate struct {
	Table string      `yaml:"table" validate:"required_without=Group"`
	Field string      `yaml:"field" validate:"required_without=Group"`
	Op    string      `yaml:"op"`
	Value any         `yaml:"value"`
	Or    bool        `yaml:"or"`
	Group []Predicate `yaml:"group" validate:"dive"`
}

// Column names a table field.
type Column struct {
	Table string `yaml:"table" validate:"required"`
	Field string `yaml:"field" validate:"required"`
}

// Order is one ORDER BY entry. Dir defaults to ASC.
type Order struct {
	Table string `yaml:"table" validate:"required"`
	Field string `yaml:"field" validate:"required"`
	Dir   string `yaml:"dir"`
}

// Page is the pagination window.
type Page struct {
	Limit  int `yaml:"limit"`
	Offset int `yaml:"offset"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Tables is a list of table names that also accepts a single scalar.
type Tables []string

// UnmarshalYAML implements yaml.Unmarshaler for Tables.
func (t *Tables) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*t = Tables{node.Value}
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*t = list
	return nil
}

// Parse decodes and validates a definition. Unknown keys are rejected.
func Parse(data []byte) (*Definition, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads one definition from r.
func Decode(r io.Reader) (*Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("query definition is empty")
		}
		return nil, fmt.Errorf("failed to parse query definition: %w", err)
	}
	if err := validate.Struct(&def); err != nil {
		return nil, fmt.Errorf("invalid query definition: %w", err)
	}
	return &def, nil
}

// Load reads the definition stored at path.
func Load(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open query definition: %w", err)
	}
	defer f.Close()

	return Decode(f)
}
