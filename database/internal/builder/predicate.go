package builder

import (
	"fmt"
	"reflect"
	"strings"

	dbtypes "github.com/gaborage/bricksql/database/types"
)

// Operator is a comparison operator usable in WHERE, HAVING and JOIN conditions.
type Operator string

const (
	OpEq     Operator = "="
	OpLte    Operator = "<="
	OpLt     Operator = "<"
	OpGt     Operator = ">"
	OpGte    Operator = ">="
	OpNotEq  Operator = "!="
	OpIn     Operator = "IN"
	OpNotIn  Operator = "NOT IN"
	OpIsNull Operator = "IS NULL"
)

// Valid reports whether op is one of the supported operators.
func (op Operator) Valid() bool {
	switch op {
	case OpEq, OpLte, OpLt, OpGt, OpGte, OpNotEq, OpIn, OpNotIn, OpIsNull:
		return true
	default:
		return false
	}
}

// Connector joins a predicate to the one before it.
type Connector string

const (
	And Connector = "AND"
	Or  Connector = "OR"
)

type tokenKind int

const (
	tokenPredicate tokenKind = iota
	tokenOpen
	tokenClose
)

type token struct {
	kind      tokenKind
	text      string
	connector Connector
}

// predicateBuilder accumulates a WHERE or HAVING clause as an ordered token
// stream of predicates and free-floating parenthesis markers, together with
// the parameters the predicates bind, in call order.
//
// Parentheses are never balanced or validated here; see balanced().
type predicateBuilder struct {
	tokens []token
	args   []any
}

// add appends a predicate for an already qualified column. On error nothing is appended.
func (pb *predicateBuilder) add(column string, op Operator, value any, conn Connector) error {
	switch conn {
	case "":
		conn = And
	case And, Or:
	default:
		return fmt.Errorf("%w: connector %q", dbtypes.ErrUnknownOperator, conn)
	}

	text, args, err := buildPredicate(column, op, value)
	if err != nil {
		return err
	}

	pb.tokens = append(pb.tokens, token{kind: tokenPredicate, text: text, connector: conn})
	pb.args = append(pb.args, args...)
	return nil
}

// open inserts a "(" marker at the current position.
func (pb *predicateBuilder) open() {
	pb.tokens = append(pb.tokens, token{kind: tokenOpen, text: "("})
}

// close inserts a ")" marker at the current position.
func (pb *predicateBuilder) close() {
	pb.tokens = append(pb.tokens, token{kind: tokenClose, text: ")"})
}

func (pb *predicateBuilder) empty() bool {
	return len(pb.tokens) == 0
}

// balanced reports whether every ")" closes an earlier "(" and none stay open.
func (pb *predicateBuilder) balanced() bool {
	depth := 0
	for _, t := range pb.tokens {
		switch t.kind {
		case tokenOpen:
			depth++
		case tokenClose:
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// SQL renders the clause body (without the WHERE/HAVING keyword).
// The first predicate carries no connector. Later predicates put their
// connector ahead of any "(" markers queued directly before them, so
// "a", "(", OR "b", AND "c", ")" renders as "a OR ( b AND c )".
func (pb *predicateBuilder) SQL() string {
	parts := make([]string, 0, len(pb.tokens)*2)
	var pending []string
	seenOperand := false

	for _, t := range pb.tokens {
		switch t.kind {
		case tokenOpen:
			pending = append(pending, t.text)
		case tokenClose:
			parts = append(parts, pending...)
			pending = pending[:0]
			parts = append(parts, t.text)
		case tokenPredicate:
			if seenOperand {
				parts = append(parts, string(t.connector))
			}
			parts = append(parts, pending...)
			pending = pending[:0]
			parts = append(parts, t.text)
			seenOperand = true
		}
	}
	parts = append(parts, pending...)

	return strings.Join(parts, " ")
}

// Args returns a copy of the bound parameters in placeholder order.
func (pb *predicateBuilder) Args() []any {
	return append([]any(nil), pb.args...)
}

// buildPredicate renders one predicate fragment and the parameters it binds.
//
//	IS NULL            → "col IS NULL", no parameters
//	IN / NOT IN scalar → "col = ?" / "col != ?"
//	IN / NOT IN list   → "col IN (?,?,...)", one parameter per element
//	everything else    → "col op ?"
func buildPredicate(column string, op Operator, value any) (string, []any, error) {
	if !op.Valid() {
		return "", nil, fmt.Errorf("%w: %q", dbtypes.ErrUnknownOperator, op)
	}

	if op == OpIsNull {
		return column + " IS NULL", nil, nil
	}

	if op == OpIn || op == OpNotIn {
		// A nil list is an empty list; a nil []byte is a null scalar.
		if values, isList := expandList(value); isList {
			if len(values) == 0 {
				return "", nil, fmt.Errorf("%w: %s %s", dbtypes.ErrEmptyInList, column, op)
			}
			placeholders := strings.TrimSuffix(strings.Repeat("?,", len(values)), ",")
			return column + " " + string(op) + " (" + placeholders + ")", values, nil
		}
	}

	if isNull(value) {
		return "", nil, fmt.Errorf("%w: %s %s", dbtypes.ErrNullNotAllowed, column, op)
	}

	switch op {
	case OpIn:
		return column + " " + string(OpEq) + " ?", []any{value}, nil
	case OpNotIn:
		return column + " " + string(OpNotEq) + " ?", []any{value}, nil
	}

	return column + " " + string(op) + " ?", []any{value}, nil
}

// isNull reports whether value is nil or a nil pointer, map, slice or interface.
func isNull(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}

// expandList flattens slices and arrays into []any. []byte is a scalar.
func expandList(value any) ([]any, bool) {
	if _, ok := value.([]byte); ok {
		return nil, false
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, v.Len())
		for i := range out {
			out[i] = v.Index(i).Interface()
		}
		return out, true
	default:
		return nil, false
	}
}
