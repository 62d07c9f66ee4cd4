package querydef

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gaborage/bricksql/database"
)

var operators = map[string]database.Operator{
	"=":       database.OpEq,
	"eq":      database.OpEq,
	"<=":      database.OpLte,
	"lte":     database.OpLte,
	"<":       database.OpLt,
	"lt":      database.OpLt,
	">":       database.OpGt,
	"gt":      database.OpGt,
	">=":      database.OpGte,
	"gte":     database.OpGte,
	"!=":      database.OpNotEq,
	"<>":      database.OpNotEq,
	"ne":      database.OpNotEq,
	"in":      database.OpIn,
	"not in":  database.OpNotIn,
	"not_in":  database.OpNotIn,
	"is null": database.OpIsNull,
	"is_null": database.OpIsNull,
}

var joinKinds = map[string]database.JoinKind{
	"":      database.JoinPlain,
	"plain": database.JoinPlain,
	"inner": database.JoinInner,
	"left":  database.JoinLeft,
	"right": database.JoinRight,
	"outer": database.JoinOuter,
}

// ParseOperator maps a symbol ("=", "!=", ...) or name ("eq", "not_in",
// "is null", ...) to an operator. An empty string means "=".
func ParseOperator(s string) (database.Operator, error) {
	key := strings.Join(strings.Fields(strings.ToLower(s)), " ")
	if key == "" {
		return database.OpEq, nil
	}
	op, ok := operators[key]
	if !ok {
		return "", fmt.Errorf("unknown operator %q", s)
	}
	return op, nil
}

// ParseJoinKind maps inner, left, right, outer or plain (or empty) to a join kind.
func ParseJoinKind(s string) (database.JoinKind, error) {
	kind, ok := joinKinds[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown join kind %q", s)
	}
	return kind, nil
}

// Apply replays d onto s in builder order: tables, field restrictions,
// expressions, WHERE, GROUP BY, HAVING, ORDER BY and pagination.
// It stops at the first failing call.
func (d *Definition) Apply(s *database.Select) error {
	for _, table := range d.From {
		if err := s.From(table); err != nil {
			return err
		}
	}

	for i, j := range d.Joins {
		if err := applyJoin(s, j); err != nil {
			return fmt.Errorf("joins[%d]: %w", i, err)
		}
	}

	tables := make([]string, 0, len(d.Fields))
	for table := range d.Fields {
		tables = append(tables, table)
	}
	slices.Sort(tables)
	for _, table := range tables {
		if err := s.SelectFields(table, d.Fields[table]...); err != nil {
			return err
		}
	}

	for _, expr := range d.Expressions {
		if err := s.AddSelectExpression(expr); err != nil {
			return err
		}
	}

	where := clause{add: s.WhereConnected, open: s.WhereGroupStart, close: s.WhereGroupEnd}
	if err := where.apply(d.Where, nil); err != nil {
		return err
	}

	for _, c := range d.Group {
		if err := s.GroupBy(c.Table, c.Field); err != nil {
			return err
		}
	}

	having := clause{add: s.HavingConnected, open: s.HavingGroupStart, close: s.HavingGroupEnd}
	if err := having.apply(d.Having, nil); err != nil {
		return err
	}

	for _, o := range d.Order {
		dir := database.Direction(o.Dir)
		if o.Dir == "" {
			dir = database.Asc
		}
		if err := s.Order(o.Table, o.Field, dir); err != nil {
			return err
		}
	}

	if d.Limit != nil {
		if err := s.Limit(d.Limit.Limit, d.Limit.Offset); err != nil {
			return err
		}
	}
	return nil
}

func applyJoin(s *database.Select, j Join) error {
	kind, err := ParseJoinKind(j.Kind)
	if err != nil {
		return err
	}
	op, err := ParseOperator(j.Op)
	if err != nil {
		return err
	}
	return s.JoinOn(kind, j.Left, j.Right, j.LeftField, j.RightField, op)
}

// clause feeds predicates to either the WHERE or the HAVING side of a Select.
type clause struct {
	add   func(conn database.Connector, table, field string, op database.Operator, value any) error
	open  func()
	close func()
}

// apply adds preds in order. A group's own Or flag connects the group to
// what precedes it, so it overrides the flag of the group's first member.
func (c clause) apply(preds []Predicate, lead *bool) error {
	for i, p := range preds {
		or := p.Or
		if i == 0 && lead != nil {
			or = *lead
		}

		if len(p.Group) > 0 {
			c.open()
			if err := c.apply(p.Group, &or); err != nil {
				return err
			}
			c.close()
			continue
		}

		op, err := ParseOperator(p.Op)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", p.Table, p.Field, err)
		}
		conn := database.And
		if or {
			conn = database.Or
		}
		if err := c.add(conn, p.Table, p.Field, op, p.Value); err != nil {
			return err
		}
	}
	return nil
}
