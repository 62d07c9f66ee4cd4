package builder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	dbtypes "github.com/gaborage/bricksql/database/types"
)

type fakeRow struct {
	Table  string
	Fields map[string]any
}

// fakeSchema is a fixed SchemaProvider whose constructor records its input.
type fakeSchema struct {
	tables    map[string][]string
	failTable string
}

func newFakeSchema() *fakeSchema {
	return &fakeSchema{tables: map[string][]string{
		"Users": {"id", "name", "role_id"},
		"Roles": {"id", "title"},
		"Posts": {"id", "user_id", "score"},
	}}
}

func (s *fakeSchema) FieldsOf(table string) ([]string, error) {
	fields, ok := s.tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dbtypes.ErrUnknownTable, table)
	}
	return fields, nil
}

func (s *fakeSchema) Construct(table string, fields map[string]any) (any, error) {
	if table == s.failTable {
		return nil, errors.New("constructor exploded")
	}
	return fakeRow{Table: table, Fields: fields}, nil
}

// recordingExecutor captures every call and answers with fixed rows.
type recordingExecutor struct {
	mu    sync.Mutex
	rows  []dbtypes.Row
	err   error
	calls []executedQuery
}

type executedQuery struct {
	sql  string
	args []any
}

func (e *recordingExecutor) Execute(_ context.Context, query string, args []any) ([]dbtypes.Row, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, executedQuery{sql: query, args: args})
	if e.err != nil {
		return nil, e.err
	}
	return e.rows, nil
}
