// Package testing provides an in-memory execution primitive for testing
// code built on bricksql without a database or sqlmock.
//
// TestDB records every statement it receives and answers from expectations
// registered up front:
//
//	db := NewTestDB(dbtypes.MySQL).StrictSQLMatching()
//	db.ExpectQuery("SELECT A.id AS A_id FROM Users A WHERE A.id = ?").
//	    WithArgs(7).
//	    WillReturnRows(NewRowSet("A_id").AddRow(int64(7)))
//
//	q := database.NewSelect(registry, db)
//	...
//	AssertQueryExecuted(t, db, "FROM Users A")
package testing

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	dbtypes "github.com/gaborage/bricksql/database/types"
)

// TestDB is a fake types.Connection driven by expectations.
//
// SQL matching is partial (substring) by default and exact after
// StrictSQLMatching. The first matching expectation wins; expectations are
// reusable unless Once is set.
type TestDB struct {
	vendor      string
	queries     []*QueryExpectation
	queryLog    []QueryCall
	strictMatch bool
	closed      bool
	mu          sync.RWMutex
}

var _ dbtypes.Connection = (*TestDB)(nil)

// QueryCall is one Execute invocation.
type QueryCall struct {
	SQL  string
	Args []any
}

// QueryExpectation defines the response to a matching statement.
type QueryExpectation struct {
	sql      string
	args     []any
	withArgs bool
	rows     *RowSet
	err      error
	delay    time.Duration
	once     bool
	used     int
}

// NewTestDB creates a fake for vendor (dbtypes.MySQL, dbtypes.MSSQL or dbtypes.SQLite).
func NewTestDB(vendor string) *TestDB {
	return &TestDB{vendor: vendor}
}

// StrictSQLMatching requires expectations to match the whole statement.
func (db *TestDB) StrictSQLMatching() *TestDB {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.strictMatch = true
	return db
}

// ExpectQuery registers an expectation for statements matching sqlPattern.
func (db *TestDB) ExpectQuery(sqlPattern string) *QueryExpectation {
	exp := &QueryExpectation{sql: sqlPattern}
	db.mu.Lock()
	defer db.mu.Unlock()
	db.queries = append(db.queries, exp)
	return exp
}

// QueryLog returns every Execute call in order.
func (db *TestDB) QueryLog() []QueryCall {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return append([]QueryCall(nil), db.queryLog...)
}

// Reset clears expectations and the call log.
func (db *TestDB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.queries = nil
	db.queryLog = nil
}

// Execute records the call and answers from the first matching expectation.
func (db *TestDB) Execute(ctx context.Context, query string, args []any) ([]dbtypes.Row, error) {
	exp, err := db.record(query, args)
	if err != nil {
		return nil, err
	}

	if exp.delay > 0 {
		timer := time.NewTimer(exp.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if exp.err != nil {
		return nil, exp.err
	}
	if exp.rows == nil {
		return []dbtypes.Row{}, nil
	}
	return exp.rows.Rows(), nil
}

func (db *TestDB) record(query string, args []any) (*QueryExpectation, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.queryLog = append(db.queryLog, QueryCall{SQL: query, Args: append([]any(nil), args...)})

	if db.closed {
		return nil, fmt.Errorf("testdb: connection is closed")
	}

	for _, exp := range db.queries {
		if exp.once && exp.used > 0 {
			continue
		}
		if !db.matchSQL(exp.sql, query) {
			continue
		}
		if exp.withArgs && !argsEqual(exp.args, args) {
			continue
		}
		exp.used++
		return exp, nil
	}
	return nil, fmt.Errorf("testdb: unexpected query: %s (args=%v)", query, args)
}

func argsEqual(expected, actual []any) bool {
	if len(expected) == 0 && len(actual) == 0 {
		return true
	}
	return reflect.DeepEqual(expected, actual)
}

// matchSQL returns true if the actual SQL matches the expected SQL pattern.
func (db *TestDB) matchSQL(expected, actual string) bool {
	if db.strictMatch {
		return strings.TrimSpace(expected) == strings.TrimSpace(actual)
	}
	return strings.Contains(actual, expected)
}

// Unmet returns the expectations that never matched a call.
func (db *TestDB) Unmet() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var unmet []string
	for _, exp := range db.queries {
		if exp.used == 0 {
			unmet = append(unmet, exp.sql)
		}
	}
	return unmet
}

// Health returns an error once the fake has been closed.
func (db *TestDB) Health(_ context.Context) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return fmt.Errorf("testdb: connection is closed")
	}
	return nil
}

// Stats reports the number of recorded calls.
func (db *TestDB) Stats() (map[string]any, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return map[string]any{
		"queries":      len(db.queryLog),
		"expectations": len(db.queries),
	}, nil
}

// Close marks the fake closed; later Execute calls fail.
func (db *TestDB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.closed = true
	return nil
}

// DatabaseType returns the vendor given to NewTestDB.
func (db *TestDB) DatabaseType() string {
	return db.vendor
}

// WithArgs restricts the expectation to calls with exactly these parameters.
func (qe *QueryExpectation) WithArgs(args ...any) *QueryExpectation {
	qe.args = args
	qe.withArgs = true
	return qe
}

// WillReturnRows sets the rows returned on a match.
func (qe *QueryExpectation) WillReturnRows(rows *RowSet) *QueryExpectation {
	qe.rows = rows
	return qe
}

// WillReturnError makes a match fail with err.
func (qe *QueryExpectation) WillReturnError(err error) *QueryExpectation {
	qe.err = err
	return qe
}

// WillDelay holds the response for d, or until the context is canceled.
func (qe *QueryExpectation) WillDelay(d time.Duration) *QueryExpectation {
	qe.delay = d
	return qe
}

// Once lets the expectation match a single call only.
func (qe *QueryExpectation) Once() *QueryExpectation {
	qe.once = true
	return qe
}
