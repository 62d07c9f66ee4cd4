package testing

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertQueryExecuted asserts that a statement matching sqlPattern was executed.
// Matching follows the TestDB's mode (partial by default).
func AssertQueryExecuted(t *testing.T, db *TestDB, sqlPattern string) {
	t.Helper()
	log := db.QueryLog()
	for _, call := range log {
		if db.matchSQL(sqlPattern, call.SQL) {
			return
		}
	}

	t.Errorf("expected query not executed: %q\nActual queries:\n%s",
		sqlPattern, formatQueryLog(log))
}

// AssertQueryNotExecuted asserts that no statement matching sqlPattern was executed.
func AssertQueryNotExecuted(t *testing.T, db *TestDB, sqlPattern string) {
	t.Helper()
	for _, call := range db.QueryLog() {
		if db.matchSQL(sqlPattern, call.SQL) {
			t.Errorf("unexpected query executed: %q\nQuery SQL: %s", sqlPattern, call.SQL)
			return
		}
	}
}

// AssertQueryCount asserts that exactly expected statements matched sqlPattern.
func AssertQueryCount(t *testing.T, db *TestDB, sqlPattern string, expected int) {
	t.Helper()
	count := 0
	for _, call := range db.QueryLog() {
		if db.matchSQL(sqlPattern, call.SQL) {
			count++
		}
	}
	if count != expected {
		t.Errorf("expected %d queries matching %q, got %d\nActual queries:\n%s",
			expected, sqlPattern, count, formatQueryLog(db.QueryLog()))
	}
}

// AssertQueryArgs asserts that the first statement matching sqlPattern was
// executed with exactly args, in order.
func AssertQueryArgs(t *testing.T, db *TestDB, sqlPattern string, args ...any) {
	t.Helper()
	for _, call := range db.QueryLog() {
		if db.matchSQL(sqlPattern, call.SQL) {
			if len(args) == 0 && len(call.Args) == 0 {
				return
			}
			assert.Equal(t, args, call.Args, "parameters of %q", call.SQL)
			return
		}
	}
	t.Errorf("expected query not executed: %q", sqlPattern)
}

// AssertExpectationsMet asserts that every registered expectation matched at least once.
func AssertExpectationsMet(t *testing.T, db *TestDB) {
	t.Helper()
	if unmet := db.Unmet(); len(unmet) > 0 {
		t.Errorf("unmet query expectations:\n  %s", strings.Join(unmet, "\n  "))
	}
}

// AssertNoQueries asserts that the TestDB received no statements at all.
func AssertNoQueries(t *testing.T, db *TestDB) {
	t.Helper()
	if log := db.QueryLog(); len(log) > 0 {
		t.Errorf("expected no queries, got %d:\n%s", len(log), formatQueryLog(log))
	}
}

func formatQueryLog(log []QueryCall) string {
	if len(log) == 0 {
		return "  (none)"
	}
	var b strings.Builder
	for i, call := range log {
		fmt.Fprintf(&b, "  %d. %s %v\n", i+1, call.SQL, call.Args)
	}
	return b.String()
}
