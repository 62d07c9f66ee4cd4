//revive:disable-next-line:var-naming // Package name "types" avoids circular imports.
package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for builder configuration and execution failures.
// Use errors.Is() for programmatic checks; call sites wrap them with context.
var (
	// ErrUnknownTable is returned when the SchemaProvider cannot resolve a table.
	ErrUnknownTable = errors.New("unknown table")

	// ErrTableNotInQuery is returned when a table is referenced before From/Join registered it.
	ErrTableNotInQuery = errors.New("table not in query")

	// ErrUnknownField is returned when SelectFields names a field the table does not declare.
	ErrUnknownField = errors.New("unknown field")

	// ErrInvalidDirection is returned when Order is given a direction other than ASC or DESC.
	ErrInvalidDirection = errors.New("invalid order direction")

	// ErrEmptyInList is returned when IN / NOT IN is given an empty list.
	ErrEmptyInList = errors.New("empty IN list")

	// ErrNullNotAllowed is returned when an operator other than IS NULL is given a null value.
	ErrNullNotAllowed = errors.New("null value not allowed for operator")

	// ErrUnknownOperator is returned for operators outside the supported set.
	ErrUnknownOperator = errors.New("unknown operator")

	// ErrInvalidJoinOperator is returned when a join condition uses IN or NOT IN.
	ErrInvalidJoinOperator = errors.New("operator not allowed in join condition")

	// ErrUnknownJoinKind is returned for join kinds outside INNER, LEFT, RIGHT, OUTER and plain.
	ErrUnknownJoinKind = errors.New("unknown join kind")

	// ErrEmptyExpression is returned when AddSelectExpression is given blank SQL.
	ErrEmptyExpression = errors.New("select expression cannot be empty")

	// ErrNegativeLimit is returned when Limit is given a negative limit.
	ErrNegativeLimit = errors.New("limit cannot be negative")

	// ErrNegativeOffset is returned when Limit is given a negative offset.
	ErrNegativeOffset = errors.New("offset cannot be negative")

	// ErrNoTables is returned when a statement is rendered before any From call.
	ErrNoTables = errors.New("query has no tables")

	// ErrUnbalancedParentheses is returned by builders running with strict parenthesis checks.
	ErrUnbalancedParentheses = errors.New("unbalanced parentheses")

	// ErrParamPlaceholderMismatch is returned when the rendered SQL and the parameter list disagree.
	// It indicates a programming error and must not be retried.
	ErrParamPlaceholderMismatch = errors.New("placeholder count does not match parameter count")

	// ErrQueryExecutionFailed matches every *QueryExecutionError.
	ErrQueryExecutionFailed = errors.New("query execution failed")

	// ErrHydrationFailed is returned when the SchemaProvider cannot construct a row object.
	ErrHydrationFailed = errors.New("row hydration failed")
)

// QueryExecutionError wraps an error returned by the execution primitive
// together with the statement that caused it.
type QueryExecutionError struct {
	SQL    string
	Params []any
	Err    error
}

// Error implements the error interface.
func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("%s: %v (sql=%q, params=%d)", ErrQueryExecutionFailed, e.Err, e.SQL, len(e.Params))
}

// Unwrap exposes the driver error.
func (e *QueryExecutionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrQueryExecutionFailed.
func (e *QueryExecutionError) Is(target error) bool {
	return target == ErrQueryExecutionFailed
}
