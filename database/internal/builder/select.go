// Package builder implements the dialect-aware SELECT builder: alias
// allocation, predicate assembly, statement rendering and row hydration.
package builder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	dbtypes "github.com/gaborage/bricksql/database/types"
	"github.com/gaborage/bricksql/logger"
)

// Direction is an ORDER BY direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Config carries construction-time settings for a Select.
type Config struct {
	// Vendor selects the dialect (mysql, mssql, sqlite). Defaults to mysql.
	Vendor string
	// Logger receives debug output for each Fetch. Nil disables logging.
	Logger logger.Logger
	// QuoteIdentifiers quotes table names, aliases and field names through the dialect.
	QuoteIdentifiers bool
	// StrictParentheses makes rendering fail on unbalanced group markers.
	StrictParentheses bool
}

type pagination struct {
	limit  int
	offset int
}

// Select builds and runs one multi-table SELECT statement and hydrates its rows.
//
// A Select is a single-owner accumulator: it is not safe for concurrent use.
// Configuration methods fail synchronously and leave the builder unchanged
// when they return an error.
type Select struct {
	dialect Dialect
	schema  dbtypes.SchemaProvider
	exec    dbtypes.Executor
	log     logger.Logger
	quote   bool
	strict  bool

	aliases  aliasAllocator
	tables   []dbtypes.TableRef
	current  map[string]int
	selected map[string][]string
	froms    []string
	joins    []joinClause
	where    predicateBuilder
	having   predicateBuilder
	groupBy  []string
	orderBy  []string
	exprs    []string
	page     *pagination
}

// NewSelect creates an empty builder bound to schema and exec.
func NewSelect(schema dbtypes.SchemaProvider, exec dbtypes.Executor, cfg Config) *Select {
	vendor := cfg.Vendor
	if vendor == "" {
		vendor = dbtypes.MySQL
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Select{
		dialect:  NewDialect(vendor),
		schema:   schema,
		exec:     exec,
		log:      log,
		quote:    cfg.QuoteIdentifiers,
		strict:   cfg.StrictParentheses,
		current:  make(map[string]int),
		selected: make(map[string][]string),
	}
}

// Dialect returns the dialect chosen at construction.
func (s *Select) Dialect() Dialect {
	return s.dialect
}

// Tables returns the registered tables in registration order.
func (s *Select) Tables() []dbtypes.TableRef {
	return append([]dbtypes.TableRef(nil), s.tables...)
}

// From registers table under a fresh alias and adds "<table> <alias>" to the FROM clause.
func (s *Select) From(table string) error {
	fields, err := s.resolveFields(table)
	if err != nil {
		return fmt.Errorf("from: %w", err)
	}
	ref := s.register(table, fields)
	s.froms = append(s.froms, s.ident(table)+" "+s.ident(ref.Alias()))
	return nil
}

// Join joins rightTable to the most recent registration of leftTable with an
// equality condition.
func (s *Select) Join(kind JoinKind, leftTable, rightTable, leftField, rightField string) error {
	return s.JoinOn(kind, leftTable, rightTable, leftField, rightField, OpEq)
}

// JoinOn is Join with an explicit operator. With OpIsNull the condition only
// tests the left column and the right field is not rendered.
func (s *Select) JoinOn(kind JoinKind, leftTable, rightTable, leftField, rightField string, op Operator) error {
	keyword, err := kind.keyword()
	if err != nil {
		return fmt.Errorf("join %s: %w", rightTable, err)
	}
	if err := validateJoinOperator(op); err != nil {
		return fmt.Errorf("join %s: %w", rightTable, err)
	}
	left, err := s.lookup(leftTable)
	if err != nil {
		return fmt.Errorf("join %s: %w", rightTable, err)
	}
	fields, err := s.resolveFields(rightTable)
	if err != nil {
		return fmt.Errorf("join: %w", err)
	}

	right := s.register(rightTable, fields)
	s.joins = append(s.joins, joinClause{
		keyword:     keyword,
		rightTable:  s.ident(rightTable),
		rightAlias:  s.ident(right.Alias()),
		leftColumn:  s.column(left.Alias(), leftField),
		rightColumn: s.column(right.Alias(), rightField),
		operator:    op,
	})
	return nil
}

// Where adds an AND-connected predicate to the WHERE clause.
func (s *Select) Where(table, field string, op Operator, value any) error {
	return s.addPredicate(&s.where, "where", table, field, op, value, And)
}

// OrWhere adds an OR-connected predicate to the WHERE clause.
func (s *Select) OrWhere(table, field string, op Operator, value any) error {
	return s.addPredicate(&s.where, "where", table, field, op, value, Or)
}

// WhereConnected adds a WHERE predicate with an explicit connector.
func (s *Select) WhereConnected(conn Connector, table, field string, op Operator, value any) error {
	return s.addPredicate(&s.where, "where", table, field, op, value, conn)
}

// WhereGroupStart inserts "(" into the WHERE clause.
func (s *Select) WhereGroupStart() {
	s.where.open()
}

// WhereGroupEnd inserts ")" into the WHERE clause.
func (s *Select) WhereGroupEnd() {
	s.where.close()
}

// Having adds an AND-connected predicate to the HAVING clause.
func (s *Select) Having(table, field string, op Operator, value any) error {
	return s.addPredicate(&s.having, "having", table, field, op, value, And)
}

// OrHaving adds an OR-connected predicate to the HAVING clause.
func (s *Select) OrHaving(table, field string, op Operator, value any) error {
	return s.addPredicate(&s.having, "having", table, field, op, value, Or)
}

// HavingConnected adds a HAVING predicate with an explicit connector.
func (s *Select) HavingConnected(conn Connector, table, field string, op Operator, value any) error {
	return s.addPredicate(&s.having, "having", table, field, op, value, conn)
}

// HavingGroupStart inserts "(" into the HAVING clause.
func (s *Select) HavingGroupStart() {
	s.having.open()
}

// HavingGroupEnd inserts ")" into the HAVING clause.
func (s *Select) HavingGroupEnd() {
	s.having.close()
}

func (s *Select) addPredicate(pb *predicateBuilder, clause, table, field string, op Operator, value any, conn Connector) error {
	ref, err := s.lookup(table)
	if err != nil {
		return fmt.Errorf("%s %s.%s: %w", clause, table, field, err)
	}
	if err := pb.add(s.column(ref.Alias(), field), op, value, conn); err != nil {
		return fmt.Errorf("%s %s.%s: %w", clause, table, field, err)
	}
	return nil
}

// GroupBy appends "<alias>.<field>" to the GROUP BY list.
func (s *Select) GroupBy(table, field string) error {
	ref, err := s.lookup(table)
	if err != nil {
		return fmt.Errorf("group by %s.%s: %w", table, field, err)
	}
	s.groupBy = append(s.groupBy, s.column(ref.Alias(), field))
	return nil
}

// Order appends "<alias>.<field> <dir>" to the ORDER BY list.
// The direction is case-insensitive and must be ASC or DESC.
func (s *Select) Order(table, field string, dir Direction) error {
	d := Direction(strings.ToUpper(strings.TrimSpace(string(dir))))
	if d != Asc && d != Desc {
		return fmt.Errorf("order %s.%s: %w: %q", table, field, dbtypes.ErrInvalidDirection, dir)
	}
	ref, err := s.lookup(table)
	if err != nil {
		return fmt.Errorf("order %s.%s: %w", table, field, err)
	}
	s.orderBy = append(s.orderBy, s.column(ref.Alias(), field)+" "+string(d))
	return nil
}

// SelectFields restricts the selected and hydrated columns of table to fields.
// Tables without a SelectFields call select every declared field.
// An empty field list restores the default.
func (s *Select) SelectFields(table string, fields ...string) error {
	ref, err := s.lookup(table)
	if err != nil {
		return fmt.Errorf("select fields %s: %w", table, err)
	}
	if len(fields) == 0 {
		delete(s.selected, ref.Alias())
		return nil
	}
	for _, f := range fields {
		if !ref.HasField(f) {
			return fmt.Errorf("select fields %s: %w: %q", table, dbtypes.ErrUnknownField, f)
		}
	}
	s.selected[ref.Alias()] = append([]string(nil), fields...)
	return nil
}

// AddSelectExpression appends a raw, unaliased expression to the SELECT list.
// Any expression switches Fetch into raw-row mode for the whole result.
//
// SECURITY WARNING: expressions are not escaped. Never interpolate user input.
func (s *Select) AddSelectExpression(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return dbtypes.ErrEmptyExpression
	}
	s.exprs = append(s.exprs, expr)
	return nil
}

// Limit sets pagination. Both values are bound as parameters, offset first.
// SQL Server only accepts OFFSET ... FETCH after an ORDER BY, so mssql
// statements need an Order call; the fragment is rendered either way.
func (s *Select) Limit(limit, offset int) error {
	if limit < 0 {
		return fmt.Errorf("%w: %d", dbtypes.ErrNegativeLimit, limit)
	}
	if offset < 0 {
		return fmt.Errorf("%w: %d", dbtypes.ErrNegativeOffset, offset)
	}
	s.page = &pagination{limit: limit, offset: offset}
	return nil
}

// ToSQL renders the statement and its ordered parameter list.
// Clause order is SELECT, FROM + JOINs, WHERE, GROUP BY, HAVING, ORDER BY,
// pagination. Parameters follow WHERE, then HAVING, then pagination.
func (s *Select) ToSQL() (sql string, args []any, err error) {
	if len(s.tables) == 0 {
		return "", nil, dbtypes.ErrNoTables
	}
	if s.strict && (!s.where.balanced() || !s.having.balanced()) {
		return "", nil, dbtypes.ErrUnbalancedParentheses
	}

	sb := squirrel.StatementBuilder.
		PlaceholderFormat(squirrel.Question).
		Select(s.selectList()...).
		From(strings.Join(s.froms, ", "))

	for _, j := range s.joins {
		sb = sb.JoinClause(j.SQL())
	}
	if !s.where.empty() {
		sb = sb.Where(s.where.SQL(), s.where.Args()...)
	}
	if len(s.groupBy) > 0 {
		sb = sb.GroupBy(s.groupBy...)
	}
	if !s.having.empty() {
		sb = sb.Having(s.having.SQL(), s.having.Args()...)
	}
	if len(s.orderBy) > 0 {
		sb = sb.OrderBy(s.orderBy...)
	}
	if s.page != nil {
		fragment, pageArgs := s.dialect.Pagination(s.page.limit, s.page.offset)
		sb = sb.Suffix(fragment, pageArgs...)
	}

	return sb.ToSql()
}

// Fetch renders the statement, checks placeholder/parameter parity, runs it
// through the executor and hydrates the rows.
func (s *Select) Fetch(ctx context.Context) (*Result, error) {
	query, args, err := s.ToSQL()
	if err != nil {
		return nil, err
	}
	if placeholders := strings.Count(query, "?"); placeholders != len(args) {
		return nil, fmt.Errorf("%w: %d placeholders, %d parameters in %q",
			dbtypes.ErrParamPlaceholderMismatch, placeholders, len(args), query)
	}

	queryID := uuid.NewString()
	start := time.Now()
	rows, err := s.exec.Execute(ctx, query, args)
	if err != nil {
		s.log.Debug().
			Str("query_id", queryID).
			Str("dialect", s.dialect.Family()).
			Err(err).
			Msg("select failed")
		return nil, &dbtypes.QueryExecutionError{SQL: query, Params: args, Err: err}
	}

	h := hydrator{schema: s.schema, tables: s.tables, selected: s.selected, raw: len(s.exprs) > 0}
	result, err := h.hydrate(rows)
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("query_id", queryID).
		Str("dialect", s.dialect.Family()).
		Int("tables", len(s.tables)).
		Int("params", len(args)).
		Int("rows", len(rows)).
		Bool("raw", result.Raw()).
		Dur("duration", time.Since(start)).
		Msg("select fetched")

	return result, nil
}

func (s *Select) selectList() []string {
	cols := make([]string, 0, len(s.tables)*4+len(s.exprs))
	for _, ref := range s.tables {
		for _, f := range selectedFields(ref, s.selected) {
			cols = append(cols, s.column(ref.Alias(), f)+" AS "+columnKey(ref.Alias(), f))
		}
	}
	return append(cols, s.exprs...)
}

func (s *Select) resolveFields(table string) ([]string, error) {
	fields, err := s.schema.FieldsOf(table)
	if err != nil {
		if errors.Is(err, dbtypes.ErrUnknownTable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", dbtypes.ErrUnknownTable, table, err)
	}
	return fields, nil
}

func (s *Select) register(table string, fields []string) dbtypes.TableRef {
	ref := dbtypes.NewTableRef(table, s.aliases.Next(), fields)
	s.tables = append(s.tables, ref)
	s.current[table] = len(s.tables) - 1
	return ref
}

func (s *Select) lookup(table string) (dbtypes.TableRef, error) {
	idx, ok := s.current[table]
	if !ok {
		return dbtypes.TableRef{}, fmt.Errorf("%w: %s", dbtypes.ErrTableNotInQuery, table)
	}
	return s.tables[idx], nil
}

func (s *Select) ident(name string) string {
	if !s.quote {
		return name
	}
	return s.dialect.QuoteIdentifier(name)
}

// column renders "<alias>.<field>". Aliases are quoted along with names so
// that two-letter aliases such as AS, BY or IN stay valid identifiers.
func (s *Select) column(alias, field string) string {
	return s.ident(alias) + "." + s.ident(field)
}
