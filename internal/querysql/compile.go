package querysql

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/roach88/stringsvc/internal/filter"
	"github.com/roach88/stringsvc/internal/ir"
)

// Query describes a filtered read of a table.
type Query struct {
	Table   string           // Table name (e.g., "strings")
	Columns []string         // Explicit column list, in scan order
	Filter  filter.Predicate // WHERE conditions (nil = no filter)
}

// columns maps predicate fields to SQL columns.
var columns = map[filter.Field]string{
	filter.FieldValue:        "value",
	filter.FieldLength:       "length",
	filter.FieldWordCount:    "word_count",
	filter.FieldIsPalindrome: "is_palindrome",
}

// SQLCompiler compiles filter predicates to parameterized SQL for SQLite.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts q to parameterized SQL.
// Returns (sql, params, error) tuple.
func (c *SQLCompiler) Compile(q Query) (string, []any, error) {
	if q.Table == "" {
		return "", nil, errors.New("cannot compile query without table")
	}
	if len(q.Columns) == 0 {
		return "", nil, errors.New("explicit columns required")
	}

	var whereClause string
	var params []any
	if q.Filter != nil {
		filterSQL, filterParams, err := c.CompilePredicate(q.Filter)
		if err != nil {
			return "", nil, errors.Wrap(err, "compile filter")
		}
		whereClause = " WHERE " + filterSQL
		params = filterParams
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s",
		strings.Join(q.Columns, ", "),
		q.Table,
		whereClause,
		StableOrderKey)

	return sql, params, nil
}

// StableOrderKey is appended to every compiled query.
// COLLATE BINARY keeps text ordering identical across SQLite builds.
const StableOrderKey = "seq ASC, id COLLATE BINARY ASC"

// CompilePredicate compiles a predicate to a WHERE clause fragment.
// Values are never interpolated - always ? placeholders.
func (c *SQLCompiler) CompilePredicate(p filter.Predicate) (string, []any, error) {
	if p == nil {
		return "1 = 1", nil, nil
	}

	switch pred := p.(type) {
	case filter.Equals:
		return c.compileEquals(pred)
	case *filter.Equals:
		return c.compileEquals(*pred)
	case filter.AtLeast:
		return c.compileCompare(pred.Field, ">=", pred.Value)
	case *filter.AtLeast:
		return c.compileCompare(pred.Field, ">=", pred.Value)
	case filter.AtMost:
		return c.compileCompare(pred.Field, "<=", pred.Value)
	case *filter.AtMost:
		return c.compileCompare(pred.Field, "<=", pred.Value)
	case filter.Contains:
		return c.compileContains(pred)
	case *filter.Contains:
		return c.compileContains(*pred)
	case filter.And:
		return c.compileAnd(pred)
	case *filter.And:
		return c.compileAnd(*pred)
	default:
		return "", nil, errors.Newf("unsupported predicate type: %T", p)
	}
}

func column(f filter.Field) (string, error) {
	col, ok := columns[f]
	if !ok {
		return "", errors.Newf("unknown field %q", f)
	}
	return col, nil
}

// compileEquals compiles an Equals predicate to "column = ?".
func (c *SQLCompiler) compileEquals(eq filter.Equals) (string, []any, error) {
	col, err := column(eq.Field)
	if err != nil {
		return "", nil, err
	}
	param, err := irValueToParam(eq.Value)
	if err != nil {
		return "", nil, errors.Wrap(err, "convert value")
	}
	return col + " = ?", []any{param}, nil
}

func (c *SQLCompiler) compileCompare(f filter.Field, op string, n int) (string, []any, error) {
	col, err := column(f)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("%s %s ?", col, op), []any{int64(n)}, nil
}

// compileContains uses instr, which is case-sensitive and counts
// characters, unlike LIKE.
func (c *SQLCompiler) compileContains(ct filter.Contains) (string, []any, error) {
	col, err := column(ct.Field)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("instr(%s, ?) > 0", col), []any{ct.Substring}, nil
}

// compileAnd compiles an And predicate to a conjunction with AND.
func (c *SQLCompiler) compileAnd(and filter.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil // vacuous truth
	}

	var sqlParts []string
	var allParams []any
	for _, pred := range and.Predicates {
		sql, params, err := c.CompilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	return strings.Join(sqlParts, " AND "), allParams, nil
}

// irValueToParam converts an ir.IRValue to a Go native type for SQL parameter.
func irValueToParam(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	case ir.IRBool:
		return bool(val), nil
	default:
		return nil, errors.Newf("unsupported IRValue type for SQL parameter: %T", v)
	}
}
