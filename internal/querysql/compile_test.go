package querysql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stringsvc/internal/filter"
	"github.com/roach88/stringsvc/internal/ir"
)

var recordColumns = []string{"id", "value"}

func TestCompile_GoldenSQL(t *testing.T) {
	compiler := NewSQLCompiler()

	testCases := []struct {
		name       string
		query      Query
		wantSQL    string
		wantParams []any
	}{
		{
			name:       "no filter",
			query:      Query{Table: "strings", Columns: recordColumns},
			wantSQL:    "SELECT id, value FROM strings ORDER BY seq ASC, id COLLATE BINARY ASC",
			wantParams: nil,
		},
		{
			name: "palindrome",
			query: Query{
				Table:   "strings",
				Columns: recordColumns,
				Filter:  filter.Equals{Field: filter.FieldIsPalindrome, Value: ir.IRBool(true)},
			},
			wantSQL:    "SELECT id, value FROM strings WHERE is_palindrome = ? ORDER BY seq ASC, id COLLATE BINARY ASC",
			wantParams: []any{true},
		},
		{
			name: "length range",
			query: Query{
				Table:   "strings",
				Columns: recordColumns,
				Filter: filter.And{Predicates: []filter.Predicate{
					filter.AtLeast{Field: filter.FieldLength, Value: 3},
					filter.AtMost{Field: filter.FieldLength, Value: 9},
				}},
			},
			wantSQL:    "SELECT id, value FROM strings WHERE length >= ? AND length <= ? ORDER BY seq ASC, id COLLATE BINARY ASC",
			wantParams: []any{int64(3), int64(9)},
		},
		{
			name: "contains",
			query: Query{
				Table:   "strings",
				Columns: recordColumns,
				Filter:  filter.Contains{Field: filter.FieldValue, Substring: "z"},
			},
			wantSQL:    "SELECT id, value FROM strings WHERE instr(value, ?) > 0 ORDER BY seq ASC, id COLLATE BINARY ASC",
			wantParams: []any{"z"},
		},
		{
			name: "empty and",
			query: Query{
				Table:   "strings",
				Columns: recordColumns,
				Filter:  filter.And{},
			},
			wantSQL:    "SELECT id, value FROM strings WHERE 1 = 1 ORDER BY seq ASC, id COLLATE BINARY ASC",
			wantParams: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sql, params, err := compiler.Compile(tc.query)
			require.NoError(t, err)

			assert.Equal(t, tc.wantSQL, sql, "SQL mismatch")
			assert.Equal(t, tc.wantParams, params, "Parameters mismatch")
		})
	}
}

func TestCompile_FullSet(t *testing.T) {
	set := filter.Set{
		IsPalindrome:      filter.Bool(false),
		MinLength:         filter.Int(2),
		MaxLength:         filter.Int(10),
		WordCount:         filter.Int(1),
		ContainsCharacter: filter.String("a"),
	}

	where, params, err := NewSQLCompiler().CompilePredicate(set.Predicate())
	require.NoError(t, err)

	assert.Equal(t,
		"is_palindrome = ? AND length >= ? AND length <= ? AND word_count = ? AND instr(value, ?) > 0",
		where)
	assert.Equal(t, []any{false, int64(2), int64(10), int64(1), "a"}, params)
}

func TestCompile_PointerPredicates(t *testing.T) {
	compiler := NewSQLCompiler()

	where, params, err := compiler.CompilePredicate(&filter.And{Predicates: []filter.Predicate{
		&filter.Equals{Field: filter.FieldWordCount, Value: ir.IRInt(2)},
		&filter.AtLeast{Field: filter.FieldLength, Value: 1},
		&filter.AtMost{Field: filter.FieldLength, Value: 4},
		&filter.Contains{Field: filter.FieldValue, Substring: "b"},
	}})
	require.NoError(t, err)

	assert.Equal(t, "word_count = ? AND length >= ? AND length <= ? AND instr(value, ?) > 0", where)
	assert.Equal(t, []any{int64(2), int64(1), int64(4), "b"}, params)
}

func TestCompile_NoStringInterpolation(t *testing.T) {
	hostile := "'; DROP TABLE strings; --"

	sql, params, err := NewSQLCompiler().Compile(Query{
		Table:   "strings",
		Columns: recordColumns,
		Filter:  filter.Contains{Field: filter.FieldValue, Substring: hostile},
	})
	require.NoError(t, err)

	assert.NotContains(t, sql, "DROP")
	assert.Equal(t, 1, strings.Count(sql, "?"))
	assert.Equal(t, []any{hostile}, params)
}

func TestCompile_OrderByMandatory(t *testing.T) {
	filters := []filter.Predicate{
		nil,
		filter.And{},
		filter.Equals{Field: filter.FieldValue, Value: ir.IRString("x")},
	}
	for _, f := range filters {
		sql, _, err := NewSQLCompiler().Compile(Query{Table: "strings", Columns: recordColumns, Filter: f})
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(sql, "ORDER BY "+StableOrderKey), sql)
	}
}

func TestCompile_Deterministic(t *testing.T) {
	q := Query{
		Table:   "strings",
		Columns: recordColumns,
		Filter: filter.Set{
			MinLength:         filter.Int(1),
			ContainsCharacter: filter.String("q"),
		}.Predicate(),
	}

	sql1, params1, err := NewSQLCompiler().Compile(q)
	require.NoError(t, err)
	sql2, params2, err := NewSQLCompiler().Compile(q)
	require.NoError(t, err)

	assert.Equal(t, sql1, sql2)
	assert.Equal(t, params1, params2)
}

func TestCompile_Errors(t *testing.T) {
	compiler := NewSQLCompiler()

	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{"missing table", Query{Columns: recordColumns}, "without table"},
		{"missing columns", Query{Table: "strings"}, "explicit columns"},
		{
			"unknown field",
			Query{Table: "strings", Columns: recordColumns, Filter: filter.AtLeast{Field: "id", Value: 1}},
			"unknown field",
		},
		{
			"unknown field nested",
			Query{Table: "strings", Columns: recordColumns, Filter: filter.And{Predicates: []filter.Predicate{
				filter.Equals{Field: filter.FieldLength, Value: ir.IRInt(1)},
				filter.Contains{Field: "created_at", Substring: "2"},
			}}},
			"unknown field",
		},
		{
			"unsupported literal",
			Query{Table: "strings", Columns: recordColumns, Filter: filter.Equals{Field: filter.FieldValue, Value: ir.IRArray{}}},
			"unsupported IRValue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := compiler.Compile(tt.query)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestIRValueToParam(t *testing.T) {
	tests := []struct {
		name     string
		value    ir.IRValue
		expected any
		wantErr  bool
	}{
		{"string", ir.IRString("test"), "test", false},
		{"int", ir.IRInt(42), int64(42), false},
		{"bool_true", ir.IRBool(true), true, false},
		{"bool_false", ir.IRBool(false), false, false},
		{"array", ir.IRArray{ir.IRInt(1)}, nil, true},
		{"object", ir.IRObject{"k": ir.IRString("v")}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := irValueToParam(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}
