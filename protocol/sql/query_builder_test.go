package sql

import (
	"errors"
	"testing"
	"time"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guileen/remotetable/expr"
)

func intPtr(v int) *int { return &v }

func testSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "score", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	}, nil)
}

func TestBuildQueryPassThrough(t *testing.T) {
	q, err := BuildQuery(Postgres, "select * from users", testSchema(), nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "select * from users", q)
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name       string
		dialect    DatabaseType
		projection []int
		filters    []expr.Expr
		limit      *int
		expected   string
	}{
		{
			name:       "projection only",
			dialect:    Postgres,
			projection: []int{1, 0},
			expected:   `SELECT "name", "id" FROM (select * from users` + "\n) " + `AS remote_table`,
		},
		{
			name:     "single filter and limit",
			dialect:  Postgres,
			filters:  []expr.Expr{expr.Gt(expr.Col("id"), expr.Lit(10))},
			limit:    intPtr(5),
			expected: `SELECT * FROM (select * from users` + "\n) " + `AS remote_table WHERE "id" > 10 LIMIT 5`,
		},
		{
			name:    "multiple filters are parenthesized",
			dialect: MySQL,
			filters: []expr.Expr{
				expr.Or(expr.Eq(expr.Col("id"), expr.Lit(1)), expr.Eq(expr.Col("id"), expr.Lit(2))),
				expr.NotEq(expr.Col("name"), expr.Lit("x")),
			},
			expected: "SELECT * FROM (select * from users\n) AS remote_table WHERE (`id` = 1 OR `id` = 2) AND (`name` <> 'x')",
		},
		{
			name:       "oracle fetch first without AS",
			dialect:    Oracle,
			projection: []int{0},
			limit:      intPtr(3),
			expected:   `SELECT "id" FROM (select * from users` + "\n) " + `remote_table FETCH FIRST 3 ROWS ONLY`,
		},
		{
			name:       "empty projection",
			dialect:    SQLite,
			projection: []int{},
			limit:      intPtr(0),
			expected:   `SELECT 1 FROM (select * from users` + "\n) " + `AS remote_table LIMIT 0`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := BuildQuery(tt.dialect, "select * from users;", testSchema(), tt.projection, tt.filters, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, q)
		})
	}
}

func TestBuildQueryTrailingLineComment(t *testing.T) {
	q, err := BuildQuery(SQLite, "select * from users -- every user", testSchema(), []int{0}, nil, intPtr(2))
	require.NoError(t, err)
	assert.Equal(t, "SELECT \"id\" FROM (select * from users -- every user\n) AS remote_table LIMIT 2", q)
}

func TestBuildQueryErrors(t *testing.T) {
	_, err := BuildQuery(Postgres, "select 1", testSchema(), []int{7}, nil, nil)
	assert.Error(t, err)

	_, err = BuildQuery(Postgres, "select 1", testSchema(), nil, nil, intPtr(-1))
	assert.Error(t, err)

	_, err = BuildQuery(Postgres, "select 1", testSchema(), nil,
		[]expr.Expr{expr.Eq(expr.Func("my_udf", expr.Col("id")), expr.Lit(1))}, nil)
	assert.True(t, errors.Is(err, ErrUnsupportedExpression))
}

func TestUnparse(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	tests := []struct {
		name     string
		dialect  DatabaseType
		expr     expr.Expr
		expected string
	}{
		{"qualified column", Postgres, expr.QualifiedCol("t", "id"), `"t"."id"`},
		{"string escaping", Postgres, expr.Eq(expr.Col("name"), expr.Lit("O'Brien")), `"name" = 'O''Brien'`},
		{"mysql backslash", MySQL, expr.Eq(expr.Col("p"), expr.Lit(`a\b`)), "`p` = 'a\\\\b'"},
		{"precedence", SQLite, expr.And(expr.Or(expr.Col("a"), expr.Col("b")), expr.Col("c")), `("a" OR "b") AND "c"`},
		{"arithmetic", SQLite, expr.Gt(expr.Binary(expr.Col("a"), expr.OpPlus, expr.Lit(1)), expr.Lit(2.5)), `"a" + 1 > 2.5`},
		{"oracle modulo", Oracle, expr.Eq(expr.Binary(expr.Col("a"), expr.OpModulo, expr.Lit(2)), expr.Lit(0)), `MOD("a", 2) = 0`},
		{"bool postgres", Postgres, expr.Eq(expr.Col("f"), expr.Lit(true)), `"f" = TRUE`},
		{"bool oracle", Oracle, expr.Eq(expr.Col("f"), expr.Lit(false)), `"f" = 0`},
		{"null test", Postgres, &expr.IsNull{Expr: expr.Col("x"), Negated: true}, `"x" IS NOT NULL`},
		{"not", Postgres, &expr.Not{Expr: expr.Eq(expr.Col("x"), expr.Lit(1))}, `NOT ("x" = 1)`},
		{"in list", Postgres, &expr.InList{Expr: expr.Col("x"), List: []expr.Expr{expr.Lit(1), expr.Lit(2)}}, `"x" IN (1, 2)`},
		{"not between", Postgres, &expr.Between{Expr: expr.Col("x"), Low: expr.Lit(1), High: expr.Lit(9), Negated: true}, `"x" NOT BETWEEN 1 AND 9`},
		{"ilike postgres", Postgres, &expr.Like{Expr: expr.Col("n"), Pattern: expr.Lit("a%"), CaseInsensitive: true}, `"n" ILIKE 'a%'`},
		{"ilike mysql", MySQL, &expr.Like{Expr: expr.Col("n"), Pattern: expr.Lit("a%"), CaseInsensitive: true, Negated: true}, "LOWER(`n`) NOT LIKE LOWER('a%')"},
		{"function", Postgres, expr.Eq(expr.Func("lower", expr.Col("n")), expr.Lit("a")), `LOWER("n") = 'a'`},
		{"bytes postgres", Postgres, expr.Eq(expr.Col("b"), expr.Lit([]byte{0xab, 0x01})), `"b" = '\xab01'::bytea`},
		{"bytes sqlite", SQLite, expr.Eq(expr.Col("b"), expr.Lit([]byte{0xab, 0x01})), `"b" = X'AB01'`},
		{"bytes dm", DM, expr.Eq(expr.Col("b"), expr.Lit([]byte{0xab})), `"b" = HEXTORAW('AB')`},
		{"timestamp postgres", Postgres, expr.GtEq(expr.Col("t"), expr.Lit(ts)), `"t" >= TIMESTAMP '2024-03-01 12:30:00'`},
		{"timestamp mysql", MySQL, expr.GtEq(expr.Col("t"), expr.Lit(ts)), "`t` >= '2024-03-01 12:30:00'"},
		{"null literal", Postgres, expr.Eq(expr.Col("x"), expr.Lit(nil)), `"x" = NULL`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.dialect.Unparse(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestUnparseUnsupported(t *testing.T) {
	for _, e := range []expr.Expr{
		expr.Func("random"),
		&expr.InList{Expr: expr.Col("x")},
		expr.Eq(expr.Col("x"), expr.Lit(struct{}{})),
	} {
		_, err := Postgres.Unparse(e)
		assert.ErrorIs(t, err, ErrUnsupportedExpression, e.String())
	}
}
