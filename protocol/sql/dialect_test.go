package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDatabaseType(t *testing.T) {
	tests := []struct {
		input    string
		expected DatabaseType
	}{
		{"postgres", Postgres},
		{"PostgreSQL", Postgres},
		{"mysql", MySQL},
		{"mariadb", MySQL},
		{"oracle", Oracle},
		{"sqlite3", SQLite},
		{" dm ", DM},
	}
	for _, tt := range tests {
		got, err := ParseDatabaseType(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.expected, got)
	}

	_, err := ParseDatabaseType("sybase")
	assert.Error(t, err)
}

func TestSupportsRewriteWithFiltersLimit(t *testing.T) {
	tests := []struct {
		name     string
		dialect  DatabaseType
		query    string
		expected bool
	}{
		{"postgres select", Postgres, "SELECT id, name FROM users", true},
		{"postgres union", Postgres, "SELECT id FROM a UNION ALL SELECT id FROM b", true},
		{"postgres cte", Postgres, "WITH x AS (SELECT 1 AS id) SELECT id FROM x", true},
		{"postgres data-modifying cte", Postgres, "WITH d AS (DELETE FROM t RETURNING *) SELECT * FROM d", false},
		{"postgres cte insert after select", Postgres, "WITH a AS (SELECT 1 AS id), b AS (INSERT INTO t SELECT id FROM a RETURNING id) SELECT id FROM b", false},
		{"postgres ordered", Postgres, "SELECT id FROM users ORDER BY id", true},
		{"postgres multiple statements", Postgres, "SELECT 1; SELECT 2", false},
		{"postgres insert", Postgres, "INSERT INTO users (id) VALUES (1)", false},
		{"postgres select into", Postgres, "SELECT * INTO backup FROM users", false},
		{"postgres for update", Postgres, "SELECT * FROM users FOR UPDATE", false},
		{"postgres syntax error", Postgres, "SELEC * FROM", false},

		{"mysql select", MySQL, "select id, name from users where id > 3", true},
		{"mysql ordered with limit", MySQL, "select id from users order by id limit 10", true},
		{"mysql ordered without limit", MySQL, "select id from users order by id", false},
		{"mysql for update", MySQL, "select id from users for update", false},
		{"mysql update", MySQL, "update users set name = 'x'", false},

		{"sqlite select", SQLite, "SELECT * FROM t", true},
		{"sqlite trailing semicolon", SQLite, "SELECT * FROM t;", true},
		{"sqlite two statements", SQLite, "SELECT * FROM t; SELECT * FROM u", false},
		{"sqlite delete", SQLite, "DELETE FROM t", false},
		{"sqlite cte", SQLite, "WITH x AS (SELECT replace(name, 'a', 'b') AS n FROM t) SELECT n FROM x", true},
		{"sqlite data-modifying cte", SQLite, "WITH d AS (DELETE FROM t RETURNING *) SELECT * FROM d", false},
		{"sqlite cte update", SQLite, "WITH x AS (SELECT 1) UPDATE t SET a = 1", false},

		{"oracle select", Oracle, "SELECT id FROM t WHERE ROWNUM < 10", true},
		{"oracle cte", Oracle, "WITH x AS (SELECT id FROM t) SELECT id FROM x", true},
		{"oracle for update", Oracle, "SELECT id FROM t FOR UPDATE", false},
		{"dm select", DM, "select * from t", true},

		{"unknown dialect", DatabaseType("sybase"), "SELECT 1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.dialect.SupportsRewriteWithFiltersLimit(tt.query))
		})
	}
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"user id"`, Postgres.QuoteIdentifier("user id"))
	assert.Equal(t, `"a""b"`, SQLite.QuoteIdentifier(`a"b`))
	assert.Equal(t, "`a``b`", MySQL.QuoteIdentifier("a`b"))
}
