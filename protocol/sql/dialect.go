package sql

import (
	"fmt"
	"strings"
)

// DatabaseType identifies the dialect of a remote database
type DatabaseType string

const (
	Postgres DatabaseType = "postgres"
	MySQL    DatabaseType = "mysql"
	Oracle   DatabaseType = "oracle"
	SQLite   DatabaseType = "sqlite"
	DM       DatabaseType = "dm"
)

// ParseDatabaseType parses a dialect name, accepting common aliases
func ParseDatabaseType(s string) (DatabaseType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	case "mysql", "mariadb":
		return MySQL, nil
	case "oracle":
		return Oracle, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "dm", "dameng":
		return DM, nil
	default:
		return "", fmt.Errorf("unknown database type %q", s)
	}
}

func (t DatabaseType) String() string { return string(t) }

// analyzer returns the statement analyzer used for the dialect's SQL
func (t DatabaseType) analyzer() Analyzer {
	switch t {
	case Postgres:
		return NewPGAnalyzer()
	case MySQL:
		return NewMySQLAnalyzer()
	case SQLite, Oracle, DM:
		return NewScanAnalyzer()
	default:
		return nil
	}
}

// SupportsRewriteWithFiltersLimit reports whether query may be wrapped as a
// subquery with extra WHERE conditions and a row limit appended. Only single
// read-only query statements qualify; MySQL additionally refuses queries
// ordered without their own LIMIT, because MySQL discards ORDER BY inside
// derived tables and an outer limit would keep arbitrary rows.
func (t DatabaseType) SupportsRewriteWithFiltersLimit(query string) bool {
	a := t.analyzer()
	if a == nil {
		return false
	}
	shape, err := a.Analyze(query)
	if err != nil {
		return false
	}
	if shape.Statements != 1 || !shape.IsQuery || shape.HasInto || shape.HasLocking {
		return false
	}
	if t == MySQL && shape.HasOrderBy && !shape.HasLimit {
		return false
	}
	return true
}

// QuoteIdentifier quotes a column or relation name for the dialect
func (t DatabaseType) QuoteIdentifier(name string) string {
	if t == MySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (t DatabaseType) limitClause(n int) string {
	if t == Oracle || t == DM {
		return fmt.Sprintf(" FETCH FIRST %d ROWS ONLY", n)
	}
	return fmt.Sprintf(" LIMIT %d", n)
}
