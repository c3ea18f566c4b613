package sql

import (
	"fmt"

	"github.com/xwb1989/sqlparser"
)

// MySQLAnalyzer analyzes MySQL text with xwb1989/sqlparser
type MySQLAnalyzer struct{}

// NewMySQLAnalyzer creates a new MySQL analyzer
func NewMySQLAnalyzer() Analyzer {
	return &MySQLAnalyzer{}
}

// Analyze parses query and reports its shape. The parser accepts a single
// statement only, so a successful parse always yields one statement.
func (p *MySQLAnalyzer) Analyze(query string) (*QueryShape, error) {
	stmt, err := sqlparser.Parse(query)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SQL query: %w", err)
	}
	shape := &QueryShape{Statements: 1}
	describeMySQL(stmt, shape)
	return shape, nil
}

func describeMySQL(stmt sqlparser.Statement, shape *QueryShape) {
	switch s := stmt.(type) {
	case *sqlparser.Select:
		shape.IsQuery = true
		shape.HasLocking = s.Lock != ""
		shape.HasOrderBy = len(s.OrderBy) > 0
		shape.HasLimit = s.Limit != nil
	case *sqlparser.Union:
		shape.IsQuery = true
		shape.HasLocking = s.Lock != ""
		shape.HasOrderBy = len(s.OrderBy) > 0
		shape.HasLimit = s.Limit != nil
	case *sqlparser.ParenSelect:
		describeMySQL(s.Select, shape)
	}
}
