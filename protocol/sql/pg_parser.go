//go:build !pgquery_simple
// +build !pgquery_simple

package sql

import (
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// PGAnalyzer analyzes PostgreSQL text with pganalyze/pg_query_go/v6
type PGAnalyzer struct{}

// NewPGAnalyzer creates a new PostgreSQL analyzer
func NewPGAnalyzer() Analyzer {
	return &PGAnalyzer{}
}

// Analyze parses query and reports its shape
func (p *PGAnalyzer) Analyze(query string) (*QueryShape, error) {
	result, err := pg_query.Parse(query)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SQL query: %w", err)
	}

	shape := &QueryShape{Statements: len(result.Stmts)}
	if len(result.Stmts) != 1 {
		return shape, nil
	}

	sel := result.Stmts[0].GetStmt().GetSelectStmt()
	if sel == nil {
		return shape, nil
	}
	shape.IsQuery = !modifiesData(sel.GetWithClause())
	shape.HasInto = sel.GetIntoClause() != nil
	shape.HasLocking = len(sel.GetLockingClause()) > 0
	shape.HasOrderBy = len(sel.GetSortClause()) > 0
	shape.HasLimit = sel.GetLimitCount() != nil
	return shape, nil
}

// modifiesData reports whether a WITH clause holds an INSERT, UPDATE, DELETE
// or MERGE body; wrapping such a statement as a derived table is invalid.
func modifiesData(with *pg_query.WithClause) bool {
	for _, cte := range with.GetCtes() {
		q := cte.GetCommonTableExpr().GetCtequery()
		if q.GetInsertStmt() != nil || q.GetUpdateStmt() != nil ||
			q.GetDeleteStmt() != nil || q.GetMergeStmt() != nil {
			return true
		}
	}
	return false
}
