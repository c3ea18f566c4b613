package sql

import (
	"fmt"
	"strings"

	"github.com/apache/arrow/go/v13/arrow"

	"github.com/guileen/remotetable/expr"
)

// remoteAlias names the wrapped source query inside generated SQL
const remoteAlias = "remote_table"

// BuildQuery generates the SQL text sent to the remote database. The source
// query is wrapped as a derived table; projection selects columns of schema
// by index, filters are ANDed and limit caps the row count. When nothing is
// pushed down the source query is returned unchanged.
//
// Callers must check SupportsRewriteWithFiltersLimit before pushing filters
// or a limit.
func BuildQuery(dbType DatabaseType, source string, schema *arrow.Schema, projection []int, filters []expr.Expr, limit *int) (string, error) {
	if projection == nil && len(filters) == 0 && limit == nil {
		return source, nil
	}
	if limit != nil && *limit < 0 {
		return "", fmt.Errorf("negative limit %d", *limit)
	}

	columns := "*"
	if projection != nil {
		if len(projection) == 0 {
			// zero-column projections still need a row per source row
			columns = "1"
		} else {
			names := make([]string, len(projection))
			for i, idx := range projection {
				if schema == nil || idx < 0 || idx >= schema.NumFields() {
					return "", fmt.Errorf("projection index %d out of range", idx)
				}
				names[i] = dbType.QuoteIdentifier(schema.Field(idx).Name)
			}
			columns = strings.Join(names, ", ")
		}
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(columns)
	sb.WriteString(" FROM (")
	sb.WriteString(strings.TrimRight(strings.TrimSpace(source), ";"))
	// a trailing line comment in source must not swallow the rest
	sb.WriteString("\n) ")
	if dbType != Oracle {
		sb.WriteString("AS ")
	}
	sb.WriteString(remoteAlias)

	if len(filters) > 0 {
		conds := make([]string, len(filters))
		for i, f := range filters {
			s, err := dbType.Unparse(f)
			if err != nil {
				return "", err
			}
			if len(filters) > 1 {
				s = "(" + s + ")"
			}
			conds[i] = s
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	if limit != nil {
		sb.WriteString(dbType.limitClause(*limit))
	}
	return sb.String(), nil
}
