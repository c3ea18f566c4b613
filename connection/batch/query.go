package batch

import (
	"github.com/apache/arrow/go/v13/arrow"

	"github.com/guileen/remotetable/expr"
	"github.com/guileen/remotetable/protocol/sql"
	rerrors "github.com/guileen/remotetable/remote/errors"
)

// PlanQuery decides the SQL text a connection sends and where each
// projected column sits in the rows it gets back. When the dialect accepts a
// rewritten query, projection, filters and limit are pushed into it;
// otherwise the original text runs unchanged and projection happens in
// process, which leaves no room for filters or a limit.
func PlanQuery(dbType sql.DatabaseType, query string, declared *arrow.Schema, projection []int,
	filters []expr.Expr, limit *int) (string, []int, error) {
	const op = "PlanQuery"
	for _, idx := range projection {
		if idx < 0 || idx >= declared.NumFields() {
			return "", nil, rerrors.NewSchemaMismatchf(op, "projection index %d out of range", idx)
		}
	}

	if dbType.SupportsRewriteWithFiltersLimit(query) {
		rewritten, err := sql.BuildQuery(dbType, query, declared, projection, filters, limit)
		if err != nil {
			return "", nil, rerrors.Wrap(err, rerrors.ErrCodeInvalidArgument, op)
		}
		n := declared.NumFields()
		if projection != nil {
			n = len(projection)
		}
		return rewritten, sequence(n), nil
	}

	if len(filters) > 0 || limit != nil {
		return "", nil, rerrors.NewInvalidArgumentf(op,
			"%s query cannot be rewritten to apply filters or a limit", dbType)
	}
	if projection == nil {
		return query, sequence(declared.NumFields()), nil
	}
	return query, append([]int{}, projection...), nil
}

func sequence(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}
