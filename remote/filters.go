package remote

import (
	"github.com/apache/arrow/go/v13/arrow"

	"github.com/guileen/remotetable/expr"
	rerrors "github.com/guileen/remotetable/remote/errors"
	"github.com/guileen/remotetable/types"
)

// RewriteFilters renames every column reference of filters from schema from
// to schema to by position: a column named c resolves to its index in from,
// and is replaced by an unqualified reference to the field at that index in
// to. The input trees are not modified.
func RewriteFilters(filters []expr.Expr, from, to *arrow.Schema) ([]expr.Expr, error) {
	if len(filters) == 0 {
		return filters, nil
	}
	rewritten := make([]expr.Expr, len(filters))
	for i, f := range filters {
		out, err := expr.TransformDown(f, func(e expr.Expr) (expr.Expr, bool, error) {
			col, ok := e.(*expr.Column)
			if !ok {
				return e, false, nil
			}
			name, err := counterpart(col.Name, from, to)
			if err != nil {
				return nil, false, err
			}
			return expr.Col(name), true, nil
		})
		if err != nil {
			return nil, err
		}
		rewritten[i] = out
	}
	return rewritten, nil
}

func counterpart(name string, from, to *arrow.Schema) (string, error) {
	indices := from.FieldIndices(name)
	if len(indices) == 0 {
		return "", rerrors.NewColumnNotFound("RewriteFilters", name, types.ErrColumnNotFound)
	}
	idx := indices[0]
	if idx >= to.NumFields() {
		return "", rerrors.NewColumnNotFound("RewriteFilters", name, types.ErrColumnNotFound)
	}
	return to.Field(idx).Name, nil
}
