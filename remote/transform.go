package remote

import (
	"github.com/apache/arrow/go/v13/arrow"

	"github.com/guileen/remotetable/types"
)

// Transform maps the columns a remote query returns into the shape the
// query engine sees. Implementations are stateless per call and shared
// between executions.
//
// idx is the position of the column in the declared schema and field the
// declared field there. remote is the matching remote field, nil when the
// remote schema is unknown.
type Transform interface {
	// TransformField returns the output field for a declared column
	TransformField(idx int, field arrow.Field, remote *types.RemoteField) (arrow.Field, error)
	// TransformColumn converts one column of a batch. The result is a new
	// reference owned by the caller; returning col unchanged requires
	// col.Retain().
	TransformColumn(idx int, field arrow.Field, col arrow.Array, remote *types.RemoteField) (arrow.Array, error)
}
