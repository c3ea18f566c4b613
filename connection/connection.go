// Package connection opens the remote.Connection matching a set of
// connection options.
package connection

import (
	"context"
	"io"

	"github.com/guileen/remotetable/connection/postgres"
	"github.com/guileen/remotetable/connection/sqlite"
	"github.com/guileen/remotetable/remote"
	rerrors "github.com/guileen/remotetable/remote/errors"
)

// Conn is a connection that owns driver resources
type Conn interface {
	remote.Connection
	io.Closer
}

// Open connects with the driver opts select. DialectOptions carry no
// address, so connections for those dialects must be supplied by the caller.
func Open(ctx context.Context, opts remote.ConnectionOptions) (Conn, error) {
	const op = "connection.Open"
	switch o := opts.(type) {
	case *remote.PostgresOptions:
		return postgres.Connect(ctx, o)
	case *remote.SQLiteOptions:
		return sqlite.Open(ctx, o)
	case nil:
		return nil, rerrors.NewInvalidArgumentf(op, "connection options are required")
	default:
		return nil, rerrors.NewInvalidArgumentf(op, "no driver for %s", opts.DatabaseType())
	}
}
