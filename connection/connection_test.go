package connection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guileen/remotetable/connection/sqlite"
	"github.com/guileen/remotetable/protocol/sql"
	"github.com/guileen/remotetable/remote"
	rerrors "github.com/guileen/remotetable/remote/errors"
)

func TestOpenSQLite(t *testing.T) {
	conn, err := Open(context.Background(), &remote.SQLiteOptions{})
	require.NoError(t, err)
	defer conn.Close()
	assert.IsType(t, &sqlite.Connection{}, conn)
}

func TestOpenWithoutDriver(t *testing.T) {
	_, err := Open(context.Background(), &remote.DialectOptions{Type: sql.Oracle})
	assert.True(t, rerrors.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "oracle")

	_, err = Open(context.Background(), nil)
	assert.True(t, rerrors.IsInvalidArgument(err))
}
