// Package catalog keeps the remote tables a server exposes, keyed by name.
package catalog

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/hashicorp/go-multierror"

	cerrors "github.com/guileen/remotetable/catalog/errors"
	"github.com/guileen/remotetable/catalog/internal"
	"github.com/guileen/remotetable/logger"
	"github.com/guileen/remotetable/remote"
	"github.com/guileen/remotetable/transform"
	"github.com/guileen/remotetable/types"
)

// Catalog is a registry of remote tables. Names are case-insensitive.
type Catalog struct {
	cache *internal.TableCache

	mu      sync.Mutex
	closers []io.Closer
}

func New() *Catalog {
	return &Catalog{cache: internal.NewTableCache()}
}

// Register builds a table from def over conn and adds it under def.Name.
// Declared columns of def become the declared schema; without them the
// schema is inferred from the remote query.
func (c *Catalog) Register(ctx context.Context, def *types.TableDefinition, opts remote.ConnectionOptions, conn remote.Connection) (*remote.Table, error) {
	if def == nil || def.Name == "" || def.SQL == "" {
		return nil, cerrors.InvalidDefinition("", errors.New("name and sql are required"))
	}
	if _, exists := c.cache.Get(def.Name); exists {
		return nil, cerrors.TableAlreadyExists(def.Name)
	}

	declared, err := def.ArrowSchema()
	if err != nil {
		return nil, cerrors.InvalidDefinition(def.Name, err)
	}
	var options []remote.TableOption
	if declared != nil {
		options = append(options, remote.WithDeclaredSchema(declared))
	}
	if t := transform.FromDefinition(def.Transform); t != nil {
		options = append(options, remote.WithTransform(t))
	}

	table, err := remote.NewTable(ctx, opts, def.SQL, conn, options...)
	if err != nil {
		return nil, err
	}
	if !c.cache.SetIfAbsent(def.Name, &internal.Entry{Definition: def, Table: table}) {
		return nil, cerrors.TableAlreadyExists(def.Name)
	}
	logger.InfoContext(ctx, "Registered remote table", logger.Component("catalog"),
		"table", def.Name, "db_type", opts.DatabaseType().String(), "columns", table.Schema().NumFields())
	return table, nil
}

// RegisterAll registers every definition, continuing past failures. The
// returned error lists every definition that failed.
func (c *Catalog) RegisterAll(ctx context.Context, defs []types.TableDefinition, opts remote.ConnectionOptions, conn remote.Connection) error {
	var result *multierror.Error
	for i := range defs {
		if _, err := c.Register(ctx, &defs[i], opts, conn); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Get returns the table registered under name
func (c *Catalog) Get(name string) (*remote.Table, error) {
	e, ok := c.cache.Get(name)
	if !ok {
		return nil, cerrors.TableNotFound(name)
	}
	return e.Table, nil
}

// Definition returns the definition name was registered from
func (c *Catalog) Definition(name string) (*types.TableDefinition, error) {
	e, ok := c.cache.Get(name)
	if !ok {
		return nil, cerrors.TableNotFound(name)
	}
	return e.Definition, nil
}

// Names lists registered table names in order
func (c *Catalog) Names() []string {
	entries := c.cache.Entries()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Definition.Name
	}
	return names
}

// Drop removes a table
func (c *Catalog) Drop(name string) error {
	if _, ok := c.cache.Delete(name); !ok {
		return cerrors.TableNotFound(name)
	}
	return nil
}

// Own hands a resource to the catalog, closed with it
func (c *Catalog) Own(closer io.Closer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closers = append(c.closers, closer)
}

// Close closes owned resources in reverse order and reports every failure
func (c *Catalog) Close() error {
	c.mu.Lock()
	closers := c.closers
	c.closers = nil
	c.mu.Unlock()

	var result *multierror.Error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
