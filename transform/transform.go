// Package transform provides the column transforms applied to remote query
// results before they reach the query engine.
package transform

import (
	"fmt"

	"github.com/apache/arrow/go/v13/arrow"

	"github.com/guileen/remotetable/remote"
	"github.com/guileen/remotetable/types"
)

// Rename renames columns. Names given by position apply to the declared
// column at the same index; names given by name map declared names.
type Rename struct {
	positional []string
	byName     map[string]string
}

// RenamePositional renames every declared column, in order
func RenamePositional(names ...string) *Rename {
	return &Rename{positional: append([]string{}, names...)}
}

// RenameColumns renames the declared columns present in mapping
func RenameColumns(mapping map[string]string) *Rename {
	m := make(map[string]string, len(mapping))
	for k, v := range mapping {
		m[k] = v
	}
	return &Rename{byName: m}
}

func (r *Rename) TransformField(idx int, field arrow.Field, _ *types.RemoteField) (arrow.Field, error) {
	if r.positional != nil {
		if idx >= len(r.positional) {
			return arrow.Field{}, fmt.Errorf("no name given for column %d (%s)", idx, field.Name)
		}
		field.Name = r.positional[idx]
		return field, nil
	}
	if name, ok := r.byName[field.Name]; ok {
		field.Name = name
	}
	return field, nil
}

func (r *Rename) TransformColumn(_ int, _ arrow.Field, col arrow.Array, _ *types.RemoteField) (arrow.Array, error) {
	col.Retain()
	return col, nil
}

// Chain applies transforms in order; each one sees the fields the previous
// one produced
type Chain []remote.Transform

func (c Chain) TransformField(idx int, field arrow.Field, rf *types.RemoteField) (arrow.Field, error) {
	var err error
	for _, t := range c {
		if field, err = t.TransformField(idx, field, rf); err != nil {
			return arrow.Field{}, err
		}
	}
	return field, nil
}

func (c Chain) TransformColumn(idx int, field arrow.Field, col arrow.Array, rf *types.RemoteField) (arrow.Array, error) {
	col.Retain()
	for _, t := range c {
		out, err := t.TransformColumn(idx, field, col, rf)
		col.Release()
		if err != nil {
			return nil, err
		}
		col = out
		if field, err = t.TransformField(idx, field, rf); err != nil {
			col.Release()
			return nil, err
		}
	}
	return col, nil
}

// FromDefinition builds the transform a table definition configures, nil
// when it configures none
func FromDefinition(def *types.TransformDefinition) remote.Transform {
	if def == nil {
		return nil
	}
	var chain Chain
	// stringify first so it matches declared names
	if len(def.Stringify) > 0 {
		chain = append(chain, NewStringify(def.Stringify...))
	}
	if len(def.Rename) > 0 {
		chain = append(chain, RenamePositional(def.Rename...))
	}
	switch len(chain) {
	case 0:
		return nil
	case 1:
		return chain[0]
	default:
		return chain
	}
}
