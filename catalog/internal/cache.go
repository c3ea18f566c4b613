package internal

import (
	"sort"
	"strings"
	"sync"

	"github.com/guileen/remotetable/remote"
	"github.com/guileen/remotetable/types"
)

// Entry is a registered table with the definition it was built from
type Entry struct {
	Definition *types.TableDefinition
	Table      *remote.Table
}

// TableCache maps case-folded table names to entries
type TableCache struct {
	items sync.Map
}

func NewTableCache() *TableCache {
	return &TableCache{}
}

func key(name string) string { return strings.ToLower(name) }

func (c *TableCache) Get(name string) (*Entry, bool) {
	v, ok := c.items.Load(key(name))
	if !ok {
		return nil, false
	}
	return v.(*Entry), true
}

// SetIfAbsent stores e unless the name is taken; it reports whether e was stored
func (c *TableCache) SetIfAbsent(name string, e *Entry) bool {
	_, loaded := c.items.LoadOrStore(key(name), e)
	return !loaded
}

func (c *TableCache) Delete(name string) (*Entry, bool) {
	v, ok := c.items.LoadAndDelete(key(name))
	if !ok {
		return nil, false
	}
	return v.(*Entry), true
}

// Entries returns all entries ordered by table name
func (c *TableCache) Entries() []*Entry {
	var entries []*Entry
	c.items.Range(func(_, v interface{}) bool {
		entries = append(entries, v.(*Entry))
		return true
	})
	sort.Slice(entries, func(i, j int) bool {
		return key(entries[i].Definition.Name) < key(entries[j].Definition.Name)
	})
	return entries
}
