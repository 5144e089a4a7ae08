package introspect

import (
	"sync"

	"entgen/internal/core"
)

// FKCache memoizes per-table foreign-key reads across repeated
// ReadTables invocations within one process. The key includes the
// connection-string identity so two databases with identically named
// tables never share entries. Safe for concurrent use.
type FKCache struct {
	m sync.Map
}

// NewFKCache returns an empty cache.
func NewFKCache() *FKCache {
	return &FKCache{}
}

func cacheKey(dsn, schema, table string) string {
	return dsn + "|" + schema + "." + table
}

// Get returns the cached foreign keys for a table, if present.
func (c *FKCache) Get(dsn, schema, table string) ([]*core.ForeignKey, bool) {
	v, ok := c.m.Load(cacheKey(dsn, schema, table))
	if !ok {
		return nil, false
	}
	return v.([]*core.ForeignKey), true
}

// Put stores the foreign keys read for a table.
func (c *FKCache) Put(dsn, schema, table string, fks []*core.ForeignKey) {
	c.m.Store(cacheKey(dsn, schema, table), fks)
}

// Clear empties the cache.
func (c *FKCache) Clear() {
	c.m.Range(func(key, _ any) bool {
		c.m.Delete(key)
		return true
	})
}
