// Package parsecache memoizes WKT/EWKT parsing. Entries are keyed by the
// xxhash of the exact input text and verified against the text on hit.
// Cached geometries share their coordinate slices between callers, which
// must treat them as read-only.
package parsecache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mohammed-shakir/geomcore/internal/cache/keys"
	"github.com/mohammed-shakir/geomcore/internal/core/observability"
	"github.com/mohammed-shakir/geomcore/pkg/geometry"
	"github.com/mohammed-shakir/geomcore/pkg/wkt"
)

type entry struct {
	text string
	geom geometry.Geometry
}

type Cache struct {
	lru *lru.Cache[uint64, entry]
}

// New returns a cache holding up to size parsed geometries. A size of zero
// or less disables caching; Parse then always parses.
func New(size int) (*Cache, error) {
	if size <= 0 {
		return &Cache{}, nil
	}
	c, err := lru.New[uint64, entry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: c}, nil
}

// Parse returns the geometry for text. Malformed input is never cached.
func (c *Cache) Parse(text string) (geometry.Geometry, error) {
	if c == nil || c.lru == nil {
		return wkt.Unmarshal(text)
	}
	k := keys.TextHash(text)
	if e, ok := c.lru.Get(k); ok && e.text == text {
		observability.IncParseCache(true)
		return e.geom, nil
	}
	observability.IncParseCache(false)

	g, err := wkt.Unmarshal(text)
	if err != nil {
		return nil, err
	}
	c.lru.Add(k, entry{text: text, geom: g})
	return g, nil
}

func (c *Cache) Len() int {
	if c == nil || c.lru == nil {
		return 0
	}
	return c.lru.Len()
}
