package graphql

import (
	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

const defaultDocCacheSize = 1000

type cachedDoc struct {
	query string
	doc   *ast.QueryDocument
}

// docCache keeps parsed documents keyed by the hash of the query text.
// Documents are never mutated after parsing and may be shared by requests.
type docCache struct {
	lru *lru.Cache[uint64, cachedDoc]
}

func newDocCache(size int) (*docCache, error) {
	if size <= 0 {
		return &docCache{}, nil
	}
	c, err := lru.New[uint64, cachedDoc](size)
	if err != nil {
		return nil, err
	}
	return &docCache{lru: c}, nil
}

func (c *docCache) get(query string) (*ast.QueryDocument, bool) {
	if c.lru == nil {
		return nil, false
	}
	entry, ok := c.lru.Get(xxhash.Sum64String(query))
	// collisions fall back to parsing
	if !ok || entry.query != query {
		return nil, false
	}
	return entry.doc, true
}

func (c *docCache) add(query string, doc *ast.QueryDocument) {
	if c.lru == nil {
		return
	}
	c.lru.Add(xxhash.Sum64String(query), cachedDoc{query: query, doc: doc})
}

func (c *docCache) len() int {
	if c.lru == nil {
		return 0
	}
	return c.lru.Len()
}
