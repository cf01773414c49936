package query

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"spareparts/pkg/catalog"
	"spareparts/pkg/metrics"
)

// Cache memoizes results per Params. The table never changes, so entries never go stale;
// the LRU bound only caps memory. Cached results are shared and must be treated as read-only.
type Cache struct {
	engine  *Engine
	results *lru.Cache[Params, Result]
}

// NewCache wraps engine with an LRU holding at most size results.
func NewCache(engine *Engine, size int) (*Cache, error) {
	results, err := lru.New[Params, Result](size)
	if err != nil {
		return nil, fmt.Errorf("create query cache: %w", err)
	}
	return &Cache{engine: engine, results: results}, nil
}

// Run returns the cached result for p, computing and storing it on a miss.
func (c *Cache) Run(p Params) Result {
	if res, ok := c.results.Get(p); ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return res
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()
	res := c.engine.Run(p)
	c.results.Add(p, res)
	return res
}

// Len reports the number of cached results.
func (c *Cache) Len() int {
	return c.results.Len()
}

// Table exposes the dataset behind the cache.
func (c *Cache) Table() *catalog.Table {
	return c.engine.Table()
}
