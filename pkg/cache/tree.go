package cache

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/isocell/isocell/pkg/partition"
)

// TreeCache stores partition trees in a Cache as JSON.
type TreeCache struct {
	cache Cache
	ttl   time.Duration
}

// NewTreeCache wraps c. Entries expire after ttl; zero keeps them forever.
func NewTreeCache(c Cache, ttl time.Duration) *TreeCache {
	if c == nil {
		c = NewNullCache()
	}
	return &TreeCache{cache: c, ttl: ttl}
}

// Get returns the cached tree for graphHash and opts. An entry that fails
// to decode is deleted and reported as a miss.
func (c *TreeCache) Get(ctx context.Context, graphHash string, opts partition.TreeOptions) (*partition.Tree, bool, error) {
	key := TreeKey(graphHash, opts)
	data, ok, err := c.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	tree, err := partition.ReadTree(bytes.NewReader(data))
	if err != nil {
		_ = c.cache.Delete(ctx, key)
		return nil, false, nil
	}
	return tree, true, nil
}

// Put stores tree under graphHash and opts.
func (c *TreeCache) Put(ctx context.Context, graphHash string, opts partition.TreeOptions, tree *partition.Tree) error {
	var buf bytes.Buffer
	if err := partition.WriteTree(&buf, tree); err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	return c.cache.Set(ctx, TreeKey(graphHash, opts), buf.Bytes(), c.ttl)
}

// GetOrBuild returns the cached tree, or calls build and caches its result.
// hit reports whether the tree came from the cache.
func (c *TreeCache) GetOrBuild(ctx context.Context, graphHash string, opts partition.TreeOptions,
	build func(context.Context) (*partition.Tree, error)) (tree *partition.Tree, hit bool, err error) {
	tree, hit, err = c.Get(ctx, graphHash, opts)
	if err != nil {
		return nil, false, fmt.Errorf("read tree cache: %w", err)
	}
	if hit {
		return tree, true, nil
	}
	tree, err = build(ctx)
	if err != nil {
		return nil, false, err
	}
	if err := c.Put(ctx, graphHash, opts, tree); err != nil {
		return nil, false, fmt.Errorf("write tree cache: %w", err)
	}
	return tree, false, nil
}

// Close closes the underlying cache.
func (c *TreeCache) Close() error { return c.cache.Close() }
