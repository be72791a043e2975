package marketdata

import (
	"sync"

	"github.com/google/btree"

	"github.com/jumpei00/gobacktest/app/backtest"
)

// barItem orders candles by time inside one symbol's tree
type barItem struct {
	bar backtest.Bar
}

func (b barItem) Less(than btree.Item) bool {
	return b.bar.Time < than.(barItem).bar.Time
}

// Cache is a read-through candle cache keyed by symbol, each symbol holds a
// btree ordered by bar time so repeated downloads of the same range are
// deduplicated. Stale symbols must be invalidated explicitly.
type Cache struct {
	mu    sync.RWMutex
	trees map[string]*btree.BTree
}

// NewCache is constructor of Cache
func NewCache() *Cache {
	return &Cache{trees: map[string]*btree.BTree{}}
}

// DefaultCache is the process-wide candle cache
var DefaultCache = NewCache()

// Put merges bars of symbol into the cache, a bar with an already cached
// time replaces the old one
func (c *Cache) Put(symbol string, bars []backtest.Bar) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tree, ok := c.trees[symbol]
	if !ok {
		tree = btree.New(32)
		c.trees[symbol] = tree
	}
	for _, bar := range bars {
		tree.ReplaceOrInsert(barItem{bar: bar})
	}
}

// Bars returns up to limit of the newest cached bars of symbol in ascending
// time order, limit <= 0 returns all
func (c *Cache) Bars(symbol string, limit int) []backtest.Bar {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tree, ok := c.trees[symbol]
	if !ok {
		return nil
	}

	out := make([]backtest.Bar, 0, tree.Len())
	tree.Descend(func(item btree.Item) bool {
		out = append(out, item.(barItem).bar)
		return limit <= 0 || len(out) < limit
	})

	// collected newest first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Len returns the cached bar count of symbol
func (c *Cache) Len(symbol string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tree, ok := c.trees[symbol]
	if !ok {
		return 0
	}
	return tree.Len()
}

// Invalidate drops every cached bar of symbol
func (c *Cache) Invalidate(symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.trees, symbol)
}
