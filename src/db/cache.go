package db

import (
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"

	"mpdee-accounts/src/models"
)

// Cache keeps per-import transaction listings in memory between writes.
// Keys are tracked alongside ristretto so every listing can be dropped at once.
type Cache struct {
	store *ristretto.Cache
	keys  struct {
		sync.RWMutex
		m map[string]struct{}
	}
}

func NewCache(maxCost int64) (*Cache, error) {
	if maxCost <= 0 {
		maxCost = 10000
	}
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxCost * 10, // number of keys to track frequency of
		MaxCost:     maxCost,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, err
	}
	c := &Cache{store: store}
	c.keys.m = make(map[string]struct{})
	return c, nil
}

// listingTTL bounds how long a listing read concurrently with a write can
// outlive that write's invalidation.
const listingTTL = time.Minute

func transactionsKey(importID string) string {
	return "import:" + importID + ":transactions"
}

func (c *Cache) GetTransactions(importID string) ([]models.StagedTransaction, bool) {
	v, ok := c.store.Get(transactionsKey(importID))
	if !ok {
		return nil, false
	}
	txns, ok := v.([]models.StagedTransaction)
	if !ok {
		return nil, false
	}
	return append([]models.StagedTransaction{}, txns...), true
}

// SetTransactions caches a copy of txns. The cost is the row count, so large
// batches are evicted first. Writes are flushed before returning so a later
// DelTransactions cannot be overtaken by a buffered Set.
func (c *Cache) SetTransactions(importID string, txns []models.StagedTransaction) {
	key := transactionsKey(importID)
	c.keys.Lock()
	c.keys.m[key] = struct{}{}
	c.keys.Unlock()

	cost := int64(len(txns))
	if cost == 0 {
		cost = 1
	}
	c.store.SetWithTTL(key, append([]models.StagedTransaction(nil), txns...), cost, listingTTL)
	c.store.Wait()
}

func (c *Cache) DelTransactions(importID string) {
	key := transactionsKey(importID)
	c.keys.Lock()
	delete(c.keys.m, key)
	c.keys.Unlock()
	c.store.Del(key)
	c.store.Wait()
}

// ClearAll drops every cached listing and reports how many keys were tracked.
func (c *Cache) ClearAll() int {
	c.keys.Lock()
	defer c.keys.Unlock()
	n := len(c.keys.m)
	for key := range c.keys.m {
		c.store.Del(key)
	}
	c.keys.m = make(map[string]struct{})
	c.store.Wait()
	return n
}

func (c *Cache) Close() {
	c.store.Close()
}
