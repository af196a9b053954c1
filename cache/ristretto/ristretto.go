package ristretto

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/pamcare/pamcare/cache"
)

// sizeLevels maps a coarse size hint to Ristretto tuning parameters.
// Costs are abstract units; callers pass cost 1 per item unless they track
// real sizes.
var sizeLevels = map[string]struct {
	numCounters int64
	maxCost     int64
}{
	"small":      {numCounters: 1e4, maxCost: 1 << 20},
	"medium":     {numCounters: 1e5, maxCost: 1 << 24},
	"large":      {numCounters: 1e6, maxCost: 1 << 27},
	"very-large": {numCounters: 1e7, maxCost: 1 << 30},
}

type Cache[V any] struct {
	cache *ristretto.Cache[string, V]
}

func (rc *Cache[V]) Get(key string) (V, bool) {
	return rc.cache.Get(key)
}

func (rc *Cache[V]) Set(key string, value V, cost int64) bool {
	return rc.cache.Set(key, value, cost)
}

func (rc *Cache[V]) SetWithTTL(key string, value V, cost int64, ttl time.Duration) bool {
	return rc.cache.SetWithTTL(key, value, cost, ttl)
}

func (rc *Cache[V]) Del(key string) {
	rc.cache.Del(key)
}

// New creates a string keyed cache sized by level: "small", "medium",
// "large" or "very-large".
func New[V any](level string) (cache.Cache[string, V], error) {
	params, ok := sizeLevels[level]
	if !ok {
		return nil, fmt.Errorf("ristretto: unknown cache size level %q", level)
	}

	c, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters: params.numCounters,
		MaxCost:     params.maxCost,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, err
	}

	return &Cache[V]{cache: c}, nil
}
