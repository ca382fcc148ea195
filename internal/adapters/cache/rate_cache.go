package cache

import (
	"fmt"
	"maps"
	"sync"
	"time"

	"countryfx/internal/domain"

	"github.com/dgraph-io/ristretto"
	"github.com/jonboulle/clockwork"
)

// DefaultTTL is how long a fetched rate table stays usable.
const DefaultTTL = 7 * 24 * time.Hour

// entryKey is the only key ever stored: the cache holds one base currency at a time.
const entryKey = "rates"

type entry struct {
	base      string
	rates     domain.RateTable
	fetchedAt time.Time
}

// RateCache is a single-entry, fetch-time TTL cache of exchange-rate tables.
// Staleness is checked lazily on Get.
type RateCache struct {
	mu    sync.Mutex
	cache *ristretto.Cache
	ttl   time.Duration
	clock clockwork.Clock
}

func NewRateCache(ttl time.Duration, clock clockwork.Clock) (*RateCache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        10,
		MaxCost:            1,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create rate cache failed: %w", err)
	}
	return &RateCache{cache: c, ttl: ttl, clock: clock}, nil
}

func (c *RateCache) Get(base string) (domain.RateTable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.cache.Get(entryKey)
	if !ok {
		return nil, false
	}
	e, ok := v.(entry)
	if !ok || e.base != base {
		return nil, false
	}
	if c.clock.Since(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	return maps.Clone(e.rates), true
}

// Put replaces whatever entry is cached, evicting any other base currency.
func (c *RateCache) Put(base string, rates domain.RateTable, fetchedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Set(entryKey, entry{base: base, rates: maps.Clone(rates), fetchedAt: fetchedAt}, 1)
	c.cache.Wait()
}

func (c *RateCache) Close() { c.cache.Close() }
