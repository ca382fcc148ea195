package cache

import (
	"sync"
	"testing"
	"time"

	"countryfx/internal/domain"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RateCache, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	c, err := NewRateCache(DefaultTTL, clock)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, clock
}

func usdTable() domain.RateTable {
	return domain.RateTable{"EUR": decimal.RequireFromString("0.92"), "JPY": decimal.NewFromInt(150)}
}

func TestRateCache_PutAndGet(t *testing.T) {
	c, clock := newTestCache(t)

	c.Put("USD", usdTable(), clock.Now())

	got, ok := c.Get("USD")
	require.True(t, ok)
	require.Len(t, got, 2)
	require.True(t, got["EUR"].Equal(decimal.RequireFromString("0.92")))
}

func TestRateCache_GetMissWhenEmpty(t *testing.T) {
	c, _ := newTestCache(t)

	got, ok := c.Get("USD")
	require.False(t, ok)
	require.Nil(t, got)
}

func TestRateCache_MissForDifferentBase(t *testing.T) {
	c, clock := newTestCache(t)
	c.Put("USD", usdTable(), clock.Now())

	_, ok := c.Get("EUR")
	require.False(t, ok)
}

func TestRateCache_NewBaseEvictsPrevious(t *testing.T) {
	c, clock := newTestCache(t)
	c.Put("USD", usdTable(), clock.Now())
	c.Put("EUR", domain.RateTable{"USD": decimal.RequireFromString("1.08")}, clock.Now())

	_, ok := c.Get("USD")
	require.False(t, ok)
	got, ok := c.Get("EUR")
	require.True(t, ok)
	require.True(t, got["USD"].Equal(decimal.RequireFromString("1.08")))
}

func TestRateCache_ExpiresFromFetchTime(t *testing.T) {
	c, clock := newTestCache(t)
	c.Put("USD", usdTable(), clock.Now())

	clock.Advance(DefaultTTL - time.Second)
	_, ok := c.Get("USD")
	require.True(t, ok, "entry should still be fresh just before the TTL")

	// reads do not extend the lifetime
	clock.Advance(time.Second)
	_, ok = c.Get("USD")
	require.False(t, ok)
}

func TestRateCache_StaleFetchTimeIsMiss(t *testing.T) {
	c, clock := newTestCache(t)
	c.Put("USD", usdTable(), clock.Now().Add(-8*24*time.Hour))

	_, ok := c.Get("USD")
	require.False(t, ok)
}

func TestRateCache_ReturnsCopy(t *testing.T) {
	c, clock := newTestCache(t)
	c.Put("USD", usdTable(), clock.Now())

	got, ok := c.Get("USD")
	require.True(t, ok)
	delete(got, "EUR")

	again, ok := c.Get("USD")
	require.True(t, ok)
	require.Contains(t, again, "EUR")
}

func TestRateCache_ConcurrentAccess(t *testing.T) {
	c, clock := newTestCache(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				c.Put("USD", usdTable(), clock.Now())
				return
			}
			c.Get("USD")
		}(i)
	}
	wg.Wait()

	_, ok := c.Get("USD")
	require.True(t, ok)
}
