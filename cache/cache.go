package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"
)

var (
	DefaultArtistsTTL = 10 * time.Minute
	DefaultGenresTTL  = 1 * time.Hour
)

// Cache is a small in-memory cache of catalog lookups. Fetch calls are
// serialized so concurrent misses on the same key hit the API once.
type Cache[T any] struct {
	c   *ccache.Cache[T]
	mux sync.Mutex
}

func New[T any](maxSize int64) *Cache[T] {
	return &Cache[T]{
		c: ccache.New(
			ccache.Configure[T]().
				MaxSize(maxSize).
				GetsPerPromote(3).
				ItemsToPrune(1),
		),
		mux: sync.Mutex{},
	}
}

func (c *Cache[T]) Fetch(k string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	c.mux.Lock()
	defer c.mux.Unlock()

	v, err := c.c.Fetch(k, ttl, fetch)
	if nil != err {
		var zero T
		return zero, fmt.Errorf("fetch %s: %w", k, err)
	}

	return v.Value(), nil
}

func (c *Cache[T]) Stop() {
	c.c.Stop()
}
