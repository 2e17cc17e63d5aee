package semantic

import (
	"container/list"
	"context"
	"sync"
)

// CachedMatcher memoizes pair scores of an inner Matcher in a bounded
// LRU. Similarity is symmetric, so the pair key is order-normalized and
// both argument orders hit the same entry. Errors are not cached.
type CachedMatcher struct {
	inner    Matcher
	capacity int

	mu    sync.Mutex
	order *list.List
	items map[string]*list.Element
}

type cacheEntry struct {
	key   string
	score float64
}

// NewCachedMatcher wraps inner with an LRU of the given capacity. A
// non-positive capacity disables caching and returns inner unchanged.
func NewCachedMatcher(inner Matcher, capacity int) Matcher {
	if capacity <= 0 {
		return inner
	}
	return &CachedMatcher{
		inner:    inner,
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

func pairKey(a, b string) string {
	ka, kb := normalizeKey(a), normalizeKey(b)
	if ka > kb {
		ka, kb = kb, ka
	}
	return ka + "\x00" + kb
}

func (c *CachedMatcher) Similarity(ctx context.Context, a, b string) (float64, error) {
	key := pairKey(a, b)

	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		score := el.Value.(*cacheEntry).score
		c.mu.Unlock()
		return score, nil
	}
	c.mu.Unlock()

	score, err := c.inner.Similarity(ctx, a, b)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		// A concurrent call resolved the same pair first.
		c.order.MoveToFront(el)
		return el.Value.(*cacheEntry).score, nil
	}
	c.items[key] = c.order.PushFront(&cacheEntry{key: key, score: score})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
	return score, nil
}

// Len reports the number of cached pairs.
func (c *CachedMatcher) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
