package mapbox

import (
	"container/list"
	"context"
	"strings"
	"sync"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
	"github.com/couchcryptid/wildfire-risk-service/internal/observability"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache. It decorates
// any domain.Geocoder, not only the Mapbox client.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedGeocoder) Geocode(ctx context.Context, query string) (domain.Place, bool, error) {
	key := strings.ToLower(strings.TrimSpace(query))
	if place, ok := c.cache.get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return place, true, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	place, found, err := c.inner.Geocode(ctx, query)
	if err != nil || !found {
		return place, found, err
	}
	// Only cache matches so transient "not found" responses can be retried.
	c.cache.put(key, place)
	return place, true, nil
}

// lruCache is a mutex-guarded LRU of geocoded places. The front of order is
// the most recently used entry.
type lruCache struct {
	mu      sync.Mutex
	limit   int
	order   *list.List
	byQuery map[string]*list.Element
}

type cachedPlace struct {
	query string
	place domain.Place
}

func newLRUCache(limit int) *lruCache {
	return &lruCache{
		limit:   limit,
		order:   list.New(),
		byQuery: make(map[string]*list.Element),
	}
}

func (c *lruCache) get(query string) (domain.Place, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.byQuery[query]
	if !ok {
		return domain.Place{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cachedPlace).place, true
}

func (c *lruCache) put(query string, place domain.Place) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.byQuery[query]; ok {
		el.Value.(*cachedPlace).place = place
		c.order.MoveToFront(el)
		return
	}

	c.byQuery[query] = c.order.PushFront(&cachedPlace{query: query, place: place})
	for c.order.Len() > c.limit {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.byQuery, oldest.Value.(*cachedPlace).query)
	}
}
