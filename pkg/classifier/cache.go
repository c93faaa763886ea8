package classifier

import (
	"container/list"
	"sync"
	"time"

	"github.com/rfmelo/gastos/pkg/models"
)

// ttlCache is an LRU cache with per-entry expiry, keyed by exact description
// text. Within the TTL window classification is a pure function of the
// description, so caching the label is always correct.
type ttlCache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
}

type cacheItem struct {
	key       string
	category  models.Category
	expiresAt time.Time
}

func newTTLCache(maxSize int, ttl time.Duration) *ttlCache {
	return &ttlCache{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

func (c *ttlCache) get(key string) (models.Category, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return "", false
	}
	item := elem.Value.(*cacheItem)
	if time.Now().After(item.expiresAt) {
		c.removeElement(elem)
		return "", false
	}
	c.lru.MoveToFront(elem)
	return item.category, true
}

func (c *ttlCache) set(key string, category models.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := &cacheItem{
		key:       key,
		category:  category,
		expiresAt: time.Now().Add(c.ttl),
	}

	if elem, ok := c.items[key]; ok {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(item)
	c.items[key] = elem

	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

func (c *ttlCache) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem)
	delete(c.items, item.key)
	c.lru.Remove(elem)
}

func (c *ttlCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
