package inmemory

import (
	"sync"
	"time"

	familydomain "family-finance-go/internal/domain/family"
)

// FamilyCache keeps the family of each user for a bounded time. Entries are
// evicted lazily on read.
type FamilyCache struct {
	mu    sync.RWMutex
	items map[string]familyItem
	now   func() time.Time
}

type familyItem struct {
	value     familydomain.Family
	expiresAt time.Time
}

func NewFamilyCache() *FamilyCache {
	return &FamilyCache{
		items: make(map[string]familyItem),
		now:   time.Now,
	}
}

func (c *FamilyCache) GetByUserID(userID string) (*familydomain.Family, bool) {
	now := c.now()

	c.mu.RLock()
	item, ok := c.items[userID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		if current, ok := c.items[userID]; ok && !current.expiresAt.After(now) {
			delete(c.items, userID)
		}
		c.mu.Unlock()
		return nil, false
	}

	value := item.value
	return &value, true
}

func (c *FamilyCache) SetByUserID(userID string, family *familydomain.Family, ttl time.Duration) {
	if family == nil || ttl <= 0 {
		c.DeleteByUserID(userID)
		return
	}

	c.mu.Lock()
	c.items[userID] = familyItem{value: *family, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

func (c *FamilyCache) DeleteByUserID(userID string) {
	c.mu.Lock()
	delete(c.items, userID)
	c.mu.Unlock()
}

// Clear drops every entry. Membership changes affect several users at once,
// so the family service clears instead of tracking each key.
func (c *FamilyCache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]familyItem)
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired ones included.
func (c *FamilyCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
