package cache

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	payload  string
	storedAt time.Time
}

// CopyCache holds rendered lookup payloads behind short-lived tokens so the
// "copy" button can replay them without hitting the upstream again. Entries
// are single-use, expire after the TTL and never survive a restart; the
// source data is always re-derivable by re-running the command.
type CopyCache struct {
	mu       sync.Mutex
	entries  map[string]entry
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

func New(ttl time.Duration, capacity int) *CopyCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if capacity <= 0 {
		capacity = 512
	}
	return &CopyCache{
		entries:  make(map[string]entry),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// Store saves the payload and returns a fresh token for it. At capacity the
// expired entries are dropped first, then the oldest live one.
func (c *CopyCache) Store(payload string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if len(c.entries) >= c.capacity {
		c.evictExpiredLocked(now)
	}
	if len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}

	token := uuid.NewString()
	c.entries[token] = entry{payload: payload, storedAt: now}
	return token
}

// Consume returns the payload for the token and removes it. A second consume
// of the same token, an unknown token or one past the TTL all report a miss;
// stale entries found on the way are dropped.
func (c *CopyCache) Consume(token string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[token]
	if !ok {
		return "", false
	}
	delete(c.entries, token)
	if c.now().Sub(e.storedAt) >= c.ttl {
		return "", false
	}
	return e.payload, true
}

// Sweep drops every expired entry and reports how many were removed. It backs
// the periodic job that keeps never-consumed entries from piling up.
func (c *CopyCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := len(c.entries)
	c.evictExpiredLocked(c.now())
	return before - len(c.entries)
}

func (c *CopyCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *CopyCache) evictExpiredLocked(now time.Time) {
	for token, e := range c.entries {
		if now.Sub(e.storedAt) >= c.ttl {
			delete(c.entries, token)
		}
	}
}

func (c *CopyCache) evictOldestLocked() {
	var oldest string
	var oldestAt time.Time
	for token, e := range c.entries {
		if oldest == "" || e.storedAt.Before(oldestAt) {
			oldest = token
			oldestAt = e.storedAt
		}
	}
	if oldest != "" {
		delete(c.entries, oldest)
	}
}
