// ABOUTME: Thread-safe TTL cache replaying responses for repeated tool call IDs.
// ABOUTME: Prevents side-effecting tools from running twice when the model resends a call.

package dedupe

import (
	"container/list"
	"sync"
	"time"
)

// cacheEntry stores the cached response, timestamp, and list element for a call ID.
type cacheEntry struct {
	response  string
	timestamp time.Time
	element   *list.Element
}

// Cache provides a thread-safe, TTL-based, size-limited cache of dispatched
// tool call IDs and their responses. A realtime session can replay function
// call events after a reconnect; looking the call ID up here returns the
// original response instead of re-running the tool.
// Uses a doubly-linked list to maintain insertion order for O(1) eviction.
type Cache struct {
	mu      sync.RWMutex
	calls   map[string]*cacheEntry
	order   *list.List // List of call IDs in insertion order (oldest at front)
	ttl     time.Duration
	maxSize int
	done    chan struct{}
	closed  bool
}

// New creates a new dedupe cache with the specified TTL and maximum size.
// A background goroutine periodically cleans up expired entries.
func New(ttl time.Duration, maxSize int) *Cache {
	c := &Cache{
		calls:   make(map[string]*cacheEntry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		done:    make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// Lookup returns the cached response for a call ID seen within the TTL.
func (c *Cache) Lookup(callID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.calls[callID]
	if !ok || time.Since(entry.timestamp) >= c.ttl {
		return "", false
	}
	return entry.response, true
}

// Store records the response for a dispatched call ID. If the cache is at
// capacity, the oldest entry is evicted to make room.
func (c *Cache) Store(callID, response string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()

	// If the call ID already exists, update it and move to back
	if entry, exists := c.calls[callID]; exists {
		entry.response = response
		entry.timestamp = now
		c.order.MoveToBack(entry.element)
		return
	}

	// Evict oldest if at capacity
	if len(c.calls) >= c.maxSize {
		c.evictOldest()
	}

	elem := c.order.PushBack(callID)
	c.calls[callID] = &cacheEntry{
		response:  response,
		timestamp: now,
		element:   elem,
	}
}

// Len returns the number of cached entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.calls)
}

// evictOldest removes the oldest entry from the cache.
// Must be called with mu held. O(1) operation using linked list.
func (c *Cache) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}

	callID, _ := front.Value.(string)
	c.order.Remove(front)
	delete(c.calls, callID)
}

// cleanup runs in a background goroutine, periodically removing expired entries.
func (c *Cache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.runCleanup()
		case <-c.done:
			return
		}
	}
}

// runCleanup removes all expired entries from the cache.
func (c *Cache) runCleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for callID, entry := range c.calls {
		if now.Sub(entry.timestamp) > c.ttl {
			c.order.Remove(entry.element)
			delete(c.calls, callID)
		}
	}
}

// Close stops the background cleanup goroutine. It is safe to call multiple times.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.done)
		c.closed = true
	}
}
