package handler

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ReplayCacheSchemaVersion invalidates cached responses when the pull response shape changes
const ReplayCacheSchemaVersion = "1.0"

type replayEntry struct {
	Version  string
	Status   int
	Body     []byte
	CachedAt time.Time
}

// ReplayCache remembers successful pull responses by Idempotency-Key so a
// retried request returns the original results instead of pulling again.
type ReplayCache struct {
	lru *expirable.LRU[string, *replayEntry]
}

// NewReplayCache creates a cache holding up to size responses for ttl.
func NewReplayCache(size int, ttl time.Duration) *ReplayCache {
	if size <= 0 {
		size = 1
	}
	return &ReplayCache{
		lru: expirable.NewLRU[string, *replayEntry](size, nil, ttl),
	}
}

// Get returns the cached status and body for key.
func (c *ReplayCache) Get(key string) (int, []byte, bool) {
	if c == nil || key == "" {
		return 0, nil, false
	}
	entry, found := c.lru.Get(key)
	if !found {
		return 0, nil, false
	}
	if entry.Version != ReplayCacheSchemaVersion {
		c.lru.Remove(key)
		return 0, nil, false
	}
	return entry.Status, entry.Body, true
}

// Set stores a response under key.
func (c *ReplayCache) Set(key string, status int, body []byte) {
	if c == nil || key == "" {
		return
	}
	c.lru.Add(key, &replayEntry{
		Version:  ReplayCacheSchemaVersion,
		Status:   status,
		Body:     append([]byte(nil), body...),
		CachedAt: time.Now(),
	})
}

// Len returns the number of cached responses.
func (c *ReplayCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
