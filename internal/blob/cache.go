package blob

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// CachedStore wraps a Store with a short-lived snapshot cache of the whole
// document. It only saves round trips; it is not a concurrency control:
// writers elsewhere can still change the document under us within the TTL.
// Save is write-through, so our own cache always reflects our last write.
type CachedStore struct {
	inner Store
	ttl   time.Duration

	mu        sync.Mutex
	raw       json.RawMessage
	fetchedAt time.Time
	absent    bool
}

func Cached(inner Store, ttl time.Duration) *CachedStore {
	return &CachedStore{inner: inner, ttl: ttl}
}

func (c *CachedStore) Load(ctx context.Context, v any) error {
	c.mu.Lock()
	fresh := time.Since(c.fetchedAt) < c.ttl && (c.raw != nil || c.absent)
	raw, absent := c.raw, c.absent
	c.mu.Unlock()

	if fresh {
		if absent {
			return ErrNotFound
		}
		return json.Unmarshal(raw, v)
	}

	var fetched json.RawMessage
	err := c.inner.Load(ctx, &fetched)
	if err != nil {
		if err == ErrNotFound {
			c.mu.Lock()
			c.raw, c.absent, c.fetchedAt = nil, true, time.Now()
			c.mu.Unlock()
		}
		return err
	}

	c.mu.Lock()
	c.raw, c.absent, c.fetchedAt = fetched, false, time.Now()
	c.mu.Unlock()

	return json.Unmarshal(fetched, v)
}

func (c *CachedStore) Save(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.inner.Save(ctx, json.RawMessage(data)); err != nil {
		// The write may or may not have landed; drop the cache so the next
		// read fetches the truth.
		c.mu.Lock()
		c.raw, c.absent, c.fetchedAt = nil, false, time.Time{}
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.raw, c.absent, c.fetchedAt = data, false, time.Now()
	c.mu.Unlock()
	return nil
}
