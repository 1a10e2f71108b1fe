package cache

import (
	"context"
	"encoding/json"
	"time"

	"tasktrack/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// TaskListCache is a read-through cache for per-owner task listings. Every
// write path for an owner invalidates that owner's entry, but invalidation is
// best effort: a list in flight during a write may re-cache the pre-write
// snapshot, so staleness is bounded by the TTL rather than ruled out. A nil
// client disables caching entirely.
type TaskListCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTaskListCache(client *redis.Client, ttl time.Duration) *TaskListCache {
	return &TaskListCache{client: client, ttl: ttl}
}

func (c *TaskListCache) key(ownerID string) string {
	return "tasks:" + ownerID
}

// Get returns the cached listing for ownerID, or ok=false on miss, disabled
// cache, or any redis/decoding failure. Failures are never surfaced; the
// caller falls back to the store.
func (c *TaskListCache) Get(ctx context.Context, ownerID string) ([]model.Task, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, c.key(ownerID)).Bytes()
	if err != nil {
		return nil, false
	}
	var tasks []model.Task
	if err := json.Unmarshal(payload, &tasks); err != nil {
		return nil, false
	}
	return tasks, true
}

// Set stores the listing for ownerID, best effort.
func (c *TaskListCache) Set(ctx context.Context, ownerID string, tasks []model.Task) {
	if c == nil || c.client == nil {
		return
	}
	payload, err := json.Marshal(tasks)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.key(ownerID), payload, c.ttl)
}

// Invalidate drops the cached listing for ownerID, best effort.
func (c *TaskListCache) Invalidate(ctx context.Context, ownerID string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, c.key(ownerID))
}
