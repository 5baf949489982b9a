package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"campusinterview/internal/model"
)

// UndoCache keeps each session's undo snapshots in a Redis list, newest at
// the head, trimmed to capacity on every push.
type UndoCache struct {
	client   *redis.Client
	capacity int
	ttl      time.Duration
}

func NewUndoCache(client *redis.Client, capacity int) *UndoCache {
	if capacity < 1 {
		capacity = 1
	}
	return &UndoCache{
		client:   client,
		capacity: capacity,
		ttl:      24 * time.Hour,
	}
}

func (c *UndoCache) key(sessionID string) string {
	return fmt.Sprintf("interview:session:%s:undo", sessionID)
}

func (c *UndoCache) Push(ctx context.Context, sessionID string, snap *model.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	key := c.key(sessionID)
	pipe := c.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, int64(c.capacity-1))
	pipe.Expire(ctx, key, c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *UndoCache) Peek(ctx context.Context, sessionID string) (*model.Snapshot, error) {
	data, err := c.client.LIndex(ctx, c.key(sessionID), 0).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *UndoCache) Pop(ctx context.Context, sessionID string) error {
	err := c.client.LPop(ctx, c.key(sessionID)).Err()
	if err == redis.Nil {
		return nil
	}
	return err
}

func (c *UndoCache) Clear(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, c.key(sessionID)).Err()
}

func (c *UndoCache) Len(ctx context.Context, sessionID string) (int, error) {
	n, err := c.client.LLen(ctx, c.key(sessionID)).Result()
	return int(n), err
}
