package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	dom "github.com/birlikkoshan/todo-serverless/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyListPrefix = "todo:list:"
	keyGenPrefix  = "todo:gen:"
)

// TodoCache caches the full todo list in Redis. Writes invalidate it.
//
// Every invalidation bumps a generation counter. A refill is only stored if
// the generation it read before loading from the store is still current, so a
// list loaded before a write can never be cached after that write.
type TodoCache struct {
	rdb    *redis.Client
	key    string
	genKey string
	ttl    time.Duration
}

// NewTodoCache returns a cache for the list of table. Keys are namespaced per
// table so several deployments can share one Redis.
func NewTodoCache(rdb *redis.Client, table string, ttl time.Duration) *TodoCache {
	return &TodoCache{rdb: rdb, key: keyListPrefix + table, genKey: keyGenPrefix + table, ttl: ttl}
}

// GetList returns the cached list, or nil on a miss.
func (c *TodoCache) GetList(ctx context.Context) ([]dom.Todo, error) {
	b, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	list := []dom.Todo{}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Generation returns the current invalidation generation. Read it before
// loading the list that will be passed to SetList.
func (c *TodoCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, c.genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// SetList stores list if gen is still the current generation. It reports
// whether the list was stored.
func (c *TodoCache) SetList(ctx context.Context, gen int64, list []dom.Todo) (bool, error) {
	b, err := json.Marshal(list)
	if err != nil {
		return false, err
	}
	stored := false
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, c.genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key, b, c.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, c.genKey)
	if errors.Is(err, redis.TxFailedErr) {
		// generation moved while we were writing
		return false, nil
	}
	return stored, err
}

// Invalidate drops the cached list and starts a new generation.
func (c *TodoCache) Invalidate(ctx context.Context) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey)
		pipe.Del(ctx, c.key)
		return nil
	})
	return err
}
