// Package cache provides a read-through cache for single tasks.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"task-manager/internal/model"
)

// DefaultTTL bounds how long a cached task may be served.
const DefaultTTL = 5 * time.Minute

// ErrMiss is returned by Get when the key is absent or invalidated.
var ErrMiss = errors.New("cache miss")

// TaskCache stores tasks by id.
//
// Fill never overwrites an existing key, and Invalidate leaves a tombstone
// for one TTL, so a read that loaded a row before a write cannot put the
// old row back after the write invalidated it.
type TaskCache interface {
	Get(ctx context.Context, id string) (*model.Task, error)
	Fill(ctx context.Context, task *model.Task) error
	Invalidate(ctx context.Context, id string) error
}

// Redis keeps JSON-encoded tasks in Redis.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis connects to addr and verifies the connection.
func NewRedis(ctx context.Context, addr string, ttl time.Duration) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return NewRedisWithClient(rdb, ttl), nil
}

func NewRedisWithClient(rdb *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{rdb: rdb, ttl: ttl}
}

const tombstone = ""

func key(id string) string {
	return "task:" + id
}

func (c *Redis) Get(ctx context.Context, id string) (*model.Task, error) {
	val, err := c.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}
	if len(val) == 0 {
		return nil, ErrMiss
	}
	var task model.Task
	if err := json.Unmarshal(val, &task); err != nil {
		return nil, fmt.Errorf("decode cached task: %w", err)
	}
	return &task, nil
}

// Fill caches task unless its key already holds a value or a tombstone.
func (c *Redis) Fill(ctx context.Context, task *model.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}
	return c.rdb.SetNX(ctx, key(task.ID), data, c.ttl).Err()
}

// Invalidate replaces the entry with an empty tombstone.
func (c *Redis) Invalidate(ctx context.Context, id string) error {
	return c.rdb.Set(ctx, key(id), tombstone, c.ttl).Err()
}

func (c *Redis) Close() error {
	return c.rdb.Close()
}

// Nop is a TaskCache that never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (*model.Task, error) { return nil, ErrMiss }
func (Nop) Fill(context.Context, *model.Task) error          { return nil }
func (Nop) Invalidate(context.Context, string) error         { return nil }
