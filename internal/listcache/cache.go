// Package listcache caches backend list pages in Redis. Every entity carries a
// version counter; bumping it orphans all cached pages of that entity.
package listcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/transitdesk/console/internal/realtime"
)

const keyPrefix = "console:list"

// sharedLoadTimeout bounds a load that several callers wait on. It runs
// detached from whichever caller started it.
const sharedLoadTimeout = 30 * time.Second

// Cache wraps Redis based caching with per-entity versioning.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// New instantiates the cache. A nil client or non-positive ttl disables
// caching; loaders then run on every call.
func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

func versionKey(entity string) string {
	return keyPrefix + ":version:" + entity
}

// Version returns the entity's cache version, initialising it when missing.
func (c *Cache) Version(ctx context.Context, entity string) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey(entity)).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, versionKey(entity), 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
	}
	return ver, nil
}

// BuildKey composes a cache key for entity under its current version.
func (c *Cache) BuildKey(ctx context.Context, entity string, parts ...string) (string, error) {
	ver, err := c.Version(ctx, entity)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%s:%d:%s", keyPrefix, entity, ver, strings.Join(parts, ":")), nil
}

// Bump invalidates every cached page of entity.
func (c *Cache) Bump(ctx context.Context, entity string) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Incr(ctx, versionKey(entity)).Err()
}

// Fetch returns the cached value for (entity, parts) or fills it with load.
// Concurrent misses for the same key share one load. Redis failures are
// logged and fall through to load.
func Fetch[T any](ctx context.Context, c *Cache, entity string, parts []string, load func(context.Context) (T, error)) (T, error) {
	var zero T
	if load == nil {
		return zero, errors.New("listcache: loader required")
	}
	if !c.enabled() {
		return load(ctx)
	}
	key, err := c.BuildKey(ctx, entity, parts...)
	if err != nil {
		c.logger.Warn("list cache unavailable", slog.String("entity", entity), slog.Any("error", err))
		return load(ctx)
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cached T
		if err := json.Unmarshal(payload, &cached); err == nil {
			return cached, nil
		}
		c.logger.Warn("list cache entry unreadable", slog.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("list cache read", slog.String("key", key), slog.Any("error", err))
		return load(ctx)
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(detached, sharedLoadTimeout)
		defer cancel()
		fresh, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(fresh)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(loadCtx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("list cache write", slog.String("key", key), slog.Any("error", err))
		}
		return fresh, nil
	})
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// InvalidateOn returns a realtime listener that bumps the entity named by each
// event. Entities without a cache are bumped harmlessly.
func (c *Cache) InvalidateOn(ctx context.Context) realtime.Listener {
	return func(ev realtime.Event) {
		entity := ev.Entity()
		if entity == "" {
			return
		}
		if err := c.Bump(ctx, entity); err != nil {
			c.logger.Warn("list cache bump", slog.String("entity", entity), slog.Any("error", err))
		}
	}
}
