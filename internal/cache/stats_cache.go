// Package cache keeps computed statistics in Redis between mutations.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-inventory-api/internal/events"
	"go-inventory-api/internal/service"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	StatsKey   = "inventory:statistics"
	VersionKey = "inventory:statistics:version"
)

// luaSetIfVersion stores the snapshot only while the version key still holds
// the value read before the snapshot was computed.
const luaSetIfVersion = `
local statsKey = KEYS[1]
local versionKey = KEYS[2]
local current = redis.call('GET', versionKey) or '0'

if current ~= ARGV[1] then
  return 0
end
redis.call('SET', statsKey, ARGV[2], 'PX', ARGV[3])
return 1
`

// Client is the subset of *redis.Client the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Connect opens a client and pings it.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return rdb, nil
}

// StatsCache stores one statistics snapshot and drops it on every stock
// event, so a read after a committed write never sees the old figures. A
// snapshot computed before a write is refused by Set.
type StatsCache struct {
	client Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewStatsCache(client Client, ttl time.Duration, log *zap.Logger) *StatsCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &StatsCache{client: client, ttl: ttl, log: log}
}

func (c *StatsCache) Get(ctx context.Context) (*service.Statistics, bool, error) {
	b, err := c.client.Get(ctx, StatsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var stats service.Statistics
	if err := json.Unmarshal(b, &stats); err != nil {
		return nil, false, fmt.Errorf("decode cached statistics: %w", err)
	}
	return &stats, true, nil
}

// Version returns the invalidation counter, 0 before the first write.
func (c *StatsCache) Version(ctx context.Context) (int64, error) {
	v, err := c.client.Get(ctx, VersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Set stores stats unless the version moved past version since it was read.
func (c *StatsCache) Set(ctx context.Context, version int64, stats *service.Statistics) error {
	b, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	stored, err := c.client.Eval(ctx, luaSetIfVersion, []string{StatsKey, VersionKey}, version, b, c.ttl.Milliseconds()).Int()
	if err != nil {
		return err
	}
	if stored == 0 {
		c.log.Debug("statistics changed while computing, snapshot not cached", zap.Int64("version", version))
	}
	return nil
}

// Publish bumps the version and drops the snapshot.
func (c *StatsCache) Publish(ctx context.Context, event events.StockEvent) {
	if err := c.client.Incr(ctx, VersionKey).Err(); err != nil {
		c.log.Warn("bump statistics version", zap.String("action", event.Action), zap.Error(err))
	}
	if err := c.client.Del(ctx, StatsKey).Err(); err != nil {
		c.log.Warn("invalidate statistics cache", zap.String("action", event.Action), zap.Error(err))
	}
}

var (
	_ service.StatsCache = (*StatsCache)(nil)
	_ events.Notifier    = (*StatsCache)(nil)
)
