package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"go-inventory-api/internal/events"
	"go-inventory-api/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	data   map[string]string
	ttl    time.Duration
	delErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{data: map[string]string{}}
}

func (f *fakeClient) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeClient) Incr(_ context.Context, key string) *redis.IntCmd {
	n, _ := strconv.ParseInt(f.data[key], 10, 64)
	n++
	f.data[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

// Eval mirrors luaSetIfVersion.
func (f *fakeClient) Eval(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	current, ok := f.data[keys[1]]
	if !ok {
		current = "0"
	}
	if current != fmt.Sprint(args[0]) {
		return redis.NewCmdResult(int64(0), nil)
	}
	f.data[keys[0]] = string(args[1].([]byte))
	f.ttl = time.Duration(args[2].(int64)) * time.Millisecond
	return redis.NewCmdResult(int64(1), nil)
}

func (f *fakeClient) Del(_ context.Context, keys ...string) *redis.IntCmd {
	if f.delErr != nil {
		return redis.NewIntResult(0, f.delErr)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestStatsCacheRoundTripAndInvalidate(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	c := NewStatsCache(client, 30*time.Second, nil)

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	stats := service.ComputeStatistics(nil, nil, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	stats.Overview.TotalStock = 42
	require.NoError(t, c.Set(ctx, 0, stats))
	assert.Equal(t, 30*time.Second, client.ttl)

	got, ok, err := c.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 42, got.Overview.TotalStock)
	assert.True(t, stats.GeneratedAt.Equal(got.GeneratedAt))

	c.Publish(ctx, events.StockEvent{Action: events.ActionProductUpdated})
	_, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStatsCacheRefusesSnapshotFromBeforeWrite(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	c := NewStatsCache(client, time.Minute, nil)

	before, err := c.Version(ctx)
	require.NoError(t, err)
	assert.Zero(t, before)

	stale := service.ComputeStatistics(nil, nil, time.Now())
	c.Publish(ctx, events.StockEvent{Action: events.ActionProductUpdated})
	require.NoError(t, c.Set(ctx, before, stale))

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "snapshot computed before the write must not be cached")

	after, err := c.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)

	require.NoError(t, c.Set(ctx, after, stale))
	_, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStatsCacheCorruptEntry(t *testing.T) {
	client := newFakeClient()
	client.data[StatsKey] = "{not json"

	_, ok, err := NewStatsCache(client, time.Second, nil).Get(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestStatsCachePublishSwallowsErrors(t *testing.T) {
	client := newFakeClient()
	client.delErr = errors.New("connection refused")

	assert.NotPanics(t, func() {
		NewStatsCache(client, time.Second, nil).Publish(context.Background(), events.StockEvent{})
	})
}
