package guard

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis answers SET NX and the release script from a map, so the guard
// runs against a real client without a server.
type fakeRedis struct {
	mu      sync.Mutex
	data    map[string]string
	lastSet []interface{}
}

func newFakeRedisClient(t *testing.T) (*redisv9.Client, *fakeRedis) {
	t.Helper()
	fake := &fakeRedis{data: map[string]string{}}
	client := redisv9.NewClient(&redisv9.Options{Addr: "127.0.0.1:1"})
	client.AddHook(fake)
	t.Cleanup(func() { _ = client.Close() })
	return client, fake
}

func (f *fakeRedis) DialHook(next redisv9.DialHook) redisv9.DialHook {
	return next
}

func (f *fakeRedis) ProcessPipelineHook(next redisv9.ProcessPipelineHook) redisv9.ProcessPipelineHook {
	return next
}

func (f *fakeRedis) ProcessHook(redisv9.ProcessHook) redisv9.ProcessHook {
	return func(_ context.Context, cmd redisv9.Cmder) error {
		f.mu.Lock()
		defer f.mu.Unlock()

		args := cmd.Args()
		switch cmd.Name() {
		case "set":
			f.lastSet = args
			key, val := args[1].(string), args[2].(string)
			c := cmd.(*redisv9.BoolCmd)
			if _, exists := f.data[key]; exists {
				c.SetVal(false)
				return nil
			}
			f.data[key] = val
			c.SetVal(true)
		case "evalsha":
			key, token := args[3].(string), args[4].(string)
			c := cmd.(*redisv9.Cmd)
			if f.data[key] != token {
				c.SetVal(int64(0))
				return nil
			}
			delete(f.data, key)
			c.SetVal(int64(1))
		default:
			err := fmt.Errorf("unexpected command %q", cmd.Name())
			cmd.SetErr(err)
			return err
		}
		return nil
	}
}

func (f *fakeRedis) get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok
}

func (f *fakeRedis) expire(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
}

func TestNewRedisGuard_DefaultTTL(t *testing.T) {
	g := NewRedisGuard(nil, 0)
	assert.Equal(t, 5*time.Second, g.ttl)

	g = NewRedisGuard(nil, time.Minute)
	assert.Equal(t, time.Minute, g.ttl)
}

func TestRedisGuard_Key(t *testing.T) {
	g := NewRedisGuard(nil, time.Second)
	assert.Equal(t, "devconnector:guard:like:p1:u1", g.key("like:p1:u1"))
}

func TestRedisGuard_AcquireStoresTokenWithTTL(t *testing.T) {
	client, fake := newFakeRedisClient(t)
	g := NewRedisGuard(client, time.Second)
	ctx := context.Background()

	token, ok, err := g.Acquire(ctx, "like:p1:u1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, token)

	stored, held := fake.get("devconnector:guard:like:p1:u1")
	require.True(t, held)
	assert.Equal(t, token, stored)
	assert.Equal(t, []interface{}{"set", "devconnector:guard:like:p1:u1", token, "ex", int64(1), "nx"}, fake.lastSet)

	again, ok, err := g.Acquire(ctx, "like:p1:u1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, again)
}

func TestRedisGuard_ReleaseLeavesNewerHolder(t *testing.T) {
	client, fake := newFakeRedisClient(t)
	g := NewRedisGuard(client, time.Second)
	ctx := context.Background()

	stale, ok, err := g.Acquire(ctx, "like:p1:u1")
	require.NoError(t, err)
	require.True(t, ok)

	fake.expire("devconnector:guard:like:p1:u1")
	current, ok, err := g.Acquire(ctx, "like:p1:u1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEqual(t, stale, current)

	assert.ErrorIs(t, g.Release(ctx, "like:p1:u1", stale), ErrNotHeld)
	stored, held := fake.get("devconnector:guard:like:p1:u1")
	require.True(t, held)
	assert.Equal(t, current, stored)

	require.NoError(t, g.Release(ctx, "like:p1:u1", current))
	_, held = fake.get("devconnector:guard:like:p1:u1")
	assert.False(t, held)
}

func TestRedisGuard_UnreachableServer(t *testing.T) {
	client := redisv9.NewClient(&redisv9.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	g := NewRedisGuard(client, time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	token, ok, err := g.Acquire(ctx, "like:p1:u1")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Empty(t, token)
	assert.Contains(t, err.Error(), "redis acquire guard failed")

	err = g.Release(ctx, "like:p1:u1", "stale")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis release guard failed")
}
