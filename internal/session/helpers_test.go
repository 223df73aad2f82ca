package session

import (
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/mindcare/internal/kv"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *fakeClock, *kv.MemoryStore) {
	t.Helper()
	clock := newFakeClock()
	backend := kv.NewMemoryStore()
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return New(backend, opts...), clock, backend
}

func newRedisTestStore(t *testing.T) (*Store, *fakeClock, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	clock := newFakeClock()
	return New(kv.NewRedisStore(client, "mindcare", nil), WithClock(clock.Now)), clock, mr
}

func dateOf(t time.Time) string {
	return t.Format("2006-01-02")
}
