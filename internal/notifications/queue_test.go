package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueue_DropsWhenFull(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, NewTask(1)))
	assert.ErrorIs(t, q.Enqueue(ctx, NewTask(2)), ErrQueueFull)
	assert.Equal(t, 1, q.Len())

	task, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(1), task.NotificationID)
	assert.NotEmpty(t, task.ID)
}

func TestMemoryQueue_DequeueHonoursContext(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func newRedisQueue(t *testing.T, maxLen int64) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	q := NewRedisQueue(rdb, "", maxLen)
	q.pollFor = 50 * time.Millisecond
	return q, mr
}

func TestRedisQueue_RoundTrip(t *testing.T) {
	q, mr := newRedisQueue(t, 0)
	ctx := context.Background()

	first, second := NewTask(7), NewTask(8)
	require.NoError(t, q.Enqueue(ctx, first))
	require.NoError(t, q.Enqueue(ctx, second))
	assert.True(t, mr.Exists(DefaultRedisQueueKey))

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, uint(7), got.NotificationID)

	got, err = q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}

func TestRedisQueue_Bounded(t *testing.T) {
	q, _ := newRedisQueue(t, 1)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, NewTask(1)))
	assert.ErrorIs(t, q.Enqueue(ctx, NewTask(2)), ErrQueueFull)
}

func TestRedisQueue_DequeueStopsOnCancel(t *testing.T) {
	q, _ := newRedisQueue(t, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx)
	assert.Error(t, err)
	assert.Error(t, ctx.Err())
}

func TestRedisQueue_BadPayload(t *testing.T) {
	q, mr := newRedisQueue(t, 0)
	_, err := mr.Lpush(DefaultRedisQueueKey, "not-json")
	require.NoError(t, err)

	_, err = q.Dequeue(context.Background())
	assert.ErrorContains(t, err, "decode task")
}
