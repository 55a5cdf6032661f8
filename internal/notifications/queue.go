package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrQueueFull is returned by Enqueue when a bounded queue has no room.
var ErrQueueFull = errors.New("push queue full")

// Task asks a worker to deliver one persisted notification.
type Task struct {
	ID             string    `json:"id"`
	NotificationID uint      `json:"notification_id"`
	EnqueuedAt     time.Time `json:"enqueued_at"`
}

// NewTask returns a task for the notification row id.
func NewTask(notificationID uint) Task {
	return Task{
		ID:             uuid.NewString(),
		NotificationID: notificationID,
		EnqueuedAt:     time.Now(),
	}
}

// Queue hands delivery tasks from request handlers to workers.
type Queue interface {
	// Enqueue must not block the caller for longer than a network round trip.
	Enqueue(ctx context.Context, task Task) error
	// Dequeue blocks until a task is available or ctx is done.
	Dequeue(ctx context.Context) (Task, error)
}

// MemoryQueue is an in-process bounded queue. Tasks are lost on restart.
type MemoryQueue struct {
	tasks chan Task
}

// NewMemoryQueue creates a queue holding up to size tasks.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 1
	}
	return &MemoryQueue{tasks: make(chan Task, size)}
}

func (q *MemoryQueue) Enqueue(_ context.Context, task Task) error {
	select {
	case q.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (Task, error) {
	select {
	case task := <-q.tasks:
		return task, nil
	case <-ctx.Done():
		return Task{}, ctx.Err()
	}
}

// Len reports the number of buffered tasks.
func (q *MemoryQueue) Len() int {
	return len(q.tasks)
}

// DefaultRedisQueueKey is the list holding pending delivery tasks.
const DefaultRedisQueueKey = "push:tasks"

// RedisQueue is a list-backed queue shared by every API instance.
type RedisQueue struct {
	rdb     *redis.Client
	key     string
	maxLen  int64
	pollFor time.Duration
}

// NewRedisQueue creates a queue on key. maxLen bounds the list; zero means
// unbounded.
func NewRedisQueue(rdb *redis.Client, key string, maxLen int64) *RedisQueue {
	if key == "" {
		key = DefaultRedisQueueKey
	}
	return &RedisQueue{rdb: rdb, key: key, maxLen: maxLen, pollFor: time.Second}
}

func (q *RedisQueue) Enqueue(ctx context.Context, task Task) error {
	if q.maxLen > 0 {
		n, err := q.rdb.LLen(ctx, q.key).Result()
		if err != nil {
			return fmt.Errorf("queue length: %w", err)
		}
		if n >= q.maxLen {
			return ErrQueueFull
		}
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	return q.rdb.LPush(ctx, q.key, payload).Err()
}

func (q *RedisQueue) Dequeue(ctx context.Context) (Task, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Task{}, err
		}
		res, err := q.rdb.BRPop(ctx, q.pollFor, q.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return Task{}, ctx.Err()
			}
			return Task{}, fmt.Errorf("pop task: %w", err)
		}
		// BRPOP answers [key, value]
		var task Task
		if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
			return Task{}, fmt.Errorf("decode task: %w", err)
		}
		return task, nil
	}
}
