package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"sonance/internal/models"
	"sonance/internal/repository"
	"sonance/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDeliverer struct {
	kind models.ChannelKind
	err  error

	mu   sync.Mutex
	sent []Message
}

func (d *recordingDeliverer) Kind() models.ChannelKind { return d.kind }

func (d *recordingDeliverer) Deliver(_ context.Context, _ models.PushChannel, msg Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, msg)
	return d.err
}

func (d *recordingDeliverer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

func TestNotifier_NilClientIsNoop(t *testing.T) {
	var n *Notifier
	assert.NoError(t, n.PublishUser(context.Background(), 1, RealtimePayload{}))
	assert.NoError(t, NewNotifier(nil).PublishUser(context.Background(), 1, RealtimePayload{}))
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "notifications:user:1", UserChannel(1))
	assert.Equal(t, "notifications:user:100", UserChannel(100))
}

func TestDispatcher_DeliversToEveryChannel(t *testing.T) {
	db := testutil.OpenTestDB(t)
	store := repository.NewStore(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice", true)
	bob := testutil.CreateUser(t, db, "bob", true)
	post := testutil.CreatePost(t, db, alice.ID, "first track")

	require.NoError(t, store.PushChannels().Upsert(ctx, &models.PushChannel{
		UserID: alice.ID, Kind: models.ChannelWebPush, Endpoint: "https://push.test/a", P256dh: "k", Auth: "a",
	}))
	require.NoError(t, store.PushChannels().Upsert(ctx, &models.PushChannel{
		UserID: alice.ID, Kind: models.ChannelAPNs, Endpoint: "device-token",
	}))

	n := Build(alice.ID, bob.ID, Like{PostID: post.ID})
	require.NoError(t, store.Notifications().Create(ctx, n))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()
	notifier := NewNotifier(rdb)

	received := make(chan string, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	require.NoError(t, notifier.StartPatternSubscriber(subCtx, func(_ string, payload string) {
		received <- payload
	}))

	failing := &recordingDeliverer{kind: models.ChannelWebPush, err: errors.New("gone")}
	apns := &recordingDeliverer{kind: models.ChannelAPNs}
	d := NewDispatcher(store, NewMemoryQueue(4), notifier, "https://app.test", 1, failing, apns)

	d.Process(ctx, NewTask(n.ID))

	assert.Equal(t, 1, failing.count())
	require.Equal(t, 1, apns.count(), "one failing channel does not stop the others")
	assert.Equal(t, "bob liked your post", apns.sent[0].Title)
	assert.Equal(t, "first track", apns.sent[0].Body)

	select {
	case payload := <-received:
		var got RealtimePayload
		require.NoError(t, json.Unmarshal([]byte(payload), &got))
		assert.Equal(t, n.ID, got.Notification.ID)
		assert.Equal(t, "https://app.test/post/1", got.Message.URL)
	case <-time.After(time.Second):
		t.Fatal("realtime payload not published")
	}
}

func TestDispatcher_SkipsDeletedRows(t *testing.T) {
	db := testutil.OpenTestDB(t)
	store := repository.NewStore(db)

	apns := &recordingDeliverer{kind: models.ChannelAPNs}
	d := NewDispatcher(store, NewMemoryQueue(1), nil, "https://app.test", 1, apns)

	d.Process(context.Background(), NewTask(999))
	assert.Zero(t, apns.count())
}

func TestDispatcher_WorkersDrainQueue(t *testing.T) {
	db := testutil.OpenTestDB(t)
	store := repository.NewStore(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice", true)
	bob := testutil.CreateUser(t, db, "bob", true)
	require.NoError(t, store.PushChannels().Upsert(ctx, &models.PushChannel{
		UserID: alice.ID, Kind: models.ChannelAPNs, Endpoint: "device-token",
	}))

	var notes []*models.Notification
	for i := 0; i < 3; i++ {
		n := Build(alice.ID, bob.ID, Follow{EdgeID: uint(i + 1)})
		require.NoError(t, store.Notifications().Create(ctx, n))
		notes = append(notes, n)
	}

	apns := &recordingDeliverer{kind: models.ChannelAPNs}
	queue := NewMemoryQueue(2)
	d := NewDispatcher(store, queue, nil, "https://app.test", 2, apns)

	// the third task overflows the queue and is dropped, not an error
	d.Enqueue(ctx, append(notes, nil)...)
	assert.Equal(t, 2, queue.Len())

	runCtx, cancel := context.WithCancel(ctx)
	d.Start(runCtx)
	assert.Eventually(t, func() bool { return apns.count() == 2 }, time.Second, 10*time.Millisecond)
	cancel()
	d.Wait()
}
