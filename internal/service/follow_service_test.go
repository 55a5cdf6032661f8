package service

import (
	"context"
	"sync"
	"testing"

	"sonance/internal/models"
	"sonance/internal/repository"
	"sonance/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowService_RequestFollowSelf(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.db, "alice", true)

	status, err := f.follows.RequestFollow(context.Background(), alice.ID, alice.ID)
	requireCode(t, err, models.CodeSelfFollow)
	assert.Equal(t, models.FollowStatusNone, status)
}

func TestFollowService_RequestFollowMissingTarget(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.db, "alice", true)

	_, err := f.follows.RequestFollow(context.Background(), alice.ID, 404)
	requireCode(t, err, models.CodeNotFound)
}

func TestFollowService_RequestFollowPublic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", false)
	bob := testutil.CreateUser(t, f.db, "bob", true)

	status, err := f.follows.RequestFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FollowStatusAccepted, status)

	edge, err := f.store.Follows().FindBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.NotNil(t, edge)

	rows := f.notificationsFor(t, bob.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, models.NotificationFollow, rows[0].Type)
	assert.Equal(t, edge.ID, *rows[0].FollowID)
	assert.Equal(t, 1, f.outbox.count())

	// repeating an accepted follow changes nothing
	status, err = f.follows.RequestFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FollowStatusAccepted, status)
	assert.Len(t, f.notificationsFor(t, bob.ID), 1)
	assert.Equal(t, 1, f.outbox.count())
}

func TestFollowService_RequestFollowPrivate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", true)
	bob := testutil.CreateUser(t, f.db, "bob", false)

	status, err := f.follows.RequestFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FollowStatusPending, status)

	edge, err := f.store.Follows().FindBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	rows := f.notificationsFor(t, bob.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, models.NotificationFollowRequest, rows[0].Type)
	assert.Equal(t, edge.ID, *rows[0].FollowID)
	assert.False(t, rows[0].Read)

	following, err := f.follows.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestFollowService_RequestFollowReplacesPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", true)
	bob := testutil.CreateUser(t, f.db, "bob", false)

	_, err := f.follows.RequestFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	first, err := f.store.Follows().FindBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	status, err := f.follows.RequestFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FollowStatusPending, status)

	second, err := f.store.Follows().FindBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, int64(1), f.edgeCount(t))

	rows := f.notificationsFor(t, bob.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, second.ID, *rows[0].FollowID)
}

func TestFollowService_AcceptScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", true)
	bob := testutil.CreateUser(t, f.db, "bob", false)

	_, err := f.follows.RequestFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	edge, err := f.store.Follows().FindBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	requireCode(t, f.follows.AcceptRequest(ctx, edge.ID, alice.ID), models.CodeUnauthorized)
	requireCode(t, f.follows.AcceptRequest(ctx, edge.ID+100, bob.ID), models.CodeNotFound)

	require.NoError(t, f.follows.AcceptRequest(ctx, edge.ID, bob.ID))

	status, err := f.follows.Status(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FollowStatusAccepted, status)

	request := f.notificationsFor(t, bob.ID)
	require.Len(t, request, 1)
	assert.True(t, request[0].Read, "request notification is marked read on accept")

	accepted := f.notificationsFor(t, alice.ID)
	require.Len(t, accepted, 1)
	assert.Equal(t, models.NotificationFollowAccepted, accepted[0].Type)
	assert.Equal(t, bob.ID, accepted[0].SenderID)
	assert.False(t, accepted[0].Read)

	// accepting twice is a no-op
	require.NoError(t, f.follows.AcceptRequest(ctx, edge.ID, bob.ID))
	assert.Len(t, f.notificationsFor(t, alice.ID), 1)

	followers, following, err := f.follows.Counts(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followers)
	assert.Zero(t, following)
}

func TestFollowService_Reject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", true)
	bob := testutil.CreateUser(t, f.db, "bob", false)

	_, err := f.follows.RequestFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	edge, err := f.store.Follows().FindBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	requireCode(t, f.follows.RejectRequest(ctx, edge.ID, alice.ID), models.CodeUnauthorized)
	require.NoError(t, f.follows.RejectRequest(ctx, edge.ID, bob.ID))

	assert.Zero(t, f.edgeCount(t))
	assert.Empty(t, f.notificationsFor(t, bob.ID))

	status, err := f.follows.Status(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FollowStatusNone, status)
}

func TestFollowService_Cancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", true)
	bob := testutil.CreateUser(t, f.db, "bob", false)

	_, err := f.follows.RequestFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	sent, err := f.follows.SentRequests(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	pending, err := f.follows.PendingRequests(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	requireCode(t, f.follows.CancelRequest(ctx, sent[0].ID, bob.ID), models.CodeUnauthorized)
	require.NoError(t, f.follows.CancelRequest(ctx, sent[0].ID, alice.ID))

	assert.Zero(t, f.edgeCount(t))
	assert.Empty(t, f.notificationsFor(t, bob.ID))
}

func TestFollowService_CancelAccepted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", true)
	bob := testutil.CreateUser(t, f.db, "bob", true)

	edge := testutil.Follow(t, f.db, alice.ID, bob.ID, true)
	requireCode(t, f.follows.CancelRequest(ctx, edge.ID, alice.ID), models.CodeValidation)
}

func TestFollowService_Unfollow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", true)
	bob := testutil.CreateUser(t, f.db, "bob", true)

	require.NoError(t, f.follows.Unfollow(ctx, alice.ID, bob.ID), "absent edge is a no-op")

	_, err := f.follows.RequestFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, f.notificationsFor(t, bob.ID), 1)

	require.NoError(t, f.follows.Unfollow(ctx, alice.ID, bob.ID))
	assert.Zero(t, f.edgeCount(t))
	assert.Empty(t, f.notificationsFor(t, bob.ID))

	users, err := f.follows.Following(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestFollowService_ConcurrentRequests(t *testing.T) {
	for _, public := range []bool{true, false} {
		t.Run(map[bool]string{true: "public", false: "private"}[public], func(t *testing.T) {
			f := newFixture(t)
			alice := testutil.CreateUser(t, f.db, "alice", true)
			bob := testutil.CreateUser(t, f.db, "bob", public)

			const n = 8
			var wg sync.WaitGroup
			errs := make(chan error, n)
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := f.follows.RequestFollow(context.Background(), alice.ID, bob.ID)
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)

			for err := range errs {
				assert.NoError(t, err)
			}
			assert.Equal(t, int64(1), f.edgeCount(t))
			assert.Len(t, f.notificationsFor(t, bob.ID), 1)
		})
	}
}

// blindStore hides existing edges from lookups inside transactions, forcing
// the insert to hit the unique index the way a concurrent writer would.
type blindStore struct {
	repository.Store
	inTx bool
}

type blindFollows struct {
	repository.FollowRepository
}

func (blindFollows) FindBetween(context.Context, uint, uint) (*models.Follow, error) {
	return nil, nil
}

func (s blindStore) Follows() repository.FollowRepository {
	if s.inTx {
		return blindFollows{s.Store.Follows()}
	}
	return s.Store.Follows()
}

func (s blindStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.Transaction(ctx, func(tx repository.Store) error {
		return fn(blindStore{Store: tx, inTx: true})
	})
}

func TestFollowService_DuplicateInsertFallsBackToExistingEdge(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := newFixtureWithStore(db, blindStore{Store: repository.NewStore(db)})
	alice := testutil.CreateUser(t, db, "alice", true)
	bob := testutil.CreateUser(t, db, "bob", false)
	testutil.Follow(t, db, alice.ID, bob.ID, false)

	status, err := f.follows.RequestFollow(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FollowStatusPending, status)
	assert.Equal(t, int64(1), f.edgeCount(t))
	assert.Empty(t, f.notificationsFor(t, bob.ID), "the losing transaction rolled back")
	assert.Zero(t, f.outbox.count())
}
