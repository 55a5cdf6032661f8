package service

import (
	"context"
	"testing"

	"sonance/internal/models"
	"sonance/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", true)
	bob := testutil.CreateUser(t, f.db, "bob", true)
	carol := testutil.CreateUser(t, f.db, "carol", true)

	requireCode(t, f.blocks.Block(ctx, alice.ID, alice.ID), models.CodeSelfBlock)
	requireCode(t, f.blocks.Block(ctx, alice.ID, 404), models.CodeNotFound)

	require.NoError(t, f.blocks.Block(ctx, alice.ID, bob.ID))
	require.NoError(t, f.blocks.Block(ctx, alice.ID, bob.ID), "blocking twice is a no-op")
	require.NoError(t, f.blocks.Block(ctx, alice.ID, carol.ID))

	blocked, err := f.blocks.IsBlocked(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, blocked)
	blocked, err = f.blocks.IsBlocked(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, blocked)

	users, err := f.blocks.ListBlocked(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, users, 2)

	require.NoError(t, f.blocks.Unblock(ctx, alice.ID, bob.ID))
	require.NoError(t, f.blocks.Unblock(ctx, alice.ID, bob.ID))
	blocked, err = f.blocks.IsBlocked(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestBlockService_DoesNotTouchFollows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, f.db, "alice", true)
	bob := testutil.CreateUser(t, f.db, "bob", true)
	testutil.Follow(t, f.db, bob.ID, alice.ID, true)

	require.NoError(t, f.blocks.Block(ctx, alice.ID, bob.ID))

	following, err := f.follows.IsFollowing(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, following)
}
