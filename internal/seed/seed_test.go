package seed

import (
	"context"
	"testing"

	"sonance/internal/models"
	"sonance/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestFactory_CreateUserHashesPassword(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := NewFactory(db, Options{Seed: 7})

	u, err := f.CreateUser(func(u *models.User) { u.ProfilePublic = false })
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.False(t, u.ProfilePublic)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(DefaultPassword)))

	other, err := f.CreateUser()
	require.NoError(t, err)
	assert.NotEqual(t, u.Username, other.Username)
}

func TestFactory_Pick(t *testing.T) {
	f := NewFactory(nil, Options{Seed: 3})

	got := f.Pick(5, 3, 2)
	require.Len(t, got, 3)
	seen := map[int]bool{}
	for _, i := range got {
		assert.NotEqual(t, 2, i)
		assert.False(t, seen[i])
		seen[i] = true
	}
	assert.Len(t, f.Pick(3, 10, 0), 2)
}

func TestSeeder_Run(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ctx := context.Background()
	s := NewSeeder(db, Options{NumUsers: 10, NumPosts: 15, SkipBcrypt: true, Seed: 42})

	sum, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, sum.Users)
	assert.Equal(t, 15, sum.Posts)
	assert.Equal(t, 3, sum.Trunks)

	var mod models.User
	require.NoError(t, db.Where("username = ?", "moderator").First(&mod).Error)
	assert.True(t, mod.IsModerator)

	var edges, notes int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&edges).Error)
	require.NoError(t, db.Model(&models.Notification{}).Count(&notes).Error)
	assert.Equal(t, int64(10*followsPerUser), edges)
	assert.Positive(t, notes)

	require.NoError(t, s.ClearAll())
	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users)
}
