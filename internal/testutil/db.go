// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"sonance/internal/database"
	"sonance/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTestDB returns a migrated SQLite database in a temp directory. The pool
// holds a single connection so concurrent callers queue instead of hitting
// SQLITE_BUSY.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", filepath.Join(t.TempDir(), "test.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser persists an account with the given username and visibility.
func CreateUser(t *testing.T, db *gorm.DB, username string, public bool) *models.User {
	t.Helper()
	u := &models.User{
		Username:      username,
		Email:         username + "@example.com",
		ProfilePublic: public,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreatePost persists a post owned by userID.
func CreatePost(t *testing.T, db *gorm.DB, userID uint, caption string) *models.Post {
	t.Helper()
	p := &models.Post{
		UserID:      userID,
		Caption:     caption,
		SongTitle:   "Song",
		SongArtist:  "Artist",
		AlbumArtURL: "https://img.example/art.jpg",
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// Follow persists a follow edge directly, bypassing the service.
func Follow(t *testing.T, db *gorm.DB, followerID, followingID uint, accepted bool) *models.Follow {
	t.Helper()
	f := &models.Follow{FollowerID: followerID, FollowingID: followingID, Accepted: accepted}
	require.NoError(t, db.Create(f).Error)
	return f
}
