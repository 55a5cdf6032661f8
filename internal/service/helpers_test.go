package service

import (
	"context"
	"sync"
	"testing"

	"sonance/internal/alerts"
	"sonance/internal/models"
	"sonance/internal/repository"
	"sonance/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type outboxRecorder struct {
	mu    sync.Mutex
	notes []*models.Notification
}

func (o *outboxRecorder) Enqueue(_ context.Context, notes ...*models.Notification) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, n := range notes {
		if n != nil {
			o.notes = append(o.notes, n)
		}
	}
}

func (o *outboxRecorder) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.notes)
}

type fixture struct {
	db     *gorm.DB
	store  repository.Store
	outbox *outboxRecorder
	alerts *alerts.Recorder

	notes       *NotificationService
	follows     *FollowService
	blocks      *BlockService
	visibility  *VisibilityResolver
	flags       *FlagService
	suggestions *SuggestionService
	posts       *PostService
	comments    *CommentService
	stories     *StoryService
	trunks      *TrunkService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenTestDB(t)
	return newFixtureWithStore(db, repository.NewStore(db))
}

func newFixtureWithStore(db *gorm.DB, store repository.Store) *fixture {
	f := &fixture{
		db:     db,
		store:  store,
		outbox: &outboxRecorder{},
		alerts: &alerts.Recorder{},
	}
	f.notes = NewNotificationService(store, f.outbox)
	f.follows = NewFollowService(store, f.notes)
	f.blocks = NewBlockService(store)
	f.visibility = NewVisibilityResolver(f.follows)
	f.flags = NewFlagService(store, f.alerts, "mods@example.com")
	f.suggestions = NewSuggestionService(store)
	f.posts = NewPostService(store, f.notes, f.visibility)
	f.comments = NewCommentService(store, f.notes, f.posts)
	f.stories = NewStoryService(store, f.visibility)
	f.trunks = NewTrunkService(store, f.notes, f.visibility)
	return f
}

func (f *fixture) notificationsFor(t *testing.T, recipientID uint) []models.Notification {
	t.Helper()
	var rows []models.Notification
	require.NoError(t, f.db.Where("recipient_id = ?", recipientID).Order("id").Find(&rows).Error)
	return rows
}

func (f *fixture) edgeCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Follow{}).Count(&n).Error)
	return n
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, models.HasCode(err, code), "expected %s, got %v", code, err)
}
