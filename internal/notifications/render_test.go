package notifications

import (
	"testing"

	"sonance/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Build(1, 1, Like{PostID: 3}), "self notifications are suppressed")

	n := Build(1, 2, FollowRequest{EdgeID: 9})
	if assert.NotNil(t, n) {
		assert.Equal(t, models.NotificationFollowRequest, n.Type)
		assert.Equal(t, uint(9), *n.FollowID)
		assert.Nil(t, n.PostID)
	}

	n = Build(1, 2, BranchAdded{TrunkName: "road", SongTitle: "Song", SongArtist: "Band", AlbumArtURL: "art"})
	assert.Equal(t, "road", n.TrunkName)
	assert.Nil(t, n.FollowID)
}

func TestRender(t *testing.T) {
	t.Parallel()

	postID := uint(42)
	sender := &models.User{Username: "mia"}
	post := &models.Post{ID: postID, Caption: "new single", AlbumArtURL: "album.jpg", CustomImageURL: "custom.jpg"}

	tests := []struct {
		name string
		n    *models.Notification
		post *models.Post
		want Message
	}{
		{
			name: "like",
			n:    &models.Notification{Type: models.NotificationLike, PostID: &postID},
			post: post,
			want: Message{Title: "mia liked your post", Body: "new single", URL: "https://app.test/post/42", ImageURL: "custom.jpg"},
		},
		{
			name: "comment with deleted post",
			n:    &models.Notification{Type: models.NotificationComment, PostID: &postID},
			want: Message{Title: "mia commented on your post", URL: "https://app.test/post/42"},
		},
		{
			name: "follow",
			n:    &models.Notification{Type: models.NotificationFollow},
			want: Message{Title: "mia followed you", URL: "https://app.test/notifications"},
		},
		{
			name: "follow request",
			n:    &models.Notification{Type: models.NotificationFollowRequest},
			want: Message{Title: "mia sent you a follow request", URL: "https://app.test/notifications"},
		},
		{
			name: "follow accepted",
			n:    &models.Notification{Type: models.NotificationFollowAccepted},
			want: Message{Title: "mia accepted your follow request", URL: "https://app.test/notifications"},
		},
		{
			name: "branch added",
			n: &models.Notification{
				Type: models.NotificationBranchAdded, TrunkName: "summer",
				SongTitle: "Tune", SongArtist: "Band", AlbumArtURL: "tune.jpg",
			},
			want: Message{
				Title: "mia added a song to your trunk!", Body: "Tune by Band",
				URL: "https://app.test/trunk/summer", ImageURL: "tune.jpg",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.n, sender, tt.post, "https://app.test/"))
		})
	}
}

func TestRender_MissingSender(t *testing.T) {
	t.Parallel()
	msg := Render(&models.Notification{Type: models.NotificationFollow}, nil, nil, "https://app.test")
	assert.Equal(t, "Someone followed you", msg.Title)
}
