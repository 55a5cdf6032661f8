package notifications

import (
	"strconv"
	"strings"

	"sonance/internal/models"
)

// Message is the human-facing rendering of a notification row.
type Message struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	URL      string `json:"url"`
	ImageURL string `json:"image_url,omitempty"`
}

// Render produces the push text for n. sender and post may be nil when the
// rows are gone; the output degrades instead of failing.
func Render(n *models.Notification, sender *models.User, post *models.Post, frontendURL string) Message {
	base := strings.TrimSuffix(frontendURL, "/")
	name := "Someone"
	if sender != nil && sender.Username != "" {
		name = sender.Username
	}

	msg := Message{URL: base + "/notifications"}
	switch n.Type {
	case models.NotificationLike, models.NotificationComment:
		if n.Type == models.NotificationLike {
			msg.Title = name + " liked your post"
		} else {
			msg.Title = name + " commented on your post"
		}
		if post != nil {
			msg.Body = post.Caption
			msg.ImageURL = post.ImageURL()
		}
		if n.PostID != nil {
			msg.URL = base + "/post/" + strconv.FormatUint(uint64(*n.PostID), 10)
		}
	case models.NotificationFollow:
		msg.Title = name + " followed you"
	case models.NotificationFollowRequest:
		msg.Title = name + " sent you a follow request"
	case models.NotificationFollowAccepted:
		msg.Title = name + " accepted your follow request"
	case models.NotificationBranchAdded:
		msg.Title = name + " added a song to your trunk!"
		msg.Body = n.SongTitle + " by " + n.SongArtist
		msg.ImageURL = n.AlbumArtURL
		if n.TrunkName != "" {
			msg.URL = base + "/trunk/" + n.TrunkName
		}
	default:
		msg.Title = name + " sent you a notification"
	}
	return msg
}
