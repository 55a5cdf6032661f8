// Package notifications builds, renders and delivers inbox notifications.
package notifications

import "sonance/internal/models"

// Event is something that happened to a recipient. Each variant carries the
// payload its notification row needs.
type Event interface {
	Type() models.NotificationType
	apply(n *models.Notification)
}

// Like is emitted when someone likes the recipient's post.
type Like struct{ PostID uint }

// Comment is emitted when someone comments on the recipient's post.
type Comment struct{ PostID uint }

// Follow is emitted when someone follows a public account.
type Follow struct{ EdgeID uint }

// FollowRequest is emitted when someone asks to follow a private account.
type FollowRequest struct{ EdgeID uint }

// FollowAccepted is emitted to the requester once their request is accepted.
type FollowAccepted struct{ EdgeID uint }

// BranchAdded is emitted when someone adds a song to the recipient's trunk.
type BranchAdded struct {
	TrunkName   string
	SongTitle   string
	SongArtist  string
	AlbumArtURL string
}

func (Like) Type() models.NotificationType           { return models.NotificationLike }
func (Comment) Type() models.NotificationType        { return models.NotificationComment }
func (Follow) Type() models.NotificationType         { return models.NotificationFollow }
func (FollowRequest) Type() models.NotificationType  { return models.NotificationFollowRequest }
func (FollowAccepted) Type() models.NotificationType { return models.NotificationFollowAccepted }
func (BranchAdded) Type() models.NotificationType    { return models.NotificationBranchAdded }

func (e Like) apply(n *models.Notification)           { n.PostID = ptr(e.PostID) }
func (e Comment) apply(n *models.Notification)        { n.PostID = ptr(e.PostID) }
func (e Follow) apply(n *models.Notification)         { n.FollowID = ptr(e.EdgeID) }
func (e FollowRequest) apply(n *models.Notification)  { n.FollowID = ptr(e.EdgeID) }
func (e FollowAccepted) apply(n *models.Notification) { n.FollowID = ptr(e.EdgeID) }

func (e BranchAdded) apply(n *models.Notification) {
	n.TrunkName = e.TrunkName
	n.SongTitle = e.SongTitle
	n.SongArtist = e.SongArtist
	n.AlbumArtURL = e.AlbumArtURL
}

// Build returns the unsaved row for ev, or nil when the recipient is the
// sender. Nobody is notified about their own actions.
func Build(recipientID, senderID uint, ev Event) *models.Notification {
	if recipientID == senderID {
		return nil
	}
	n := &models.Notification{
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        ev.Type(),
	}
	ev.apply(n)
	return n
}

func ptr(v uint) *uint {
	return &v
}
