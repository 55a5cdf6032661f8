package models

import (
	"time"
)

// NotificationType enumerates the kinds of notification rows.
type NotificationType string

const (
	NotificationLike           NotificationType = "LIKE"
	NotificationComment        NotificationType = "COMMENT"
	NotificationFollow         NotificationType = "FOLLOW"
	NotificationFollowRequest  NotificationType = "FOLLOW_REQUEST"
	NotificationFollowAccepted NotificationType = "FOLLOW_ACCEPTED"
	NotificationBranchAdded    NotificationType = "BRANCH_ADDED"
)

// Notification is one row in a recipient's inbox. Rows referencing a follow
// edge share its lifecycle.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"not null;index:idx_notification_recipient" json:"recipient_id"`
	SenderID    uint             `gorm:"not null" json:"sender_id"`
	Type        NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	Read        bool             `gorm:"column:is_read;not null;default:false;index:idx_notification_recipient" json:"read"`
	FollowID    *uint            `gorm:"index" json:"follow_id,omitempty"`
	PostID      *uint            `gorm:"index" json:"post_id,omitempty"`
	TrunkName   string           `json:"trunk_name,omitempty"`
	SongTitle   string           `json:"song_title,omitempty"`
	SongArtist  string           `json:"song_artist,omitempty"`
	AlbumArtURL string           `json:"album_art_url,omitempty"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`
}

// ChannelKind is a push transport.
type ChannelKind string

const (
	ChannelWebPush ChannelKind = "web_push"
	ChannelAPNs    ChannelKind = "apns"
)

// PushChannel is a delivery endpoint registered by a user. For web push the
// endpoint is the subscription URL; for APNs it is the device token.
type PushChannel struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    uint        `gorm:"not null;uniqueIndex:idx_push_channel" json:"user_id"`
	Kind      ChannelKind `gorm:"type:varchar(16);not null;uniqueIndex:idx_push_channel" json:"kind"`
	Endpoint  string      `gorm:"not null;uniqueIndex:idx_push_channel" json:"endpoint"`
	P256dh    string      `json:"-"`
	Auth      string      `json:"-"`
	CreatedAt time.Time   `json:"created_at"`
}
