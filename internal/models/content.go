package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// StoryLifetime is how long a story stays listed after it is posted.
const StoryLifetime = 24 * time.Hour

// ContentKind names a flaggable content table.
type ContentKind string

const (
	ContentPost    ContentKind = "post"
	ContentComment ContentKind = "comment"
	ContentStory   ContentKind = "story"
)

// Table returns the table backing the kind.
func (k ContentKind) Table() string {
	switch k {
	case ContentPost:
		return "posts"
	case ContentComment:
		return "comments"
	case ContentStory:
		return "stories"
	}
	return ""
}

// Title returns the capitalized kind for human-facing text.
func (k ContentKind) Title() string {
	switch k {
	case ContentPost:
		return "Post"
	case ContentComment:
		return "Comment"
	case ContentStory:
		return "Story"
	}
	return string(k)
}

// ParseContentKind validates a kind received from a caller.
func ParseContentKind(s string) (ContentKind, error) {
	switch k := ContentKind(s); k {
	case ContentPost, ContentComment, ContentStory:
		return k, nil
	}
	return "", NewValidationError(fmt.Sprintf("unknown content kind %q", s))
}

// ContentRef addresses one flaggable item.
type ContentRef struct {
	Kind ContentKind `json:"kind"`
	ID   uint        `json:"id"`
}

// Moderation is the flag state shared by posts, comments and stories.
type Moderation struct {
	FlagCount int  `gorm:"not null;default:0" json:"flag_count"`
	Hidden    bool `gorm:"not null;default:false;index" json:"hidden"`
}

// Post is a music post: a caption plus the track it is about.
type Post struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	Caption        string         `json:"caption"`
	SongTitle      string         `json:"song_title"`
	SongArtist     string         `json:"song_artist"`
	AlbumArtURL    string         `json:"album_art_url"`
	CustomImageURL string         `json:"custom_image_url,omitempty"`
	Moderation     `gorm:"embedded"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
}

// ImageURL prefers the uploaded image over the album art.
func (p *Post) ImageURL() string {
	if p.CustomImageURL != "" {
		return p.CustomImageURL
	}
	return p.AlbumArtURL
}

// Comment is a reply on a post.
type Comment struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	PostID     uint           `gorm:"not null;index" json:"post_id"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	Content    string         `gorm:"not null" json:"content"`
	Moderation `gorm:"embedded"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
}

// Like is a user's like on a post.
// The combination of UserID and PostID must be unique.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Story is short-lived media that expires StoryLifetime after posting.
type Story struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	MediaURL   string    `json:"media_url"`
	Caption    string    `json:"caption"`
	ExpiresAt  time.Time `gorm:"not null;index" json:"expires_at"`
	Moderation `gorm:"embedded"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Story) TableName() string {
	return "stories"
}

// Trunk is a named collection of tracks owned by one user.
type Trunk struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"not null;uniqueIndex:idx_trunk_owner_name" json:"owner_id"`
	Name      string    `gorm:"not null;uniqueIndex:idx_trunk_owner_name" json:"name"`
	CreatedAt time.Time `json:"created_at"`

	Branches []Branch `gorm:"foreignKey:TrunkID;constraint:OnDelete:CASCADE" json:"branches,omitempty"`
}

// Branch is a track someone added to a trunk.
type Branch struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TrunkID     uint      `gorm:"not null;index" json:"trunk_id"`
	UserID      uint      `gorm:"not null" json:"user_id"`
	SongTitle   string    `gorm:"not null" json:"song_title"`
	SongArtist  string    `json:"song_artist"`
	AlbumArtURL string    `json:"album_art_url"`
	CreatedAt   time.Time `json:"created_at"`
}
