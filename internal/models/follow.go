package models

import (
	"time"
)

// FollowStatus is the state of the ordered (follower, following) pair.
type FollowStatus string

const (
	FollowStatusNone     FollowStatus = "NOT_FOLLOWING"
	FollowStatusPending  FollowStatus = "PENDING"
	FollowStatusAccepted FollowStatus = "ACCEPTED"
)

// Follow is a directed follow edge. At most one row exists per ordered pair.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_follow_pair" json:"follower_id"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_follow_pair;index" json:"following_id"`
	Accepted    bool      `gorm:"not null;default:false" json:"accepted"`
	FollowedAt  time.Time `gorm:"autoCreateTime" json:"followed_at"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}

// Status reports the edge state, treating a nil edge as no relationship.
func (f *Follow) Status() FollowStatus {
	switch {
	case f == nil:
		return FollowStatusNone
	case f.Accepted:
		return FollowStatusAccepted
	default:
		return FollowStatusPending
	}
}

// UserBlock is a directed block edge. It has no effect on follow edges.
type UserBlock struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BlockerID uint      `gorm:"not null;uniqueIndex:idx_block_pair" json:"blocker_id"`
	BlockedID uint      `gorm:"not null;uniqueIndex:idx_block_pair" json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (UserBlock) TableName() string {
	return "user_blocks"
}
