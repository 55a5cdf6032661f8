package models

import (
	"time"
)

// FlagThreshold is the flag count at which content is hidden pending review.
const FlagThreshold = 3

// Flag records one report of one content item. A reporter may flag a given
// item once.
type Flag struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	ReporterID     uint        `gorm:"not null;uniqueIndex:idx_flag_reporter_content" json:"reporter_id"`
	ContentKind    ContentKind `gorm:"type:varchar(16);not null;uniqueIndex:idx_flag_reporter_content;index:idx_flag_content" json:"content_kind"`
	ContentID      uint        `gorm:"not null;uniqueIndex:idx_flag_reporter_content;index:idx_flag_content" json:"content_id"`
	ReportedUserID uint        `gorm:"not null;index" json:"reported_user_id"`
	Reason         string      `json:"reason"`
	Reviewed       bool        `gorm:"not null;default:false;index" json:"reviewed"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Ref returns the flagged content reference.
func (f *Flag) Ref() ContentRef {
	return ContentRef{Kind: f.ContentKind, ID: f.ContentID}
}
