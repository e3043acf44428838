package models

import (
	"time"
)

type TargetType string

const (
	TargetPost    TargetType = "post"
	TargetComment TargetType = "comment"
	TargetReply   TargetType = "reply"
)

var targetTypes = map[string]TargetType{
	"post":    TargetPost,
	"comment": TargetComment,
	"reply":   TargetReply,
}

// ParseTargetType accepts only the closed set of like targets.
func ParseTargetType(s string) (TargetType, bool) {
	t, ok := targetTypes[s]
	return t, ok
}

// Like holds one user's like and bookmark flags for one target.
// A row with both flags cleared is deleted.
type Like struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       string     `gorm:"size:50;not null;uniqueIndex:idx_like_user_target" json:"user_id"`
	TargetType   TargetType `gorm:"type:varchar(10);not null;uniqueIndex:idx_like_user_target;index:idx_like_target" json:"target_type"`
	TargetID     uint       `gorm:"not null;uniqueIndex:idx_like_user_target;index:idx_like_target" json:"target_id"`
	IsLiked      bool       `gorm:"not null;default:false" json:"is_liked"`
	IsBookmarked bool       `gorm:"not null;default:false" json:"is_bookmarked"`
	CreatedAt    time.Time  `json:"created_at"`
}
