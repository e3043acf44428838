package models

import (
	"time"
)

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Post      *Post     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ParentID  *uint     `gorm:"index" json:"parent_id"` // Nullable for top-level comments
	Parent    *Comment  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    string    `gorm:"size:50;not null;index" json:"user_id"`
	Nickname  string    `gorm:"size:20;not null" json:"nickname"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// IsReply reports whether the comment answers another comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// TargetType is the like target this comment is addressed as.
func (c *Comment) TargetType() TargetType {
	if c.IsReply() {
		return TargetReply
	}
	return TargetComment
}

// CommentAlias records the nickname a user was given on one post.
// Both unique indexes are what serialise concurrent allocations.
type CommentAlias struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_alias_post_user;uniqueIndex:idx_alias_post_nickname" json:"post_id"`
	Post      *Post     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    string    `gorm:"size:50;not null;uniqueIndex:idx_alias_post_user" json:"user_id"`
	Nickname  string    `gorm:"size:20;not null;uniqueIndex:idx_alias_post_nickname" json:"nickname"`
	CreatedAt time.Time `json:"created_at"`
}
