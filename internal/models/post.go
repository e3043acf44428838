package models

import (
	"time"
)

type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	AuthorID  string    `gorm:"size:50;not null;index" json:"author_id"`
	Likes     int       `gorm:"not null;default:0" json:"likes"` // cached count of like rows
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
