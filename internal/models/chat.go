package models

import (
	"time"
)

type ChatRoom struct {
	ID                  string    `gorm:"primaryKey;size:50" json:"id"`
	Title               string    `gorm:"size:100;not null" json:"title"`
	Categories          string    `gorm:"type:text;not null" json:"-"` // JSON array
	PasswordHash        string    `gorm:"size:100" json:"-"`
	AllowDefaultProfile bool      `gorm:"not null" json:"allow_default_profile"`
	CreatedAt           time.Time `gorm:"index" json:"created_at"`
}

type ChatParticipant struct {
	RoomID   string    `gorm:"primaryKey;size:50" json:"room_id"`
	Room     *ChatRoom `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID   string    `gorm:"primaryKey;size:50" json:"user_id"`
	UserName string    `gorm:"size:100;not null" json:"user_name"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

type ChatMessage struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	RoomID  string    `gorm:"size:50;not null;index" json:"room_id"`
	Room    *ChatRoom `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Sender  string    `gorm:"size:100;not null" json:"sender"`
	Content string    `gorm:"type:text;not null" json:"content"`
	SentAt  time.Time `gorm:"autoCreateTime;index" json:"sent_at"`
}
