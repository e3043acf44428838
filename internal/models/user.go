package models

import (
	"time"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

// Student accounts are keyed by student number (e.g. "1101").
type Student struct {
	ID        string    `gorm:"primaryKey;size:10" json:"id"`
	Name      string    `gorm:"size:50;not null" json:"name"`
	Password  string    `gorm:"size:255;not null" json:"-"` // Hash
	CreatedAt time.Time `json:"created_at"`
}

// Teacher accounts are keyed by name; the name doubles as the user id.
type Teacher struct {
	Name      string    `gorm:"primaryKey;size:50" json:"name"`
	Password  string    `gorm:"size:255;not null" json:"-"` // Hash
	CreatedAt time.Time `json:"created_at"`
}

// RosterStudent is a pre-registered student allowed to sign up.
type RosterStudent struct {
	ID   string `gorm:"primaryKey;size:10" json:"id"`
	Name string `gorm:"size:50;not null" json:"name"`
}

// RosterTeacher is a pre-registered teacher allowed to sign up.
type RosterTeacher struct {
	Name string `gorm:"primaryKey;size:50" json:"name"`
}

// Identity is the logged-in caller as stored in the session.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

func (i Identity) IsTeacher() bool {
	return i.Role == RoleTeacher
}
