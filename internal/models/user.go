package models

import "time"

// MaxLevel is the hard cap on user level progression.
const MaxLevel = 60

// User roles recognised by the API.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User represents a participant accumulating XP, levels and coins.
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	DisplayName string     `gorm:"size:255;not null" json:"display_name"`
	Email       string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role        string     `gorm:"size:32;not null;default:student" json:"role"`
	XP          int        `gorm:"not null;default:0" json:"xp"`
	Level       int        `gorm:"not null;default:1" json:"level"`
	Coins       int        `gorm:"not null;default:0" json:"coins"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
