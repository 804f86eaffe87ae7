package models

import "time"

// Instructor is the single teaching role in the system. It owns every
// assignment and is the only principal allowed to grade.
type Instructor struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	Name         string    `gorm:"size:200;not null" json:"name"`
	Email        string    `gorm:"size:160" json:"email"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Assignments  []Assignment
}
