package models

import "time"

// Student is identified by an academic registration number rather than a
// full account. The registration number is unique and immutable once set.
type Student struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Name               string    `gorm:"size:200;not null" json:"name"`
	RegistrationNumber string    `gorm:"size:50;uniqueIndex;not null" json:"registration_number"`
	PasswordHash       string    `gorm:"size:128;not null" json:"-"`
	Active             bool      `gorm:"not null;default:true;index" json:"active"`
	CreatedAt          time.Time `json:"created_at"`
	Submissions        []Submission
}
