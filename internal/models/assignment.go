package models

import "time"

// Assignment is an activity posted by the instructor. Once at least one
// submission references it, title/description/due date are locked; the
// lifecycle service enforces this, not the storage layer.
type Assignment struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	InstructorID uint         `gorm:"not null;index" json:"instructor_id"`
	Title        string       `gorm:"size:200;not null" json:"title"`
	Description  string       `gorm:"type:text;not null" json:"description"`
	DueDate      time.Time    `gorm:"not null;index" json:"due_date"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	Instructor   Instructor   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Submissions  []Submission `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// IsPastDue reports whether the due date lies before the reference date.
// Deadlines are date-granular: an assignment due today is not past due.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return truncateToDate(reference).After(truncateToDate(a.DueDate))
}

// DaysUntilDue returns the signed number of whole days between the reference
// date and the due date. Negative once the deadline has passed.
func (a Assignment) DaysUntilDue(reference time.Time) int {
	due := truncateToDate(a.DueDate)
	ref := truncateToDate(reference)
	return int(due.Sub(ref).Hours() / 24)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
