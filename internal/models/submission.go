package models

import "time"

// Submission statuses derived from stored state. There is no persisted
// status column: a submission is graded exactly when it carries a score.
const (
	SubmissionStatusAwaitingGrading = "awaiting_grading"
	SubmissionStatusGraded          = "graded"
)

// Submission is a student's single text response to an assignment. The
// (assignment, student) pair is unique; a student submits at most once.
type Submission struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AssignmentID uint       `gorm:"not null;uniqueIndex:idx_assignment_student" json:"assignment_id"`
	StudentID    uint       `gorm:"not null;uniqueIndex:idx_assignment_student" json:"student_id"`
	ResponseText string     `gorm:"type:text;not null" json:"response_text"`
	Score        *float64   `json:"score"`
	Feedback     *string    `gorm:"type:text" json:"feedback"`
	SubmittedAt  time.Time  `gorm:"autoCreateTime" json:"submitted_at"`
	GradedAt     *time.Time `json:"graded_at"`
	Assignment   Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Student      Student    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// Status derives the submission state from the stored score.
func (s Submission) Status() string {
	if s.Score != nil {
		return SubmissionStatusGraded
	}
	return SubmissionStatusAwaitingGrading
}

// IsGraded reports whether a score has been assigned.
func (s Submission) IsGraded() bool {
	return s.Score != nil
}

// Turnaround returns the elapsed time between submission and grading.
// It is defined only for graded submissions.
func (s Submission) Turnaround() (time.Duration, bool) {
	if s.GradedAt == nil {
		return 0, false
	}
	return s.GradedAt.Sub(s.SubmittedAt), true
}
