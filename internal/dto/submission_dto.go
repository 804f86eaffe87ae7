package dto

import (
	"time"

	"github.com/noah-isme/classroom-api/internal/models"
)

// SubmitRequest is the payload a student sends when answering an assignment.
type SubmitRequest struct {
	ResponseText string `json:"response_text" form:"response_text"`
}

// GradeRequest carries the instructor's score and feedback. Both fields are
// optional: feedback may be saved before a score is assigned. The grading
// endpoint accepts form-encoded bodies.
type GradeRequest struct {
	Score    *float64 `json:"score" form:"score" validate:"omitempty,gte=0,lte=10"`
	Feedback *string  `json:"feedback" form:"feedback"`
}

// StudentLite summarizes a student without exposing credentials.
type StudentLite struct {
	ID                 uint   `json:"id"`
	Name               string `json:"name"`
	RegistrationNumber string `json:"registration_number"`
}

// AssignmentLite summarizes an assignment in submission responses.
type AssignmentLite struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	DueDate string `json:"due_date"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID                uint           `json:"id"`
	AssignmentID      uint           `json:"assignment_id"`
	StudentID         uint           `json:"student_id"`
	ResponseText      string         `json:"response_text"`
	Score             *float64       `json:"score"`
	Feedback          *string        `json:"feedback"`
	Status            string         `json:"status"`
	SubmittedAt       time.Time      `json:"submitted_at"`
	GradedAt          *time.Time     `json:"graded_at"`
	TurnaroundSeconds *float64       `json:"turnaround_seconds,omitempty"`
	Assignment        AssignmentLite `json:"assignment"`
	Student           StudentLite    `json:"student"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		ResponseText: model.ResponseText,
		Score:        model.Score,
		Feedback:     model.Feedback,
		Status:       model.Status(),
		SubmittedAt:  model.SubmittedAt,
		GradedAt:     model.GradedAt,
	}

	if turnaround, ok := model.Turnaround(); ok {
		seconds := turnaround.Seconds()
		response.TurnaroundSeconds = &seconds
	}

	if model.Assignment.ID != 0 {
		response.Assignment = AssignmentLite{
			ID:      model.Assignment.ID,
			Title:   model.Assignment.Title,
			DueDate: model.Assignment.DueDate.Format(DueDateLayout),
		}
	}

	if model.Student.ID != 0 {
		response.Student = StudentLite{
			ID:                 model.Student.ID,
			Name:               model.Student.Name,
			RegistrationNumber: model.Student.RegistrationNumber,
		}
	}

	return response
}

// NewSubmissionResponseSlice converts a slice of models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}

// RosterEntry marks, for one active student, whether an assignment was answered.
type RosterEntry struct {
	Student    StudentLite         `json:"student"`
	Status     string              `json:"status"`
	Submission *SubmissionResponse `json:"submission,omitempty"`
}

// AssignmentRosterResponse is the instructor's per-assignment grading view.
type AssignmentRosterResponse struct {
	Assignment AssignmentResponse `json:"assignment"`
	Entries    []RosterEntry      `json:"entries"`
}

// StudentAssignmentView is one row of the student's assignment list. Status
// here is three-way: "pending" means no submission exists yet.
type StudentAssignmentView struct {
	Assignment AssignmentResponse  `json:"assignment"`
	Status     string              `json:"status"`
	PastDue    bool                `json:"past_due"`
	Submission *SubmissionResponse `json:"submission,omitempty"`
}
