package dto

import (
	"time"

	"github.com/noah-isme/classroom-api/internal/models"
)

// StudentCreateRequest registers a new student on the roster.
type StudentCreateRequest struct {
	Name               string `json:"name" validate:"required,max=200"`
	RegistrationNumber string `json:"registration_number" validate:"required,max=50"`
	Password           string `json:"password" validate:"required,min=6"`
}

// StudentUpdateRequest renames or (de)activates a student. The registration
// number is immutable and deliberately absent here.
type StudentUpdateRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=200"`
	Active   *bool   `json:"active"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

// StudentStats summarizes a student's progress across all assignments.
type StudentStats struct {
	TotalAssignments int64    `json:"total_assignments"`
	Submitted        int64    `json:"submitted"`
	Pending          int64    `json:"pending"`
	AverageScore     *float64 `json:"average_score"`
}

// StudentResponse is the roster representation returned to the instructor.
type StudentResponse struct {
	ID                 uint          `json:"id"`
	Name               string        `json:"name"`
	RegistrationNumber string        `json:"registration_number"`
	Active             bool          `json:"active"`
	CreatedAt          time.Time     `json:"created_at"`
	Stats              *StudentStats `json:"stats,omitempty"`
}

// NewStudentResponse converts a model into a DTO.
func NewStudentResponse(model models.Student) StudentResponse {
	return StudentResponse{
		ID:                 model.ID,
		Name:               model.Name,
		RegistrationNumber: model.RegistrationNumber,
		Active:             model.Active,
		CreatedAt:          model.CreatedAt,
	}
}
