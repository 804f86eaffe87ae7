package dto

import (
	"time"

	"github.com/noah-isme/classroom-api/internal/models"
)

// DueDateLayout is the wire format for assignment due dates. Deadlines are
// date-granular, matching how instructors think about them.
const DueDateLayout = "2006-01-02"

// AssignmentCreateRequest describes the payload for creating a new assignment.
type AssignmentCreateRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	DueDate     string `json:"due_date" validate:"required,datetime=2006-01-02"`
}

// AssignmentUpdateRequest describes the payload for updating an assignment.
type AssignmentUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty"`
	DueDate     *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// AssignmentStats aggregates grading progress for one assignment.
type AssignmentStats struct {
	TotalSubmissions   int64 `json:"total_submissions"`
	PendingSubmissions int64 `json:"pending_submissions"`
	GradedSubmissions  int64 `json:"graded_submissions"`
	PastDue            bool  `json:"past_due"`
	DaysUntilDue       int   `json:"days_until_due"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	DueDate     string           `json:"due_date"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Stats       *AssignmentStats `json:"stats,omitempty"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		DueDate:     model.DueDate.Format(DueDateLayout),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// AssignmentDeleteResponse reports the cascade outcome for confirmation messaging.
type AssignmentDeleteResponse struct {
	ID                 uint  `json:"id"`
	SubmissionsRemoved int64 `json:"submissions_removed"`
}
