package dto

import (
	"time"

	"github.com/noah-isme/classroom-api/internal/models"
)

// InstructorDashboardResponse aggregates classroom-wide counters.
type InstructorDashboardResponse struct {
	TotalAssignments int64              `json:"total_assignments"`
	TotalStudents    int64              `json:"total_students"`
	TotalSubmissions int64              `json:"total_submissions"`
	PendingGrading   int64              `json:"pending_grading"`
	RecentActivity   []ActivityResponse `json:"recent_activity"`
	GeneratedAt      time.Time          `json:"generated_at"`
}

// ActivityResponse serializes one audit log entry.
type ActivityResponse struct {
	ID         uint                   `json:"id"`
	ActorID    uint                   `json:"actor_id"`
	ActorRole  string                 `json:"actor_role"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   *uint                  `json:"entity_id"`
	Metadata   map[string]interface{} `json:"metadata"`
	CreatedAt  time.Time              `json:"created_at"`
}

// NewActivityResponse converts a model into a DTO.
func NewActivityResponse(model models.ActivityLog) ActivityResponse {
	return ActivityResponse{
		ID:         model.ID,
		ActorID:    model.ActorID,
		ActorRole:  model.ActorRole,
		Action:     model.Action,
		EntityType: model.EntityType,
		EntityID:   model.EntityID,
		Metadata:   model.Metadata,
		CreatedAt:  model.CreatedAt,
	}
}
