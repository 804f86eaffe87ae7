package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/classroom-api/internal/dto"
	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/internal/repository"
)

// ErrAssignmentNotFound indicates the requested assignment does not exist
// or belongs to another instructor; the two cases are indistinguishable.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrAssignmentLocked indicates the assignment already has submissions and
// can no longer be edited.
var ErrAssignmentLocked = errors.New("assignment has submissions and cannot be edited")

// ErrInvalidDueDate indicates the due date is not a YYYY-MM-DD value.
var ErrInvalidDueDate = errors.New("invalid due date")

// AssignmentService exposes the assignment lifecycle for the instructor.
type AssignmentService interface {
	ListForInstructor(ctx context.Context, instructorID uint) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, instructorID, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, instructorID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, instructorID, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, instructorID, id uint) (int64, error)
	Roster(ctx context.Context, instructorID, id uint) (dto.AssignmentRosterResponse, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	students    repository.StudentRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	activity    ActivityRecorder
	events      EventPublisher
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	students repository.StudentRepository,
	validate *validator.Validate,
	activity ActivityRecorder,
	events EventPublisher,
	logger zerolog.Logger,
) AssignmentService {
	if events == nil {
		events = NewNoopPublisher()
	}

	return &assignmentService{
		assignments: assignments,
		submissions: submissions,
		students:    students,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		activity:    activity,
		events:      events,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) ListForInstructor(ctx context.Context, instructorID uint) ([]dto.AssignmentResponse, error) {
	assignments, err := s.assignments.ListByInstructor(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		response, err := s.withStats(ctx, assignment)
		if err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}

	return responses, nil
}

func (s *assignmentService) Get(ctx context.Context, instructorID, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.ownedAssignment(ctx, instructorID, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	return s.withStats(ctx, assignment)
}

func (s *assignmentService) Create(ctx context.Context, instructorID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	dueDate, err := time.Parse(dto.DueDateLayout, payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, fmt.Errorf("%w: %v", ErrInvalidDueDate, err)
	}

	assignment := models.Assignment{
		InstructorID: instructorID,
		Title:        s.sanitizer.Sanitize(payload.Title),
		Description:  s.sanitizer.Sanitize(payload.Description),
		DueDate:      dueDate,
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment created")
	s.recordActivity(ctx, instructorID, "assignment.created", assignment.ID, map[string]interface{}{
		"title": assignment.Title,
	})
	s.events.Publish(ctx, Event{Type: "assignment.created", Data: map[string]interface{}{
		"assignment_id": assignment.ID,
		"instructor_id": instructorID,
	}})

	return s.withStats(ctx, assignment)
}

func (s *assignmentService) Update(ctx context.Context, instructorID, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.ownedAssignment(ctx, instructorID, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	counts, err := s.submissions.CountByAssignment(ctx, assignment.ID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if counts.Total > 0 {
		return dto.AssignmentResponse{}, ErrAssignmentLocked
	}

	if payload.Title != nil {
		assignment.Title = s.sanitizer.Sanitize(*payload.Title)
	}

	if payload.Description != nil {
		assignment.Description = s.sanitizer.Sanitize(*payload.Description)
	}

	if payload.DueDate != nil {
		dueDate, err := time.Parse(dto.DueDateLayout, *payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, fmt.Errorf("%w: %v", ErrInvalidDueDate, err)
		}
		assignment.DueDate = dueDate
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment updated")
	s.recordActivity(ctx, instructorID, "assignment.updated", assignment.ID, map[string]interface{}{
		"title": assignment.Title,
	})
	s.events.Publish(ctx, Event{Type: "assignment.updated", Data: map[string]interface{}{
		"assignment_id": assignment.ID,
		"instructor_id": instructorID,
	}})

	return s.withStats(ctx, assignment)
}

// Delete is always permitted and cascades submissions; it returns the
// number of submissions removed for confirmation messaging.
func (s *assignmentService) Delete(ctx context.Context, instructorID, id uint) (int64, error) {
	assignment, err := s.ownedAssignment(ctx, instructorID, id)
	if err != nil {
		return 0, err
	}

	removed, err := s.assignments.DeleteCascade(ctx, assignment.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrAssignmentNotFound
		}
		return 0, err
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Int64("submissions_removed", removed).
		Msg("assignment deleted")
	s.recordActivity(ctx, instructorID, "assignment.deleted", assignment.ID, map[string]interface{}{
		"title":               assignment.Title,
		"submissions_removed": removed,
	})
	s.events.Publish(ctx, Event{Type: "assignment.deleted", Data: map[string]interface{}{
		"assignment_id": assignment.ID,
		"instructor_id": instructorID,
	}})

	return removed, nil
}

// Roster lists every active student for one assignment and marks who has
// submitted. Students without a submission row are reported as "pending".
func (s *assignmentService) Roster(ctx context.Context, instructorID, id uint) (dto.AssignmentRosterResponse, error) {
	assignment, err := s.ownedAssignment(ctx, instructorID, id)
	if err != nil {
		return dto.AssignmentRosterResponse{}, err
	}

	assignmentResponse, err := s.withStats(ctx, assignment)
	if err != nil {
		return dto.AssignmentRosterResponse{}, err
	}

	students, err := s.students.ListActive(ctx)
	if err != nil {
		return dto.AssignmentRosterResponse{}, err
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{AssignmentID: &assignment.ID})
	if err != nil {
		return dto.AssignmentRosterResponse{}, err
	}

	byStudent := make(map[uint]models.Submission, len(submissions))
	for _, submission := range submissions {
		byStudent[submission.StudentID] = submission
	}

	entries := make([]dto.RosterEntry, 0, len(students))
	for _, student := range students {
		entry := dto.RosterEntry{
			Student: dto.StudentLite{
				ID:                 student.ID,
				Name:               student.Name,
				RegistrationNumber: student.RegistrationNumber,
			},
			Status: "pending",
		}

		if submission, ok := byStudent[student.ID]; ok {
			response := dto.NewSubmissionResponse(submission)
			entry.Submission = &response
			entry.Status = submission.Status()
		}

		entries = append(entries, entry)
	}

	return dto.AssignmentRosterResponse{
		Assignment: assignmentResponse,
		Entries:    entries,
	}, nil
}

func (s *assignmentService) ownedAssignment(ctx context.Context, instructorID, id uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByIDForInstructor(ctx, id, instructorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (s *assignmentService) withStats(ctx context.Context, assignment models.Assignment) (dto.AssignmentResponse, error) {
	counts, err := s.submissions.CountByAssignment(ctx, assignment.ID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	response := dto.NewAssignmentResponse(assignment)
	response.Stats = &dto.AssignmentStats{
		TotalSubmissions:   counts.Total,
		PendingSubmissions: counts.Pending,
		GradedSubmissions:  counts.Graded,
		PastDue:            assignment.IsPastDue(s.now()),
		DaysUntilDue:       assignment.DaysUntilDue(s.now()),
	}

	return response, nil
}

func (s *assignmentService) recordActivity(ctx context.Context, instructorID uint, action string, entityID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}

	id := entityID
	entry := ActivityEntry{
		Actor:      ActivityActor{ID: instructorID, Role: "instructor"},
		Action:     action,
		EntityType: "assignment",
		EntityID:   &id,
		Metadata:   metadata,
	}
	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record activity")
	}
}
