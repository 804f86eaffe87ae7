package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/noah-isme/classroom-api/internal/dto"
	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/internal/repository"
)

var (
	// ErrSubmissionNotFound indicates the submission does not exist.
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrDuplicateSubmission indicates the student already answered this
	// assignment. Submissions are write-once.
	ErrDuplicateSubmission = errors.New("assignment already submitted")

	// ErrEmptyResponse indicates a blank or whitespace-only response body.
	ErrEmptyResponse = errors.New("response text is required")

	// ErrScoreOutOfRange indicates a score outside the 0-10 scale.
	ErrScoreOutOfRange = errors.New("score must be between 0 and 10")

	// ErrForbidden indicates the caller does not own the graded resource.
	ErrForbidden = errors.New("forbidden")
)

// SubmissionService covers the student submission flow and the
// instructor grading flow.
type SubmissionService interface {
	Submit(ctx context.Context, studentID, assignmentID uint, payload dto.SubmitRequest) (dto.SubmissionResponse, error)
	ListForStudent(ctx context.Context, studentID uint) ([]dto.StudentAssignmentView, error)
	ResultForStudent(ctx context.Context, studentID, assignmentID uint) (dto.SubmissionResponse, error)
	ListForInstructor(ctx context.Context, instructorID uint, filter repository.SubmissionFilter) ([]dto.SubmissionResponse, error)
	Grade(ctx context.Context, instructorID, submissionID uint, payload dto.GradeRequest) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	activity    ActivityRecorder
	events      EventPublisher
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService builds a new submission service.
func NewSubmissionService(
	submissions repository.SubmissionRepository,
	assignments repository.AssignmentRepository,
	validate *validator.Validate,
	activity ActivityRecorder,
	events EventPublisher,
	logger zerolog.Logger,
) SubmissionService {
	if events == nil {
		events = NewNoopPublisher()
	}

	return &submissionService{
		submissions: submissions,
		assignments: assignments,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		activity:    activity,
		events:      events,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

// Submit stores a student's one-time answer. Past-due assignments still
// accept submissions; the deadline is informational.
func (s *submissionService) Submit(ctx context.Context, studentID, assignmentID uint, payload dto.SubmitRequest) (dto.SubmissionResponse, error) {
	responseText := strings.TrimSpace(payload.ResponseText)
	if responseText == "" {
		return dto.SubmissionResponse{}, ErrEmptyResponse
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if _, err := s.submissions.GetByAssignmentAndStudent(ctx, assignment.ID, studentID); err == nil {
		return dto.SubmissionResponse{}, ErrDuplicateSubmission
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    studentID,
		ResponseText: s.sanitizer.Sanitize(responseText),
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		// The unique pair index closes the race between the pre-check
		// and the insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.SubmissionResponse{}, ErrDuplicateSubmission
		}
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("student_id", studentID).
		Msg("submission received")
	s.recordActivity(ctx, studentID, "student", "submission.created", submission.ID, map[string]interface{}{
		"assignment_id": assignment.ID,
	})
	s.events.Publish(ctx, Event{Type: "submission.created", Data: map[string]interface{}{
		"submission_id": submission.ID,
		"assignment_id": assignment.ID,
		"student_id":    studentID,
	}})

	submission.Assignment = assignment
	return dto.NewSubmissionResponse(submission), nil
}

// ListForStudent joins every assignment with the student's own submission,
// yielding a three-way status per row: pending, awaiting_grading or graded.
func (s *submissionService) ListForStudent(ctx context.Context, studentID uint) ([]dto.StudentAssignmentView, error) {
	assignments, err := s.assignments.List(ctx)
	if err != nil {
		return nil, err
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{StudentID: &studentID})
	if err != nil {
		return nil, err
	}

	byAssignment := make(map[uint]models.Submission, len(submissions))
	for _, submission := range submissions {
		byAssignment[submission.AssignmentID] = submission
	}

	reference := s.now()
	views := make([]dto.StudentAssignmentView, 0, len(assignments))
	for _, assignment := range assignments {
		view := dto.StudentAssignmentView{
			Assignment: dto.NewAssignmentResponse(assignment),
			Status:     "pending",
			PastDue:    assignment.IsPastDue(reference),
		}

		if submission, ok := byAssignment[assignment.ID]; ok {
			response := dto.NewSubmissionResponse(submission)
			view.Submission = &response
			view.Status = submission.Status()
		}

		views = append(views, view)
	}

	return views, nil
}

// ResultForStudent returns the student's own submission for one assignment,
// including score and feedback once graded.
func (s *submissionService) ResultForStudent(ctx context.Context, studentID, assignmentID uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByAssignmentAndStudent(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ListForInstructor(ctx context.Context, instructorID uint, filter repository.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	if filter.AssignmentID != nil {
		if _, err := s.assignments.GetByIDForInstructor(ctx, *filter.AssignmentID, instructorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAssignmentNotFound
			}
			return nil, err
		}
	}

	submissions, err := s.submissions.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

// Grade assigns or revises a score and feedback. Scores are clamped to two
// decimals; the grading timestamp is set once, on the first score, and is
// never moved by later revisions. An instructor can only grade submissions
// for assignments they own.
func (s *submissionService) Grade(ctx context.Context, instructorID, submissionID uint, payload dto.GradeRequest) (dto.SubmissionResponse, error) {
	ctx, span := otel.Tracer("classroom").Start(ctx, "submission.grade")
	defer span.End()
	span.SetAttributes(attribute.Int("submission.id", int(submissionID)))

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if submission.Assignment.InstructorID != instructorID {
		return dto.SubmissionResponse{}, ErrForbidden
	}

	if payload.Score != nil {
		score := roundScore(*payload.Score)
		if score < 0 || score > 10 {
			return dto.SubmissionResponse{}, ErrScoreOutOfRange
		}

		if submission.GradedAt == nil {
			gradedAt := s.now()
			submission.GradedAt = &gradedAt
		}
		submission.Score = &score
	}

	if payload.Feedback != nil {
		feedback := strings.TrimSpace(s.sanitizer.Sanitize(*payload.Feedback))
		if feedback == "" {
			submission.Feedback = nil
		} else {
			submission.Feedback = &feedback
		}
	}

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("instructor_id", instructorID).
		Msg("submission graded")
	s.recordActivity(ctx, instructorID, "instructor", "submission.graded", submission.ID, map[string]interface{}{
		"assignment_id": submission.AssignmentID,
		"student_id":    submission.StudentID,
	})
	s.events.Publish(ctx, Event{Type: "submission.graded", Data: map[string]interface{}{
		"submission_id": submission.ID,
		"assignment_id": submission.AssignmentID,
		"student_id":    submission.StudentID,
	}})

	return dto.NewSubmissionResponse(submission), nil
}

// roundScore normalizes scores to two decimal places.
func roundScore(score float64) float64 {
	return math.Round(score*100) / 100
}

func (s *submissionService) recordActivity(ctx context.Context, actorID uint, role, action string, entityID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}

	id := entityID
	entry := ActivityEntry{
		Actor:      ActivityActor{ID: actorID, Role: role},
		Action:     action,
		EntityType: "submission",
		EntityID:   &id,
		Metadata:   metadata,
	}
	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record activity")
	}
}
