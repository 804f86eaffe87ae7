package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/classroom-api/internal/auth"
	"github.com/noah-isme/classroom-api/internal/dto"
	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/internal/repository"
)

var (
	// ErrStudentNotFound indicates the student does not exist.
	ErrStudentNotFound = errors.New("student not found")

	// ErrDuplicateRegistration indicates the registration number is taken.
	ErrDuplicateRegistration = errors.New("registration number already in use")
)

// StudentService manages the class roster.
type StudentService interface {
	List(ctx context.Context) ([]dto.StudentResponse, error)
	Get(ctx context.Context, id uint) (dto.StudentResponse, error)
	Create(ctx context.Context, instructorID uint, payload dto.StudentCreateRequest) (dto.StudentResponse, error)
	Update(ctx context.Context, instructorID, id uint, payload dto.StudentUpdateRequest) (dto.StudentResponse, error)
}

type studentService struct {
	students    repository.StudentRepository
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	events      EventPublisher
	logger      zerolog.Logger
}

// NewStudentService builds a new roster service.
func NewStudentService(
	students repository.StudentRepository,
	submissions repository.SubmissionRepository,
	assignments repository.AssignmentRepository,
	validate *validator.Validate,
	activity ActivityRecorder,
	events EventPublisher,
	logger zerolog.Logger,
) StudentService {
	if events == nil {
		events = NewNoopPublisher()
	}

	return &studentService{
		students:    students,
		submissions: submissions,
		assignments: assignments,
		validator:   validate,
		activity:    activity,
		events:      events,
		logger:      logger.With().Str("component", "student_service").Logger(),
	}
}

// List returns the active roster with per-student progress stats.
func (s *studentService) List(ctx context.Context) ([]dto.StudentResponse, error) {
	students, err := s.students.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	totalAssignments, err := s.assignments.Count(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.StudentResponse, 0, len(students))
	for _, student := range students {
		response, err := s.withStats(ctx, student, totalAssignments)
		if err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}

	return responses, nil
}

func (s *studentService) Get(ctx context.Context, id uint) (dto.StudentResponse, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}

	totalAssignments, err := s.assignments.Count(ctx)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	return s.withStats(ctx, student, totalAssignments)
}

func (s *studentService) Create(ctx context.Context, instructorID uint, payload dto.StudentCreateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	student := models.Student{
		Name:               strings.TrimSpace(payload.Name),
		RegistrationNumber: strings.TrimSpace(payload.RegistrationNumber),
		PasswordHash:       hash,
		Active:             true,
	}

	if err := s.students.Create(ctx, &student); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.StudentResponse{}, ErrDuplicateRegistration
		}
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Msg("student registered")
	s.recordActivity(ctx, instructorID, "student.created", student.ID, map[string]interface{}{
		"registration_number": student.RegistrationNumber,
	})
	s.events.Publish(ctx, Event{Type: "student.created", Data: map[string]interface{}{
		"student_id": student.ID,
	}})

	return dto.NewStudentResponse(student), nil
}

// Update renames, re-keys the password, or toggles the active flag. The
// registration number never changes after creation.
func (s *studentService) Update(ctx context.Context, instructorID, id uint, payload dto.StudentUpdateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}

	if payload.Name != nil {
		student.Name = strings.TrimSpace(*payload.Name)
	}

	if payload.Active != nil {
		student.Active = *payload.Active
	}

	if payload.Password != nil {
		hash, err := auth.HashPassword(*payload.Password)
		if err != nil {
			return dto.StudentResponse{}, err
		}
		student.PasswordHash = hash
	}

	if err := s.students.Update(ctx, &student); err != nil {
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Msg("student updated")
	s.recordActivity(ctx, instructorID, "student.updated", student.ID, nil)
	s.events.Publish(ctx, Event{Type: "student.updated", Data: map[string]interface{}{
		"student_id": student.ID,
	}})

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) withStats(ctx context.Context, student models.Student, totalAssignments int64) (dto.StudentResponse, error) {
	submitted, err := s.submissions.CountByStudent(ctx, student.ID)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	average, err := s.submissions.AverageScoreByStudent(ctx, student.ID)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	pending := totalAssignments - submitted
	if pending < 0 {
		pending = 0
	}

	response := dto.NewStudentResponse(student)
	response.Stats = &dto.StudentStats{
		TotalAssignments: totalAssignments,
		Submitted:        submitted,
		Pending:          pending,
		AverageScore:     average,
	}

	return response, nil
}

func (s *studentService) recordActivity(ctx context.Context, instructorID uint, action string, entityID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}

	id := entityID
	entry := ActivityEntry{
		Actor:      ActivityActor{ID: instructorID, Role: "instructor"},
		Action:     action,
		EntityType: "student",
		EntityID:   &id,
		Metadata:   metadata,
	}
	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record activity")
	}
}
