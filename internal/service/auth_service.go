package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/classroom-api/internal/auth"
	"github.com/noah-isme/classroom-api/internal/dto"
	"github.com/noah-isme/classroom-api/internal/repository"
	"github.com/noah-isme/classroom-api/internal/session"
)

// ErrInvalidCredentials is returned for any login failure. Unknown account,
// inactive account and wrong password are deliberately indistinguishable so
// the login endpoints cannot be used to enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService authenticates the two classroom roles.
type AuthService interface {
	LoginInstructor(ctx context.Context, payload dto.InstructorLoginRequest) (session.Principal, error)
	LoginStudent(ctx context.Context, payload dto.StudentLoginRequest) (session.Principal, error)
}

type authService struct {
	instructors repository.InstructorRepository
	students    repository.StudentRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewAuthService constructs the authentication service.
func NewAuthService(instructors repository.InstructorRepository, students repository.StudentRepository, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		instructors: instructors,
		students:    students,
		validator:   validate,
		logger:      logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) LoginInstructor(ctx context.Context, payload dto.InstructorLoginRequest) (session.Principal, error) {
	if err := s.validator.Struct(payload); err != nil {
		return session.Principal{}, err
	}

	instructor, err := s.instructors.GetByUsername(ctx, payload.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return session.Principal{}, ErrInvalidCredentials
		}
		return session.Principal{}, err
	}

	if !auth.CheckPassword(payload.Password, instructor.PasswordHash) {
		return session.Principal{}, ErrInvalidCredentials
	}

	s.logger.Info().Uint("instructor_id", instructor.ID).Msg("instructor logged in")

	return session.Principal{
		Role: session.RoleInstructor,
		ID:   instructor.ID,
		Name: instructor.Name,
	}, nil
}

func (s *authService) LoginStudent(ctx context.Context, payload dto.StudentLoginRequest) (session.Principal, error) {
	if err := s.validator.Struct(payload); err != nil {
		return session.Principal{}, err
	}

	student, err := s.students.GetActiveByRegistrationNumber(ctx, payload.RegistrationNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return session.Principal{}, ErrInvalidCredentials
		}
		return session.Principal{}, err
	}

	if !auth.CheckPassword(payload.Password, student.PasswordHash) {
		return session.Principal{}, ErrInvalidCredentials
	}

	s.logger.Info().Uint("student_id", student.ID).Msg("student logged in")

	return session.Principal{
		Role: session.RoleStudent,
		ID:   student.ID,
		Name: student.Name,
	}, nil
}
