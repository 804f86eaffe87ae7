package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-api/internal/auth"
	"github.com/noah-isme/classroom-api/internal/dto"
	"github.com/noah-isme/classroom-api/internal/models"
)

func newStudentFixture() (*memoryStudentRepo, *memorySubmissionRepo, *memoryAssignmentRepo, StudentService) {
	students := &memoryStudentRepo{}
	submissions := &memorySubmissionRepo{}
	assignments := &memoryAssignmentRepo{submissions: submissions}
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewStudentService(students, submissions, assignments, validate, nil, nil, testLogger())
	return students, submissions, assignments, svc
}

func TestCreateStudentHashesPassword(t *testing.T) {
	students, _, _, svc := newStudentFixture()

	created, err := svc.Create(context.Background(), 1, dto.StudentCreateRequest{
		Name:               "Ana",
		RegistrationNumber: "RA100",
		Password:           "segredo",
	})
	require.NoError(t, err)
	require.True(t, created.Active)

	stored, err := students.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotEqual(t, "segredo", stored.PasswordHash)
	require.True(t, auth.CheckPassword("segredo", stored.PasswordHash))
}

func TestCreateStudentDuplicateRegistration(t *testing.T) {
	_, _, _, svc := newStudentFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, dto.StudentCreateRequest{
		Name:               "Ana",
		RegistrationNumber: "RA100",
		Password:           "segredo",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, 1, dto.StudentCreateRequest{
		Name:               "Outra Ana",
		RegistrationNumber: "RA100",
		Password:           "segredo",
	})
	require.ErrorIs(t, err, ErrDuplicateRegistration)
}

func TestUpdateStudentKeepsRegistration(t *testing.T) {
	students, _, _, svc := newStudentFixture()
	students.items = []models.Student{
		{ID: 1, Name: "Ana", RegistrationNumber: "RA100", PasswordHash: "x", Active: true},
	}

	name := "Ana Clara"
	inactive := false
	updated, err := svc.Update(context.Background(), 1, 1, dto.StudentUpdateRequest{
		Name:   &name,
		Active: &inactive,
	})
	require.NoError(t, err)
	require.Equal(t, "Ana Clara", updated.Name)
	require.Equal(t, "RA100", updated.RegistrationNumber)
	require.False(t, updated.Active)
}

func TestStudentStats(t *testing.T) {
	students, submissions, assignments, svc := newStudentFixture()
	ctx := context.Background()
	students.items = []models.Student{
		{ID: 1, Name: "Ana", RegistrationNumber: "RA100", Active: true},
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, assignments.Create(ctx, &models.Assignment{
			InstructorID: 1,
			Title:        "Atividade",
			DueDate:      time.Now(),
		}))
	}
	submissions.items = []models.Submission{
		{ID: 1, AssignmentID: 1, StudentID: 1, Score: ptrFloat(8), SubmittedAt: time.Now()},
		{ID: 2, AssignmentID: 2, StudentID: 1, Score: ptrFloat(6), SubmittedAt: time.Now()},
	}

	response, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, response.Stats)
	require.Equal(t, int64(3), response.Stats.TotalAssignments)
	require.Equal(t, int64(2), response.Stats.Submitted)
	require.Equal(t, int64(1), response.Stats.Pending)
	require.NotNil(t, response.Stats.AverageScore)
	require.InDelta(t, 7.0, *response.Stats.AverageScore, 0.001)
}

func TestStudentStatsNoGrades(t *testing.T) {
	students, _, _, svc := newStudentFixture()
	students.items = []models.Student{
		{ID: 1, Name: "Ana", RegistrationNumber: "RA100", Active: true},
	}

	response, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Nil(t, response.Stats.AverageScore)
}
