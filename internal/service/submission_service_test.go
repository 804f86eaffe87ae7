package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-api/internal/dto"
	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/internal/repository"
)

func newSubmissionFixture() (*memoryAssignmentRepo, *memorySubmissionRepo, SubmissionService) {
	submissions := &memorySubmissionRepo{}
	assignments := &memoryAssignmentRepo{submissions: submissions}
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewSubmissionService(submissions, assignments, validate, nil, nil, testLogger())
	return assignments, submissions, svc
}

func TestSubmitRejectsEmptyResponse(t *testing.T) {
	_, _, svc := newSubmissionFixture()

	_, err := svc.Submit(context.Background(), 1, 1, dto.SubmitRequest{ResponseText: "   \n"})
	require.ErrorIs(t, err, ErrEmptyResponse)
}

func TestSubmitUnknownAssignment(t *testing.T) {
	_, _, svc := newSubmissionFixture()

	_, err := svc.Submit(context.Background(), 1, 99, dto.SubmitRequest{ResponseText: "minha resposta"})
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestSubmitOncePerAssignment(t *testing.T) {
	assignments, _, svc := newSubmissionFixture()
	require.NoError(t, assignments.Create(context.Background(), &models.Assignment{
		InstructorID: 1,
		Title:        "Redação",
		DueDate:      time.Now().Add(48 * time.Hour),
	}))

	first, err := svc.Submit(context.Background(), 7, 1, dto.SubmitRequest{ResponseText: "primeira tentativa"})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusAwaitingGrading, first.Status)

	_, err = svc.Submit(context.Background(), 7, 1, dto.SubmitRequest{ResponseText: "segunda tentativa"})
	require.ErrorIs(t, err, ErrDuplicateSubmission)
}

func TestSubmitAcceptsPastDueAssignment(t *testing.T) {
	assignments, _, svc := newSubmissionFixture()
	require.NoError(t, assignments.Create(context.Background(), &models.Assignment{
		InstructorID: 1,
		Title:        "Atrasada",
		DueDate:      time.Now().Add(-72 * time.Hour),
	}))

	_, err := svc.Submit(context.Background(), 3, 1, dto.SubmitRequest{ResponseText: "melhor tarde do que nunca"})
	require.NoError(t, err)
}

func TestGradeScoreBounds(t *testing.T) {
	_, submissions, svc := newSubmissionFixture()
	submissions.items = []models.Submission{{
		ID:           1,
		AssignmentID: 1,
		StudentID:    2,
		ResponseText: "resposta",
		SubmittedAt:  time.Now(),
		Assignment:   models.Assignment{ID: 1, InstructorID: 1},
	}}

	graded, err := svc.Grade(context.Background(), 1, 1, dto.GradeRequest{Score: ptrFloat(10)})
	require.NoError(t, err)
	require.Equal(t, 10.0, *graded.Score)

	_, err = svc.Grade(context.Background(), 1, 1, dto.GradeRequest{Score: ptrFloat(10.01)})
	require.Error(t, err)

	_, err = svc.Grade(context.Background(), 1, 1, dto.GradeRequest{Score: ptrFloat(-0.01)})
	require.Error(t, err)
}

func TestGradeRoundsToTwoDecimals(t *testing.T) {
	_, submissions, svc := newSubmissionFixture()
	submissions.items = []models.Submission{{
		ID:           1,
		AssignmentID: 1,
		StudentID:    2,
		ResponseText: "resposta",
		SubmittedAt:  time.Now(),
		Assignment:   models.Assignment{ID: 1, InstructorID: 1},
	}}

	graded, err := svc.Grade(context.Background(), 1, 1, dto.GradeRequest{Score: ptrFloat(7.456)})
	require.NoError(t, err)
	require.Equal(t, 7.46, *graded.Score)
}

func TestGradeTimestampSetOnce(t *testing.T) {
	_, submissions, svc := newSubmissionFixture()
	submissions.items = []models.Submission{{
		ID:           1,
		AssignmentID: 1,
		StudentID:    2,
		ResponseText: "resposta",
		SubmittedAt:  time.Now().Add(-time.Hour),
		Assignment:   models.Assignment{ID: 1, InstructorID: 1},
	}}

	first, err := svc.Grade(context.Background(), 1, 1, dto.GradeRequest{Score: ptrFloat(6)})
	require.NoError(t, err)
	require.NotNil(t, first.GradedAt)

	revised, err := svc.Grade(context.Background(), 1, 1, dto.GradeRequest{Score: ptrFloat(8)})
	require.NoError(t, err)
	require.Equal(t, *first.GradedAt, *revised.GradedAt)
	require.Equal(t, 8.0, *revised.Score)
}

func TestGradeFeedbackOnlyLeavesPending(t *testing.T) {
	_, submissions, svc := newSubmissionFixture()
	submissions.items = []models.Submission{{
		ID:           1,
		AssignmentID: 1,
		StudentID:    2,
		ResponseText: "resposta",
		SubmittedAt:  time.Now(),
		Assignment:   models.Assignment{ID: 1, InstructorID: 1},
	}}

	graded, err := svc.Grade(context.Background(), 1, 1, dto.GradeRequest{Feedback: ptrString("reveja o segundo parágrafo")})
	require.NoError(t, err)
	require.Nil(t, graded.Score)
	require.Nil(t, graded.GradedAt)
	require.Equal(t, models.SubmissionStatusAwaitingGrading, graded.Status)
	require.Equal(t, "reveja o segundo parágrafo", *graded.Feedback)
}

func TestGradeBlankFeedbackCleared(t *testing.T) {
	_, submissions, svc := newSubmissionFixture()
	feedback := "antigo"
	submissions.items = []models.Submission{{
		ID:           1,
		AssignmentID: 1,
		StudentID:    2,
		ResponseText: "resposta",
		Feedback:     &feedback,
		SubmittedAt:  time.Now(),
		Assignment:   models.Assignment{ID: 1, InstructorID: 1},
	}}

	graded, err := svc.Grade(context.Background(), 1, 1, dto.GradeRequest{Feedback: ptrString("   ")})
	require.NoError(t, err)
	require.Nil(t, graded.Feedback)
}

func TestGradeForbiddenForOtherInstructor(t *testing.T) {
	_, submissions, svc := newSubmissionFixture()
	submissions.items = []models.Submission{{
		ID:           1,
		AssignmentID: 1,
		StudentID:    2,
		ResponseText: "resposta",
		SubmittedAt:  time.Now(),
		Assignment:   models.Assignment{ID: 1, InstructorID: 1},
	}}

	_, err := svc.Grade(context.Background(), 99, 1, dto.GradeRequest{Score: ptrFloat(5)})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestListForStudentThreeWayStatus(t *testing.T) {
	assignments, submissions, svc := newSubmissionFixture()
	ctx := context.Background()
	for _, title := range []string{"Primeira", "Segunda", "Terceira"} {
		require.NoError(t, assignments.Create(ctx, &models.Assignment{
			InstructorID: 1,
			Title:        title,
			DueDate:      time.Now().Add(24 * time.Hour),
		}))
	}

	submissions.items = []models.Submission{
		{ID: 1, AssignmentID: 1, StudentID: 5, SubmittedAt: time.Now()},
		{ID: 2, AssignmentID: 2, StudentID: 5, Score: ptrFloat(9), SubmittedAt: time.Now()},
	}

	views, err := svc.ListForStudent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, views, 3)

	statuses := make(map[uint]string, len(views))
	for _, view := range views {
		statuses[view.Assignment.ID] = view.Status
	}
	require.Equal(t, models.SubmissionStatusAwaitingGrading, statuses[1])
	require.Equal(t, models.SubmissionStatusGraded, statuses[2])
	require.Equal(t, "pending", statuses[3])
}

func TestResultForStudentNotFound(t *testing.T) {
	_, _, svc := newSubmissionFixture()

	_, err := svc.ResultForStudent(context.Background(), 5, 1)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestListForInstructorScopesAssignmentFilter(t *testing.T) {
	assignments, _, svc := newSubmissionFixture()
	ctx := context.Background()
	require.NoError(t, assignments.Create(ctx, &models.Assignment{
		InstructorID: 2,
		Title:        "De outro professor",
		DueDate:      time.Now(),
	}))

	assignmentID := uint(1)
	_, err := svc.ListForInstructor(ctx, 1, repository.SubmissionFilter{AssignmentID: &assignmentID})
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}
