package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-api/internal/dto"
	"github.com/noah-isme/classroom-api/internal/models"
)

func TestDashboardOverviewCounters(t *testing.T) {
	submissions := &memorySubmissionRepo{items: []models.Submission{
		{ID: 1, AssignmentID: 1, StudentID: 1, Score: ptrFloat(9), SubmittedAt: time.Now()},
		{ID: 2, AssignmentID: 1, StudentID: 2, SubmittedAt: time.Now()},
	}}
	assignments := &memoryAssignmentRepo{
		items:       []models.Assignment{{ID: 1, InstructorID: 1, Title: "Prova"}},
		submissions: submissions,
		nextID:      1,
	}
	students := &memoryStudentRepo{items: []models.Student{
		{ID: 1, Active: true},
		{ID: 2, Active: true},
		{ID: 3, Active: false},
	}}
	activity := &memoryActivityLogRepo{}

	svc := NewDashboardService(assignments, students, submissions, activity, nil, time.Minute, testLogger())

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), overview.TotalAssignments)
	require.Equal(t, int64(2), overview.TotalStudents)
	require.Equal(t, int64(2), overview.TotalSubmissions)
	require.Equal(t, int64(1), overview.PendingGrading)
	require.False(t, overview.GeneratedAt.IsZero())
}

func TestDashboardOverviewCached(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	submissions := &memorySubmissionRepo{}
	assignments := &memoryAssignmentRepo{submissions: submissions}
	students := &memoryStudentRepo{}
	activity := &memoryActivityLogRepo{}

	svc := NewDashboardService(assignments, students, submissions, activity, client, time.Minute, testLogger())
	ctx := context.Background()

	first, err := svc.Overview(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), first.TotalStudents)

	// new rows are invisible until the cache expires or is invalidated
	students.items = []models.Student{{ID: 1, Active: true}}

	cached, err := svc.Overview(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), cached.TotalStudents)

	svc.Invalidate(ctx)

	fresh, err := svc.Overview(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), fresh.TotalStudents)
}

func TestDashboardCacheDroppedByDomainEvents(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	submissions := &memorySubmissionRepo{}
	assignments := &memoryAssignmentRepo{submissions: submissions}
	students := &memoryStudentRepo{}
	activity := &memoryActivityLogRepo{}
	validate := validator.New(validator.WithRequiredStructEnabled())

	dashboard := NewDashboardService(assignments, students, submissions, activity, client, time.Minute, testLogger())
	events := NewFanoutPublisher(NewDashboardInvalidator(dashboard))
	assignmentSvc := NewAssignmentService(assignments, submissions, students, validate, nil, events, testLogger())

	ctx := context.Background()

	before, err := dashboard.Overview(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), before.TotalAssignments)

	due := time.Now().Add(72 * time.Hour).Format("2006-01-02")
	_, err = assignmentSvc.Create(ctx, 1, dto.AssignmentCreateRequest{
		Title:       "Prova de história",
		Description: "Responda as questões.",
		DueDate:     due,
	})
	require.NoError(t, err)

	after, err := dashboard.Overview(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), after.TotalAssignments, "creating an assignment must drop the cached overview")
}
