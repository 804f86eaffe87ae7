package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/classroom-api/internal/dto"
	"github.com/noah-isme/classroom-api/internal/repository"
)

const dashboardCacheKey = "dashboard:instructor"

// DashboardService aggregates classroom-wide counters for the instructor.
type DashboardService interface {
	Overview(ctx context.Context) (dto.InstructorDashboardResponse, error)
	Invalidate(ctx context.Context)
}

type dashboardService struct {
	assignments repository.AssignmentRepository
	students    repository.StudentRepository
	submissions repository.SubmissionRepository
	activity    repository.ActivityLogRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewDashboardService builds a dashboard service. The cache client may be
// nil, in which case every call recomputes the aggregates.
func NewDashboardService(
	assignments repository.AssignmentRepository,
	students repository.StudentRepository,
	submissions repository.SubmissionRepository,
	activity repository.ActivityLogRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) DashboardService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	return &dashboardService{
		assignments: assignments,
		students:    students,
		submissions: submissions,
		activity:    activity,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger.With().Str("component", "dashboard_service").Logger(),
		now:         time.Now,
	}
}

func (s *dashboardService) Overview(ctx context.Context) (dto.InstructorDashboardResponse, error) {
	if cached, ok := s.fromCache(ctx); ok {
		return cached, nil
	}

	totalAssignments, err := s.assignments.Count(ctx)
	if err != nil {
		return dto.InstructorDashboardResponse{}, err
	}

	totalStudents, err := s.students.CountActive(ctx)
	if err != nil {
		return dto.InstructorDashboardResponse{}, err
	}

	totalSubmissions, err := s.submissions.Count(ctx)
	if err != nil {
		return dto.InstructorDashboardResponse{}, err
	}

	pendingGrading, err := s.submissions.CountPending(ctx)
	if err != nil {
		return dto.InstructorDashboardResponse{}, err
	}

	recent, err := s.activity.ListRecent(ctx, 20)
	if err != nil {
		return dto.InstructorDashboardResponse{}, err
	}

	activityResponses := make([]dto.ActivityResponse, 0, len(recent))
	for _, entry := range recent {
		activityResponses = append(activityResponses, dto.NewActivityResponse(entry))
	}

	response := dto.InstructorDashboardResponse{
		TotalAssignments: totalAssignments,
		TotalStudents:    totalStudents,
		TotalSubmissions: totalSubmissions,
		PendingGrading:   pendingGrading,
		RecentActivity:   activityResponses,
		GeneratedAt:      s.now().UTC(),
	}

	s.store(ctx, response)
	return response, nil
}

// Invalidate drops the cached overview. Called after writes that change
// the aggregates.
func (s *dashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Del(ctx, dashboardCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate dashboard cache")
	}
}

type dashboardInvalidator struct {
	dashboard DashboardService
}

// NewDashboardInvalidator adapts the dashboard cache to the event
// publisher interface so every domain event drops the cached overview.
// Wire it into a fan-out next to the broker publisher.
func NewDashboardInvalidator(dashboard DashboardService) EventPublisher {
	return &dashboardInvalidator{dashboard: dashboard}
}

func (p *dashboardInvalidator) Publish(ctx context.Context, _ Event) {
	p.dashboard.Invalidate(ctx)
}

func (s *dashboardService) fromCache(ctx context.Context) (dto.InstructorDashboardResponse, bool) {
	if s.cache == nil {
		return dto.InstructorDashboardResponse{}, false
	}

	payload, err := s.cache.Get(ctx, dashboardCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("dashboard cache read failed")
		}
		return dto.InstructorDashboardResponse{}, false
	}

	var response dto.InstructorDashboardResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		s.logger.Warn().Err(err).Msg("dashboard cache entry corrupt")
		return dto.InstructorDashboardResponse{}, false
	}

	return response, true
}

func (s *dashboardService) store(ctx context.Context, response dto.InstructorDashboardResponse) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode dashboard cache entry")
		return
	}

	if err := s.cache.Set(ctx, dashboardCacheKey, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write dashboard cache")
	}
}
