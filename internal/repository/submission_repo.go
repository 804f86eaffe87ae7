package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/classroom-api/internal/models"
)

// SubmissionFilter allows narrowing submission queries.
type SubmissionFilter struct {
	AssignmentID *uint
	StudentID    *uint
	Graded       *bool
}

// SubmissionCounts aggregates grading progress for one assignment.
type SubmissionCounts struct {
	Total   int64
	Graded  int64
	Pending int64
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, submission *models.Submission) error
	CountByAssignment(ctx context.Context, assignmentID uint) (SubmissionCounts, error)
	CountByStudent(ctx context.Context, studentID uint) (int64, error)
	AverageScoreByStudent(ctx context.Context, studentID uint) (*float64, error)
	CountPending(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Assignment").
		Preload("Student")
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.baseQuery(ctx)

	if filter.AssignmentID != nil {
		query = query.Where("assignment_id = ?", *filter.AssignmentID)
	}

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	if filter.Graded != nil {
		if *filter.Graded {
			query = query.Where("score IS NOT NULL")
		} else {
			query = query.Where("score IS NULL")
		}
	}

	var submissions []models.Submission
	if err := query.Order("submitted_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).
		Where("assignment_id = ?", assignmentID).
		Where("student_id = ?", studentID).
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

func (r *submissionRepository) CountByAssignment(ctx context.Context, assignmentID uint) (SubmissionCounts, error) {
	counts := SubmissionCounts{}

	base := r.db.WithContext(ctx).Model(&models.Submission{}).Where("assignment_id = ?", assignmentID)
	if err := base.Session(&gorm.Session{}).Count(&counts.Total).Error; err != nil {
		return SubmissionCounts{}, err
	}

	if err := base.Session(&gorm.Session{}).Where("score IS NOT NULL").Count(&counts.Graded).Error; err != nil {
		return SubmissionCounts{}, err
	}

	counts.Pending = counts.Total - counts.Graded
	return counts, nil
}

func (r *submissionRepository) CountByStudent(ctx context.Context, studentID uint) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("student_id = ?", studentID).
		Count(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}

// AverageScoreByStudent returns nil when the student has no graded work yet.
func (r *submissionRepository) AverageScoreByStudent(ctx context.Context, studentID uint) (*float64, error) {
	var average *float64
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("student_id = ?", studentID).
		Where("score IS NOT NULL").
		Select("AVG(score)").
		Scan(&average).Error; err != nil {
		return nil, err
	}

	return average, nil
}

func (r *submissionRepository) CountPending(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("score IS NULL").
		Count(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}

func (r *submissionRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).Count(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}
