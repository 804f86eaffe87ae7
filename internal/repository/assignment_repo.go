package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/classroom-api/internal/models"
)

// AssignmentRepository defines persistence operations for assignments.
// Lookups scoped to an instructor return gorm.ErrRecordNotFound on
// ownership mismatch so callers cannot distinguish "missing" from
// "someone else's".
type AssignmentRepository interface {
	List(ctx context.Context) ([]models.Assignment, error)
	ListByInstructor(ctx context.Context, instructorID uint) ([]models.Assignment, error)
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	GetByIDForInstructor(ctx context.Context, id, instructorID uint) (models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	DeleteCascade(ctx context.Context, id uint) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) List(ctx context.Context) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) ListByInstructor(ctx context.Context, instructorID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).
		Where("instructor_id = ?", instructorID).
		Order("created_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) GetByIDForInstructor(ctx context.Context, id, instructorID uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Where("instructor_id = ?", instructorID).
		First(&assignment).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

// DeleteCascade removes the assignment together with its submissions and
// returns the number of submissions that were deleted, for confirmation
// messaging. The explicit submission delete keeps the count accurate even
// when the database enforces the FK cascade on its own.
func (r *assignmentRepository) DeleteCascade(ctx context.Context, id uint) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("assignment_id = ?", id).Delete(&models.Submission{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected

		result = tx.Delete(&models.Assignment{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return removed, nil
}

func (r *assignmentRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Assignment{}).Count(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}
