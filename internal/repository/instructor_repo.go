package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/classroom-api/internal/models"
)

// InstructorRepository provides access to instructor records.
type InstructorRepository interface {
	GetByID(ctx context.Context, id uint) (models.Instructor, error)
	GetByUsername(ctx context.Context, username string) (models.Instructor, error)
	Create(ctx context.Context, instructor *models.Instructor) error
}

type instructorRepository struct {
	db *gorm.DB
}

// NewInstructorRepository constructs a GORM-backed instructor repository.
func NewInstructorRepository(db *gorm.DB) InstructorRepository {
	return &instructorRepository{db: db}
}

func (r *instructorRepository) GetByID(ctx context.Context, id uint) (models.Instructor, error) {
	var instructor models.Instructor
	if err := r.db.WithContext(ctx).First(&instructor, id).Error; err != nil {
		return models.Instructor{}, err
	}

	return instructor, nil
}

func (r *instructorRepository) GetByUsername(ctx context.Context, username string) (models.Instructor, error) {
	var instructor models.Instructor
	if err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Where("active = ?", true).
		First(&instructor).Error; err != nil {
		return models.Instructor{}, err
	}

	return instructor, nil
}

func (r *instructorRepository) Create(ctx context.Context, instructor *models.Instructor) error {
	return r.db.WithContext(ctx).Create(instructor).Error
}
