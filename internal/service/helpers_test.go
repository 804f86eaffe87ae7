package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func ptrFloat(v float64) *float64 { return &v }

func ptrString(v string) *string { return &v }

// memoryAssignmentRepo keeps assignments in a slice. DeleteCascade removes
// matching rows from the linked submission repo when one is attached.
type memoryAssignmentRepo struct {
	items       []models.Assignment
	submissions *memorySubmissionRepo
	nextID      uint
}

func (m *memoryAssignmentRepo) List(ctx context.Context) ([]models.Assignment, error) {
	return append([]models.Assignment(nil), m.items...), nil
}

func (m *memoryAssignmentRepo) ListByInstructor(ctx context.Context, instructorID uint) ([]models.Assignment, error) {
	filtered := make([]models.Assignment, 0)
	for _, item := range m.items {
		if item.InstructorID == instructorID {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

func (m *memoryAssignmentRepo) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	for _, item := range m.items {
		if item.ID == id {
			return item, nil
		}
	}
	return models.Assignment{}, gorm.ErrRecordNotFound
}

func (m *memoryAssignmentRepo) GetByIDForInstructor(ctx context.Context, id, instructorID uint) (models.Assignment, error) {
	for _, item := range m.items {
		if item.ID == id && item.InstructorID == instructorID {
			return item, nil
		}
	}
	return models.Assignment{}, gorm.ErrRecordNotFound
}

func (m *memoryAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	m.nextID++
	assignment.ID = m.nextID
	assignment.CreatedAt = time.Now()
	m.items = append(m.items, *assignment)
	return nil
}

func (m *memoryAssignmentRepo) Update(ctx context.Context, assignment *models.Assignment) error {
	for i, item := range m.items {
		if item.ID == assignment.ID {
			m.items[i] = *assignment
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memoryAssignmentRepo) DeleteCascade(ctx context.Context, id uint) (int64, error) {
	for i, item := range m.items {
		if item.ID != id {
			continue
		}
		m.items = append(m.items[:i], m.items[i+1:]...)

		var removed int64
		if m.submissions != nil {
			kept := m.submissions.items[:0]
			for _, sub := range m.submissions.items {
				if sub.AssignmentID == id {
					removed++
					continue
				}
				kept = append(kept, sub)
			}
			m.submissions.items = kept
		}
		return removed, nil
	}
	return 0, gorm.ErrRecordNotFound
}

func (m *memoryAssignmentRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(m.items)), nil
}

// memorySubmissionRepo keeps submissions in a slice.
type memorySubmissionRepo struct {
	items  []models.Submission
	nextID uint
}

func (m *memorySubmissionRepo) List(ctx context.Context, filter repository.SubmissionFilter) ([]models.Submission, error) {
	filtered := make([]models.Submission, 0)
	for _, item := range m.items {
		if filter.AssignmentID != nil && item.AssignmentID != *filter.AssignmentID {
			continue
		}
		if filter.StudentID != nil && item.StudentID != *filter.StudentID {
			continue
		}
		if filter.Graded != nil && item.IsGraded() != *filter.Graded {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered, nil
}

func (m *memorySubmissionRepo) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	for _, item := range m.items {
		if item.ID == id {
			return item, nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (m *memorySubmissionRepo) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.Submission, error) {
	for _, item := range m.items {
		if item.AssignmentID == assignmentID && item.StudentID == studentID {
			return item, nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (m *memorySubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	for _, item := range m.items {
		if item.AssignmentID == submission.AssignmentID && item.StudentID == submission.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	m.nextID++
	submission.ID = m.nextID
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now()
	}
	m.items = append(m.items, *submission)
	return nil
}

func (m *memorySubmissionRepo) Update(ctx context.Context, submission *models.Submission) error {
	for i, item := range m.items {
		if item.ID == submission.ID {
			m.items[i] = *submission
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memorySubmissionRepo) CountByAssignment(ctx context.Context, assignmentID uint) (repository.SubmissionCounts, error) {
	var counts repository.SubmissionCounts
	for _, item := range m.items {
		if item.AssignmentID != assignmentID {
			continue
		}
		counts.Total++
		if item.IsGraded() {
			counts.Graded++
		} else {
			counts.Pending++
		}
	}
	return counts, nil
}

func (m *memorySubmissionRepo) CountByStudent(ctx context.Context, studentID uint) (int64, error) {
	var count int64
	for _, item := range m.items {
		if item.StudentID == studentID {
			count++
		}
	}
	return count, nil
}

func (m *memorySubmissionRepo) AverageScoreByStudent(ctx context.Context, studentID uint) (*float64, error) {
	var sum float64
	var graded int
	for _, item := range m.items {
		if item.StudentID == studentID && item.Score != nil {
			sum += *item.Score
			graded++
		}
	}
	if graded == 0 {
		return nil, nil
	}
	average := sum / float64(graded)
	return &average, nil
}

func (m *memorySubmissionRepo) CountPending(ctx context.Context) (int64, error) {
	var count int64
	for _, item := range m.items {
		if !item.IsGraded() {
			count++
		}
	}
	return count, nil
}

func (m *memorySubmissionRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(m.items)), nil
}

// memoryStudentRepo keeps students in a slice.
type memoryStudentRepo struct {
	items  []models.Student
	nextID uint
}

func (m *memoryStudentRepo) ListActive(ctx context.Context) ([]models.Student, error) {
	filtered := make([]models.Student, 0)
	for _, item := range m.items {
		if item.Active {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

func (m *memoryStudentRepo) GetByID(ctx context.Context, id uint) (models.Student, error) {
	for _, item := range m.items {
		if item.ID == id {
			return item, nil
		}
	}
	return models.Student{}, gorm.ErrRecordNotFound
}

func (m *memoryStudentRepo) GetActiveByRegistrationNumber(ctx context.Context, registrationNumber string) (models.Student, error) {
	for _, item := range m.items {
		if item.RegistrationNumber == registrationNumber && item.Active {
			return item, nil
		}
	}
	return models.Student{}, gorm.ErrRecordNotFound
}

func (m *memoryStudentRepo) Create(ctx context.Context, student *models.Student) error {
	for _, item := range m.items {
		if item.RegistrationNumber == student.RegistrationNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	m.nextID++
	student.ID = m.nextID
	student.CreatedAt = time.Now()
	m.items = append(m.items, *student)
	return nil
}

func (m *memoryStudentRepo) Update(ctx context.Context, student *models.Student) error {
	for i, item := range m.items {
		if item.ID == student.ID {
			m.items[i] = *student
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memoryStudentRepo) CountActive(ctx context.Context) (int64, error) {
	var count int64
	for _, item := range m.items {
		if item.Active {
			count++
		}
	}
	return count, nil
}

// memoryInstructorRepo keeps instructors in a slice.
type memoryInstructorRepo struct {
	items []models.Instructor
}

func (m *memoryInstructorRepo) GetByID(ctx context.Context, id uint) (models.Instructor, error) {
	for _, item := range m.items {
		if item.ID == id {
			return item, nil
		}
	}
	return models.Instructor{}, gorm.ErrRecordNotFound
}

func (m *memoryInstructorRepo) GetByUsername(ctx context.Context, username string) (models.Instructor, error) {
	for _, item := range m.items {
		if item.Username == username && item.Active {
			return item, nil
		}
	}
	return models.Instructor{}, gorm.ErrRecordNotFound
}

func (m *memoryInstructorRepo) Create(ctx context.Context, instructor *models.Instructor) error {
	instructor.ID = uint(len(m.items) + 1)
	m.items = append(m.items, *instructor)
	return nil
}

// memoryActivityLogRepo keeps audit entries in a slice.
type memoryActivityLogRepo struct {
	entries []models.ActivityLog
}

func (m *memoryActivityLogRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	entry.ID = uint(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityLogRepo) ListRecent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 || limit > len(m.entries) {
		limit = len(m.entries)
	}
	recent := make([]models.ActivityLog, 0, limit)
	for i := len(m.entries) - 1; i >= 0 && len(recent) < limit; i-- {
		recent = append(recent, m.entries[i])
	}
	return recent, nil
}
