package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/class-scheduler/internal/model"
)

type AssignmentRepository interface {
	// Exists: назначен ли преподаватель на курс.
	Exists(ctx context.Context, courseID, instructorID uuid.UUID) (bool, error)
	Create(ctx context.Context, a *model.CourseInstructor) error
}

type GormAssignmentRepository struct {
	db *gorm.DB
}

func NewGormAssignmentRepository(db *gorm.DB) *GormAssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

func (r *GormAssignmentRepository) Exists(ctx context.Context, courseID, instructorID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CourseInstructor{}).
		Where("course_id = ? AND instructor_id = ?", courseID, instructorID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormAssignmentRepository) Create(ctx context.Context, a *model.CourseInstructor) error {
	return r.db.WithContext(ctx).Create(a).Error
}
