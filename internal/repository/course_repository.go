package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/class-scheduler/internal/model"
)

type CourseRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
}

type GormCourseRepository struct {
	db *gorm.DB
}

func NewGormCourseRepository(db *gorm.DB) *GormCourseRepository {
	return &GormCourseRepository{db: db}
}

func (r *GormCourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	var c model.Course
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
