package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/class-scheduler/internal/model"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetInstructor находит пользователя только с ролью instructor.
	GetInstructor(ctx context.Context, id uuid.UUID) (*model.User, error)
	// LockInstructor: то же самое с блокировкой строки.
	LockInstructor(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) GetInstructor(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.findInstructor(r.db.WithContext(ctx), id)
}

func (r *GormUserRepository) LockInstructor(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.findInstructor(forUpdate(r.db.WithContext(ctx)), id)
}

func (r *GormUserRepository) findInstructor(q *gorm.DB, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := q.Where("id = ? AND role = ?", id, model.UserRoleInstructor).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}
