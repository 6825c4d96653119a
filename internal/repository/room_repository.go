package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/class-scheduler/internal/model"
)

type RoomRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Room, error)
	// LockByID читает аудиторию с эксклюзивной блокировкой строки.
	LockByID(ctx context.Context, id uuid.UUID) (*model.Room, error)
}

type GormRoomRepository struct {
	db *gorm.DB
}

func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db}
}

func (r *GormRoomRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	var room model.Room
	if err := r.db.WithContext(ctx).First(&room, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *GormRoomRepository) LockByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	var room model.Room
	if err := forUpdate(r.db.WithContext(ctx)).First(&room, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}
