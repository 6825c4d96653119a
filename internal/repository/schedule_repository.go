package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/class-scheduler/internal/model"
)

// ConfirmedFilter выбирает подтверждённые занятия одной аудитории
// или одного преподавателя на конкретную дату.
type ConfirmedFilter struct {
	RoomID       *uuid.UUID
	InstructorID *uuid.UUID
	Date         datatypes.Date
	// Исключить занятие (при обновлении оно не конфликтует само с собой).
	ExcludeID *uuid.UUID
	// Взять эксклюзивные блокировки строк (в порядке id).
	ForUpdate bool
}

type ScheduleRepository interface {
	// Подтверждённые занятия по фильтру.
	ListConfirmed(ctx context.Context, f ConfirmedFilter) ([]model.Schedule, error)
	// Найти занятие по ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Schedule, error)
	// Найти занятие по ID и заблокировать строку.
	LockByID(ctx context.Context, id uuid.UUID) (*model.Schedule, error)
	// Создать занятие.
	Create(ctx context.Context, s *model.Schedule) error
	// Перезаписать аудиторию, курс, преподавателя, дату и время.
	UpdateSlot(ctx context.Context, s *model.Schedule) error
	// Отменить занятие.
	Cancel(ctx context.Context, id uuid.UUID, at time.Time) error
	// Все занятия по ID (для отчётов и тестов).
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Schedule, error)
}

type GormScheduleRepository struct {
	db *gorm.DB
}

func NewGormScheduleRepository(db *gorm.DB) *GormScheduleRepository {
	return &GormScheduleRepository{db: db}
}

func (r *GormScheduleRepository) ListConfirmed(ctx context.Context, f ConfirmedFilter) ([]model.Schedule, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Schedule{}).
		Where("status = ?", model.ScheduleStatusConfirmed).
		Where("date = ?", f.Date)

	if f.RoomID != nil {
		q = q.Where("room_id = ?", *f.RoomID)
	}
	if f.InstructorID != nil {
		q = q.Where("instructor_id = ?", *f.InstructorID)
	}
	if f.ExcludeID != nil {
		q = q.Where("id <> ?", *f.ExcludeID)
	}

	if f.ForUpdate {
		q = forUpdate(q.Order("id ASC"))
	} else {
		q = q.Order("start_time ASC").Order("id ASC")
	}

	var schedules []model.Schedule
	if err := q.Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *GormScheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Schedule, error) {
	var s model.Schedule
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormScheduleRepository) LockByID(ctx context.Context, id uuid.UUID) (*model.Schedule, error) {
	var s model.Schedule
	if err := forUpdate(r.db.WithContext(ctx)).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormScheduleRepository) Create(ctx context.Context, s *model.Schedule) error {
	return r.db.WithContext(ctx).Omit("Room", "Course", "Instructor").Create(s).Error
}

func (r *GormScheduleRepository) UpdateSlot(ctx context.Context, s *model.Schedule) error {
	update := map[string]any{
		"room_id":       s.RoomID,
		"course_id":     s.CourseID,
		"instructor_id": s.InstructorID,
		"date":          s.Date,
		"start_time":    s.StartTime,
		"end_time":      s.EndTime,
	}
	return r.db.WithContext(ctx).
		Model(&model.Schedule{}).
		Where("id = ?", s.ID).
		Updates(update).
		Error
}

func (r *GormScheduleRepository) Cancel(ctx context.Context, id uuid.UUID, at time.Time) error {
	update := map[string]any{
		"status":       model.ScheduleStatusCancelled,
		"cancelled_at": at,
	}
	return r.db.WithContext(ctx).
		Model(&model.Schedule{}).
		Where("id = ?", id).
		Updates(update).
		Error
}

func (r *GormScheduleRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Schedule, error) {
	if len(ids) == 0 {
		return []model.Schedule{}, nil
	}
	var schedules []model.Schedule
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("date ASC").Order("start_time ASC").
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}
