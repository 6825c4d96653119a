package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Статус занятия в расписании.
type ScheduleStatus string

const (
	ScheduleStatusConfirmed ScheduleStatus = "confirmed"
	ScheduleStatusCancelled ScheduleStatus = "cancelled"
)

// schedules: бронь аудитории и преподавателя под курс на конкретную дату.
type Schedule struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	RoomID       uuid.UUID `gorm:"type:uuid;not null;index:idx_schedules_room_date,priority:1"`
	CourseID     uuid.UUID `gorm:"type:uuid;not null;index"`
	InstructorID uuid.UUID `gorm:"type:uuid;not null;index:idx_schedules_instructor_date,priority:1"`

	// Календарный день без времени.
	Date datatypes.Date `gorm:"type:date;not null;index:idx_schedules_room_date,priority:2;index:idx_schedules_instructor_date,priority:2"`

	// Время суток с точностью до секунды.
	StartTime datatypes.Time `gorm:"type:time;not null"`
	EndTime   datatypes.Time `gorm:"type:time;not null"`

	Status ScheduleStatus `gorm:"type:varchar(32);not null;default:'confirmed';index"`

	CreatedBy   *uuid.UUID `gorm:"type:uuid"`
	CancelledAt *time.Time

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	// Навигационные поля.
	Room       *Room   `gorm:"foreignKey:RoomID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Course     *Course `gorm:"foreignKey:CourseID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Instructor *User   `gorm:"foreignKey:InstructorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (s *Schedule) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = ScheduleStatusConfirmed
	}
	return nil
}

func (s *Schedule) IsConfirmed() bool {
	return s.Status == ScheduleStatusConfirmed
}

// DateString: дата в формате YYYY-MM-DD.
func (s *Schedule) DateString() string {
	return time.Time(s.Date).Format(time.DateOnly)
}
