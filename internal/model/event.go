package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Тип события аудита.
type EventType string

const (
	EventTypeScheduleCreated     EventType = "schedule_created"
	EventTypeScheduleUpdated     EventType = "schedule_updated"
	EventTypeScheduleCancelled   EventType = "schedule_cancelled"
	EventTypeScheduleBulkCreated EventType = "schedule_bulk_created"
)

// events: события аудита
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	EventType EventType `gorm:"type:varchar(64);not null;index"`

	CreatedAt time.Time `gorm:"not null;index"`

	UserID     *uuid.UUID `gorm:"type:uuid;index"`
	ScheduleID *uuid.UUID `gorm:"type:uuid;index"`

	Details datatypes.JSON
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
