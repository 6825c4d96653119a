package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// rooms
type Room struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Name     string `gorm:"type:varchar(255);not null"`
	Capacity int    `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (r *Room) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
