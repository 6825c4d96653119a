package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// users
type User struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Email       string   `gorm:"type:varchar(255);not null;uniqueIndex"`
	DisplayName string   `gorm:"type:varchar(255)"`
	Role        UserRole `gorm:"type:varchar(32);not null;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsInstructor: может ли пользователь вести занятия.
func (u *User) IsInstructor() bool {
	return u != nil && u.Role == UserRoleInstructor
}
