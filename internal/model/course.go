package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// courses
type Course struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Code string `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name string `gorm:"type:varchar(255);not null"`

	// Сколько мест должно быть в аудитории.
	RequiredCapacity int `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (c *Course) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// course_instructors: назначение преподавателя на курс.
type CourseInstructor struct {
	CourseID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	InstructorID uuid.UUID `gorm:"type:uuid;primaryKey;index"`

	CreatedAt time.Time `gorm:"not null"`

	Course     *Course `gorm:"foreignKey:CourseID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Instructor *User   `gorm:"foreignKey:InstructorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
