package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repositories: набор репозиториев поверх одного соединения или транзакции.
type Repositories struct {
	Rooms       RoomRepository
	Courses     CourseRepository
	Users       UserRepository
	Assignments AssignmentRepository
	Schedules   ScheduleRepository
	Events      EventRepository
}

// New связывает все репозитории с db. Внутри транзакции передаётся tx,
// чтобы чтения и блокировки шли через одно соединение.
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Rooms:       NewGormRoomRepository(db),
		Courses:     NewGormCourseRepository(db),
		Users:       NewGormUserRepository(db),
		Assignments: NewGormAssignmentRepository(db),
		Schedules:   NewGormScheduleRepository(db),
		Events:      NewGormEventRepository(db),
	}
}

// forUpdate добавляет SELECT ... FOR UPDATE. SQLite-диалект этот clause опускает.
func forUpdate(q *gorm.DB) *gorm.DB {
	return q.Clauses(clause.Locking{Strength: "UPDATE"})
}
