package model

import (
	"fmt"

	"gorm.io/gorm"
)

// Имена EXCLUDE-ограничений на пересечение подтверждённых занятий.
const (
	ConstraintRoomNoOverlap       = "schedules_room_no_overlap"
	ConstraintInstructorNoOverlap = "schedules_instructor_no_overlap"
	ConstraintTimeOrder           = "schedules_time_order"
)

// AutoMigrate выполняет миграцию всех сущностей расписания.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Room{},
		&Course{},
		&CourseInstructor{},
		&Schedule{},
		&Event{},
	)
}

// EnsureScheduleConstraints добавляет ограничения уровня БД (только Postgres):
// end_time > start_time и, если exclusion=true, запрет пересечения
// подтверждённых занятий одной аудитории/преподавателя в один день.
// tsrange по умолчанию полуоткрытый, поэтому касание границ не конфликт.
func EnsureScheduleConstraints(db *gorm.DB, exclusion bool) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}

	stmts := []string{
		addConstraintSQL(ConstraintTimeOrder, `CHECK (end_time > start_time)`),
	}
	if exclusion {
		stmts = append(stmts,
			`CREATE EXTENSION IF NOT EXISTS btree_gist`,
			addConstraintSQL(ConstraintRoomNoOverlap,
				`EXCLUDE USING gist (room_id WITH =, tsrange(date + start_time, date + end_time) WITH &&) WHERE (status = 'confirmed')`),
			addConstraintSQL(ConstraintInstructorNoOverlap,
				`EXCLUDE USING gist (instructor_id WITH =, tsrange(date + start_time, date + end_time) WITH &&) WHERE (status = 'confirmed')`),
		)
	}

	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("ensure schedule constraints: %w", err)
		}
	}
	return nil
}

func addConstraintSQL(name, definition string) string {
	return fmt.Sprintf(`DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
		ALTER TABLE schedules ADD CONSTRAINT %s %s;
	END IF;
END $$`, name, name, definition)
}
