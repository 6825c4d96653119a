package scheduling

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Leganyst/class-scheduler/internal/calendar"
	"github.com/Leganyst/class-scheduler/internal/model"
	"github.com/Leganyst/class-scheduler/internal/repository"
)

// Validator выполняет проверки брони через один набор репозиториев.
// Внутри транзакции он видит ровно заблокированные ею строки,
// вне транзакции результат предварительный.
type Validator struct {
	repos *repository.Repositories
}

func NewValidator(repos *repository.Repositories) *Validator {
	return &Validator{repos: repos}
}

// ConflictCheck: подтверждённые занятия, пересекающиеся с запрошенным окном.
type ConflictCheck struct {
	HasConflict bool
	Conflicts   []model.Schedule
}

// CheckRoomConflict возвращает подтверждённые занятия аудитории roomID
// на дату date, пересекающиеся с [start, end).
// excludeID исключает обновляемое занятие.
func (v *Validator) CheckRoomConflict(
	ctx context.Context,
	roomID uuid.UUID,
	date datatypes.Date,
	start, end datatypes.Time,
	excludeID *uuid.UUID,
) (ConflictCheck, error) {
	return v.checkConflict(ctx, repository.ConfirmedFilter{
		RoomID:    &roomID,
		Date:      date,
		ExcludeID: excludeID,
	}, start, end)
}

// CheckInstructorConflict: то же по преподавателю.
func (v *Validator) CheckInstructorConflict(
	ctx context.Context,
	instructorID uuid.UUID,
	date datatypes.Date,
	start, end datatypes.Time,
	excludeID *uuid.UUID,
) (ConflictCheck, error) {
	return v.checkConflict(ctx, repository.ConfirmedFilter{
		InstructorID: &instructorID,
		Date:         date,
		ExcludeID:    excludeID,
	}, start, end)
}

func (v *Validator) checkConflict(
	ctx context.Context,
	f repository.ConfirmedFilter,
	start, end datatypes.Time,
) (ConflictCheck, error) {
	existing, err := v.repos.Schedules.ListConfirmed(ctx, f)
	if err != nil {
		return ConflictCheck{}, storageError("list confirmed schedules", err)
	}

	var conflicts []model.Schedule
	for _, s := range existing {
		if calendar.OverlapValues(start, end, s.StartTime, s.EndTime) {
			conflicts = append(conflicts, s)
		}
	}
	return ConflictCheck{HasConflict: len(conflicts) > 0, Conflicts: conflicts}, nil
}
