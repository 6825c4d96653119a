package scheduling

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Leganyst/class-scheduler/internal/calendar"
	"github.com/Leganyst/class-scheduler/internal/model"
)

// ValidationResult: результат ValidateSchedule. Errors дублирует
// Violations простыми строками.
type ValidationResult struct {
	IsValid    bool              `json:"is_valid"`
	Errors     []string          `json:"errors"`
	Violations []Violation       `json:"violations"`
	Details    ValidationDetails `json:"details"`
}

// ValidationDetails: исходные данные каждой проверки для отображения.
type ValidationDetails struct {
	RoomConflicts       []ScheduleView   `json:"room_conflicts"`
	InstructorConflicts []ScheduleView   `json:"instructor_conflicts"`
	Capacity            *CapacityCheck   `json:"capacity,omitempty"`
	Assignment          *AssignmentCheck `json:"assignment,omitempty"`
}

func newValidationResult() *ValidationResult {
	return &ValidationResult{
		IsValid:    true,
		Errors:     []string{},
		Violations: []Violation{},
		Details: ValidationDetails{
			RoomConflicts:       []ScheduleView{},
			InstructorConflicts: []ScheduleView{},
		},
	}
}

func (r *ValidationResult) add(kind ErrorKind, msg string) {
	r.IsValid = false
	r.Errors = append(r.Errors, msg)
	r.Violations = append(r.Violations, Violation{Kind: kind, Message: msg})
}

// ValidateSchedule выполняет все проверки без досрочного выхода:
// порядок времени, конфликт аудитории, конфликт преподавателя,
// вместимость, назначение. Ошибку возвращают только сбои хранилища.
func (v *Validator) ValidateSchedule(ctx context.Context, req Request, excludeID *uuid.UUID) (*ValidationResult, error) {
	res := newValidationResult()
	window := req.Range()
	date := req.DateString()

	if !window.Valid() {
		res.add(KindTimeLogic, fmt.Sprintf(
			"end time %s must be after start time %s", req.EndTime.String(), req.StartTime.String(),
		))
	}

	roomCheck, err := v.CheckRoomConflict(ctx, req.RoomID, req.Date, req.StartTime, req.EndTime, excludeID)
	if err != nil {
		return nil, err
	}
	for _, s := range roomCheck.Conflicts {
		res.add(KindRoomConflict, conflictMessage("room", req.RoomID, date, window, s))
	}
	res.Details.RoomConflicts = newScheduleViews(roomCheck.Conflicts)

	instrCheck, err := v.CheckInstructorConflict(ctx, req.InstructorID, req.Date, req.StartTime, req.EndTime, excludeID)
	if err != nil {
		return nil, err
	}
	for _, s := range instrCheck.Conflicts {
		res.add(KindInstructorConflict, conflictMessage("instructor", req.InstructorID, date, window, s))
	}
	res.Details.InstructorConflicts = newScheduleViews(instrCheck.Conflicts)

	capacity, err := v.ValidateRoomCapacity(ctx, req.RoomID, req.CourseID)
	if err != nil {
		return nil, err
	}
	if !capacity.Valid {
		res.add(KindCapacity, capacity.Message)
	}
	res.Details.Capacity = &capacity

	assignment, err := v.ValidateInstructorAssignment(ctx, req.InstructorID, req.CourseID)
	if err != nil {
		return nil, err
	}
	if !assignment.Valid {
		res.add(KindAssignment, assignment.Message)
	}
	res.Details.Assignment = &assignment

	return res, nil
}

func conflictMessage(subject string, id uuid.UUID, date string, window calendar.Range, existing model.Schedule) string {
	booked := calendar.ClockRange(existing.StartTime, existing.EndTime)
	overlap, _ := calendar.Intersection(window, booked)
	return fmt.Sprintf(
		"%s %s is already booked by schedule %s at %s; overlapping window %s-%s",
		subject, id, existing.ID, calendar.FormatWindow(date, booked),
		calendar.FormatClock(overlap.Start), calendar.FormatClock(overlap.End),
	)
}
