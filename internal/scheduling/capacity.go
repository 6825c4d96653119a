package scheduling

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Leganyst/class-scheduler/internal/db"
)

// CapacityCheck: числа, на которых основан вывод о вместимости.
type CapacityCheck struct {
	Valid            bool   `json:"valid"`
	RoomCapacity     int    `json:"room_capacity"`
	RequiredCapacity int    `json:"required_capacity"`
	Message          string `json:"message,omitempty"`
}

// AssignmentCheck: вывод о назначении преподавателя на курс.
type AssignmentCheck struct {
	Valid          bool   `json:"valid"`
	InstructorName string `json:"instructor_name,omitempty"`
	Message        string `json:"message,omitempty"`
}

// ValidateRoomCapacity не проходит, если аудитории или курса нет
// либо мест в аудитории меньше, чем требует курс.
func (v *Validator) ValidateRoomCapacity(ctx context.Context, roomID, courseID uuid.UUID) (CapacityCheck, error) {
	room, err := v.repos.Rooms.GetByID(ctx, roomID)
	if err != nil {
		if db.IsNotFound(err) {
			return CapacityCheck{Message: fmt.Sprintf("room %s not found", roomID)}, nil
		}
		return CapacityCheck{}, storageError("load room", err)
	}
	course, err := v.repos.Courses.GetByID(ctx, courseID)
	if err != nil {
		if db.IsNotFound(err) {
			return CapacityCheck{
				RoomCapacity: room.Capacity,
				Message:      fmt.Sprintf("course %s not found", courseID),
			}, nil
		}
		return CapacityCheck{}, storageError("load course", err)
	}

	res := CapacityCheck{
		Valid:            room.Capacity >= course.RequiredCapacity,
		RoomCapacity:     room.Capacity,
		RequiredCapacity: course.RequiredCapacity,
	}
	if !res.Valid {
		res.Message = fmt.Sprintf(
			"room %q capacity (%d) is less than the %d seats required by course %s",
			room.Name, room.Capacity, course.RequiredCapacity, course.Code,
		)
	}
	return res, nil
}

// ValidateInstructorAssignment не проходит, если пользователя нет,
// он не преподаватель или не назначен на курс.
func (v *Validator) ValidateInstructorAssignment(ctx context.Context, instructorID, courseID uuid.UUID) (AssignmentCheck, error) {
	user, err := v.repos.Users.GetByID(ctx, instructorID)
	if err != nil {
		if db.IsNotFound(err) {
			return AssignmentCheck{Message: fmt.Sprintf("instructor %s not found", instructorID)}, nil
		}
		return AssignmentCheck{}, storageError("load instructor", err)
	}
	name := user.DisplayName
	if name == "" {
		name = user.ID.String()
	}
	if !user.IsInstructor() {
		return AssignmentCheck{
			InstructorName: name,
			Message:        fmt.Sprintf("user %s is not an instructor", name),
		}, nil
	}

	ok, err := v.repos.Assignments.Exists(ctx, courseID, instructorID)
	if err != nil {
		return AssignmentCheck{}, storageError("check assignment", err)
	}
	res := AssignmentCheck{Valid: ok, InstructorName: name}
	if !ok {
		res.Message = fmt.Sprintf("instructor %s is not assigned to course %s", name, courseID)
	}
	return res, nil
}
