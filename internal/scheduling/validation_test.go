package scheduling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Leganyst/class-scheduler/internal/db/dbtest"
	"github.com/Leganyst/class-scheduler/internal/repository"
)

func TestValidateSchedule_Valid(t *testing.T) {
	gdb, c, _ := setup(t)
	v := NewValidator(repository.New(gdb))

	req := mustRequest(t, input(c.SmallRoom.ID, c.Course.ID, c.Instructor.ID, day, "09:00:00", "10:00:00"))
	res, err := v.ValidateSchedule(context.Background(), req, nil)
	require.NoError(t, err)
	require.True(t, res.IsValid)
	require.Empty(t, res.Errors)
	require.True(t, res.Details.Capacity.Valid)
	require.True(t, res.Details.Assignment.Valid)
}

func TestValidateSchedule_CollectsEveryFailure(t *testing.T) {
	gdb, c, _ := setup(t)
	v := NewValidator(repository.New(gdb))

	req := mustRequest(t, input(c.SmallRoom.ID, c.LargeCourse.ID, c.Second.ID, day, "11:00:00", "09:00:00"))
	res, err := v.ValidateSchedule(context.Background(), req, nil)
	require.NoError(t, err)
	require.False(t, res.IsValid)

	kinds := map[ErrorKind]bool{}
	for _, viol := range res.Violations {
		kinds[viol.Kind] = true
	}
	require.True(t, kinds[KindTimeLogic])
	require.True(t, kinds[KindCapacity])
	require.True(t, kinds[KindAssignment])
	require.Len(t, res.Errors, len(res.Violations))
	require.False(t, kinds[KindRoomConflict])
	require.Len(t, res.Violations, 3)
	require.Equal(t, 40, res.Details.Capacity.RequiredCapacity)
}

func TestValidateSchedule_ConflictDetails(t *testing.T) {
	gdb, c, _ := setup(t)
	v := NewValidator(repository.New(gdb))

	roomBooking := dbtest.Book(t, gdb, c.SmallRoom.ID, c.Course.ID, c.Second.ID, day, "08:00:00", "09:30:00")
	instrBooking := dbtest.Book(t, gdb, c.LargeRoom.ID, c.Course.ID, c.Instructor.ID, day, "09:45:00", "11:00:00")

	req := mustRequest(t, input(c.SmallRoom.ID, c.Course.ID, c.Instructor.ID, day, "09:00:00", "10:00:00"))
	res, err := v.ValidateSchedule(context.Background(), req, nil)
	require.NoError(t, err)
	require.False(t, res.IsValid)
	require.Len(t, res.Violations, 2)

	require.Equal(t, KindRoomConflict, res.Violations[0].Kind)
	require.Contains(t, res.Errors[0], roomBooking.ID.String())
	require.Contains(t, res.Errors[0], "overlapping window 09:00:00-09:30:00")
	require.Len(t, res.Details.RoomConflicts, 1)
	require.Equal(t, roomBooking.ID.String(), res.Details.RoomConflicts[0].ID)

	require.Equal(t, KindInstructorConflict, res.Violations[1].Kind)
	require.Contains(t, res.Errors[1], "overlapping window 09:45:00-10:00:00")
	require.Equal(t, instrBooking.ID.String(), res.Details.InstructorConflicts[0].ID)

	// The schedule being updated never conflicts with itself.
	res, err = v.ValidateSchedule(context.Background(), RequestFromSchedule(&roomBooking), &roomBooking.ID)
	require.NoError(t, err)
	require.True(t, res.IsValid, res.Errors)
}
