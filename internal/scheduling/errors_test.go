package scheduling

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestStorageErrorClassification(t *testing.T) {
	err := storageError("lock room", &pgconn.PgError{Code: "40P01"})
	var te *TransientError
	require.ErrorAs(t, err, &te)
	require.True(t, IsTransient(err))
	require.ErrorIs(t, err, ErrTransient)

	err = storageError("lock room", errors.New("syntax error"))
	require.False(t, IsTransient(err))
	require.ErrorContains(t, err, "lock room")

	nf := &NotFoundError{Entity: "room", ID: uuid.New()}
	require.Same(t, nf, storageError("outer", nf))
	require.ErrorIs(t, storageError("outer", ErrCancelled), ErrCancelled)
	require.NoError(t, storageError("noop", nil))
}

func TestLookupError(t *testing.T) {
	id := uuid.New()
	err := lookupError("course", id, gorm.ErrRecordNotFound)
	require.ErrorIs(t, err, ErrNotFound)
	require.EqualError(t, err, "course "+id.String()+" not found")
}

func TestWriteErrorMapsExclusionViolation(t *testing.T) {
	err := writeError("insert schedule", &pgconn.PgError{Code: "23P01", ConstraintName: "schedules_instructor_no_overlap"})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	require.True(t, conflict.Has(KindInstructorConflict))

	err = writeError("insert schedule", &pgconn.PgError{Code: "23P01", ConstraintName: "schedules_room_no_overlap"})
	require.ErrorAs(t, err, &conflict)
	require.True(t, conflict.Has(KindRoomConflict))
}

func TestShapeErrorFromNormalize(t *testing.T) {
	_, err := ScheduleInput{
		RoomID:       uuid.NewString(),
		CourseID:     uuid.NewString(),
		InstructorID: "not-a-uuid",
		Date:         "2024-06-01",
		StartTime:    "9:00",
		EndTime:      "10:00:00",
	}.Normalize()

	var shape *ShapeError
	require.ErrorAs(t, err, &shape)
	require.Len(t, shape.Fields, 2)
	require.Contains(t, shape.Error(), "InstructorID")
	require.Contains(t, shape.Error(), "StartTime")
}
