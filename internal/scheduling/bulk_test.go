package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Leganyst/class-scheduler/internal/db/dbtest"
	"github.com/Leganyst/class-scheduler/internal/model"
)

func TestBulkCreate_IntraBatchConflictWritesNothing(t *testing.T) {
	gdb, c, coord := setup(t)

	items := []ScheduleInput{
		input(c.SmallRoom.ID, c.Course.ID, c.Instructor.ID, day, "09:00:00", "10:00:00"),
		input(c.SmallRoom.ID, c.Course.ID, c.Second.ID, day, "09:30:00", "10:30:00"),
	}
	res, err := coord.BulkCreate(context.Background(), items, nil)
	require.Equal(t, BulkRejected, res.State)

	var bulk *BulkError
	require.ErrorAs(t, err, &bulk)
	require.Len(t, bulk.Items, 2)

	require.Equal(t, 1, bulk.Items[0].Line)
	require.Equal(t, items[0], bulk.Items[0].Payload)
	require.Equal(t, []ErrorKind{KindIntraBatchConflict}, bulk.Items[0].Kinds)
	require.Contains(t, bulk.Items[0].Errors[0], "room conflict with entry #2")

	require.Equal(t, 2, bulk.Items[1].Line)
	require.Contains(t, bulk.Items[1].Errors[0], "entry #1")

	require.Zero(t, dbtest.CountSchedules(t, gdb, ""))
}

func TestBulkCreate_OneInvalidItemRejectsAll(t *testing.T) {
	gdb, c, coord := setup(t)
	dbtest.Book(t, gdb, c.LargeRoom.ID, c.Course.ID, c.Second.ID, day, "13:00:00", "14:00:00")

	items := []ScheduleInput{
		input(c.SmallRoom.ID, c.Course.ID, c.Instructor.ID, day, "09:00:00", "10:00:00"),
		input(c.SmallRoom.ID, c.LargeCourse.ID, c.Instructor.ID, day, "10:00:00", "11:00:00"),
		input(c.LargeRoom.ID, c.Course.ID, c.Instructor.ID, day, "13:30:00", "14:30:00"),
		{RoomID: c.SmallRoom.ID.String(), Date: day},
	}
	res, err := coord.BulkCreate(context.Background(), items, nil)
	require.Equal(t, BulkRejected, res.State)
	require.Empty(t, res.IDs)

	var bulk *BulkError
	require.ErrorAs(t, err, &bulk)
	require.Len(t, bulk.Items, 3)

	require.Equal(t, 2, bulk.Items[0].Line)
	require.Contains(t, bulk.Items[0].Kinds, KindCapacity)
	require.Equal(t, 3, bulk.Items[1].Line)
	require.Contains(t, bulk.Items[1].Kinds, KindRoomConflict)
	require.Equal(t, 4, bulk.Items[2].Line)
	require.Equal(t, []ErrorKind{KindShape}, bulk.Items[2].Kinds)

	require.EqualValues(t, 1, dbtest.CountSchedules(t, gdb, ""))
}

func TestBulkCreate_Commits(t *testing.T) {
	notifier := &recordingNotifier{}
	gdb, c, coord := setup(t, WithNotifier(notifier))
	actor := uuid.New()

	items := []ScheduleInput{
		input(c.SmallRoom.ID, c.Course.ID, c.Instructor.ID, day, "09:00:00", "10:00:00"),
		input(c.SmallRoom.ID, c.Course.ID, c.Second.ID, day, "10:00:00", "11:00:00"),
		input(c.LargeRoom.ID, c.LargeCourse.ID, c.Instructor.ID, day, "10:00:00", "11:00:00"),
		input(c.SmallRoom.ID, c.Course.ID, c.Instructor.ID, "2024-06-02", "09:00:00", "10:00:00"),
	}
	res, err := coord.BulkCreate(context.Background(), items, &actor)
	require.NoError(t, err)
	require.Equal(t, BulkCommitted, res.State)
	require.Len(t, res.IDs, len(items))

	require.EqualValues(t, len(items), dbtest.CountSchedules(t, gdb, model.ScheduleStatusConfirmed))
	dbtest.AssertNoOverlaps(t, gdb)

	var events int64
	require.NoError(t, gdb.Model(&model.Event{}).
		Where("event_type = ? AND user_id = ?", model.EventTypeScheduleBulkCreated, actor).
		Count(&events).Error)
	require.EqualValues(t, len(items), events)

	changes := notifier.all()
	require.Len(t, changes, 1)
	require.Len(t, changes[0].Schedules, len(items))
}

func TestBulkCreate_Empty(t *testing.T) {
	_, _, coord := setup(t)

	res, err := coord.BulkCreate(context.Background(), nil, nil)
	require.Equal(t, BulkRejected, res.State)
	var shape *ShapeError
	require.ErrorAs(t, err, &shape)
}

func TestNewLockSetOrdersAndDeduplicates(t *testing.T) {
	a := uuid.MustParse("00000000-0000-4000-8000-00000000000a")
	b := uuid.MustParse("00000000-0000-4000-8000-00000000000b")
	course := uuid.New()

	reqs := []Request{
		mustRequest(t, input(b, course, b, "2024-06-02", "09:00:00", "10:00:00")),
		mustRequest(t, input(a, course, b, "2024-06-02", "10:00:00", "11:00:00")),
		mustRequest(t, input(b, course, a, "2024-06-01", "09:00:00", "10:00:00")),
		mustRequest(t, input(b, course, b, "2024-06-02", "12:00:00", "13:00:00")),
	}
	ls := newLockSet(reqs...)

	require.Equal(t, []uuid.UUID{a, b}, ls.rooms)
	require.Equal(t, []uuid.UUID{a, b}, ls.instructors)
	require.Len(t, ls.roomDays, 3)
	require.Equal(t, a, ls.roomDays[0].ID)
	require.Equal(t, b, ls.roomDays[1].ID)
	require.Equal(t, "2024-06-01", time.Time(ls.roomDays[1].Date).Format(time.DateOnly))
	require.Len(t, ls.instructorDays, 2)
	require.Equal(t, a, ls.instructorDays[0].ID)
}

func countEvents(t *testing.T, gdb *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(&model.Event{}).Count(&n).Error)
	return n
}

func TestBulkCreate_InsertFailureRollsBackEarlierRows(t *testing.T) {
	gdb, c, coord := setup(t)

	inserts := 0
	err := gdb.Callback().Create().Before("gorm:create").Register("test:fail_second_schedule", func(tx *gorm.DB) {
		if tx.Statement.Table != "schedules" {
			return
		}
		inserts++
		if inserts == 2 {
			tx.AddError(errors.New("disk full"))
		}
	})
	require.NoError(t, err)

	items := []ScheduleInput{
		input(c.SmallRoom.ID, c.Course.ID, c.Instructor.ID, day, "09:00:00", "10:00:00"),
		input(c.SmallRoom.ID, c.Course.ID, c.Instructor.ID, day, "10:00:00", "11:00:00"),
		input(c.SmallRoom.ID, c.Course.ID, c.Instructor.ID, day, "11:00:00", "12:00:00"),
	}
	res, err := coord.BulkCreate(context.Background(), items, nil)
	require.Error(t, err)
	require.Equal(t, BulkCommitFailed, res.State)
	require.Empty(t, res.IDs)
	require.Equal(t, 2, inserts)

	require.Zero(t, dbtest.CountSchedules(t, gdb, ""))
	require.Zero(t, countEvents(t, gdb))
}

// A booking that lands after the unlocked pass is caught by the
// re-validation under lock and the whole batch is rolled back.
func TestBulkCreate_ConflictFoundUnderLock(t *testing.T) {
	gdb, c, coord := setup(t)

	booked := false
	err := gdb.Callback().Query().Before("gorm:query").Register("test:book_before_lock", func(tx *gorm.DB) {
		if booked || tx.Statement.Table != "rooms" {
			return
		}
		if _, locking := tx.Statement.Clauses["FOR"]; !locking {
			return
		}
		booked = true
		inTx := gdb.Session(&gorm.Session{NewDB: true, Context: context.Background()})
		inTx.Statement.ConnPool = tx.Statement.ConnPool
		dbtest.Book(t, inTx, c.LargeRoom.ID, c.Course.ID, c.Second.ID, day, "09:30:00", "10:30:00")
	})
	require.NoError(t, err)

	items := []ScheduleInput{
		input(c.SmallRoom.ID, c.Course.ID, c.Instructor.ID, day, "08:00:00", "09:00:00"),
		input(c.LargeRoom.ID, c.Course.ID, c.Instructor.ID, day, "10:00:00", "11:00:00"),
	}
	res, err := coord.BulkCreate(context.Background(), items, nil)
	require.True(t, booked)
	require.Equal(t, BulkCommitFailed, res.State)
	require.Empty(t, res.IDs)

	var bulk *BulkError
	require.ErrorAs(t, err, &bulk)
	require.Len(t, bulk.Items, 1)
	require.Equal(t, 2, bulk.Items[0].Line)
	require.Equal(t, []ErrorKind{KindRoomConflict}, bulk.Items[0].Kinds)

	// the injected booking shared the transaction and is gone too
	require.Zero(t, dbtest.CountSchedules(t, gdb, ""))
	require.Zero(t, countEvents(t, gdb))
}
