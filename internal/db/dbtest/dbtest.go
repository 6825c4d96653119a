// Package dbtest opens throwaway databases and seeds scheduling fixtures.
package dbtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Leganyst/class-scheduler/internal/calendar"
	"github.com/Leganyst/class-scheduler/internal/db"
	"github.com/Leganyst/class-scheduler/internal/model"
	"github.com/Leganyst/class-scheduler/internal/repository"
)

// NewSQLite returns a migrated in-memory database. It has exactly one
// connection, so transactions run one at a time like rows locked by
// SELECT ... FOR UPDATE.
func NewSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, model.AutoMigrate(gdb))
	return gdb
}

// Campus is a small set of rooms, courses and people.
type Campus struct {
	SmallRoom model.Room // 30 мест
	LargeRoom model.Room // 100 мест

	Course      model.Course // 20 мест
	LargeCourse model.Course // 40 мест

	Instructor model.User // ведёт оба курса
	Second     model.User // ведёт только Course
	Unassigned model.User // преподаватель без курсов
	Student    model.User
}

// SeedCampus fills gdb with a Campus.
func SeedCampus(t testing.TB, gdb *gorm.DB) *Campus {
	t.Helper()

	c := &Campus{
		SmallRoom:   model.Room{Name: "A-101", Capacity: 30},
		LargeRoom:   model.Room{Name: "Main hall", Capacity: 100},
		Course:      model.Course{Code: "CS101", Name: "Intro to programming", RequiredCapacity: 20},
		LargeCourse: model.Course{Code: "CS201", Name: "Algorithms", RequiredCapacity: 40},
		Instructor:  model.User{Email: "ada@example.edu", DisplayName: "Ada Lovelace", Role: model.UserRoleInstructor},
		Second:      model.User{Email: "alan@example.edu", DisplayName: "Alan Turing", Role: model.UserRoleInstructor},
		Unassigned:  model.User{Email: "grace@example.edu", DisplayName: "Grace Hopper", Role: model.UserRoleInstructor},
		Student:     model.User{Email: "bob@example.edu", DisplayName: "Bob", Role: model.UserRoleStudent},
	}

	for _, v := range []any{
		&c.SmallRoom, &c.LargeRoom,
		&c.Course, &c.LargeCourse,
		&c.Instructor, &c.Second, &c.Unassigned, &c.Student,
	} {
		require.NoError(t, gdb.Create(v).Error)
	}

	repos := repository.New(gdb)
	ctx := context.Background()
	for _, a := range []model.CourseInstructor{
		{CourseID: c.Course.ID, InstructorID: c.Instructor.ID},
		{CourseID: c.LargeCourse.ID, InstructorID: c.Instructor.ID},
		{CourseID: c.Course.ID, InstructorID: c.Second.ID},
	} {
		require.NoError(t, repos.Assignments.Create(ctx, &a))
	}
	return c
}

// Book stores a confirmed schedule directly, bypassing every check.
func Book(t testing.TB, gdb *gorm.DB, roomID, courseID, instructorID uuid.UUID, date, start, end string) model.Schedule {
	t.Helper()

	d, err := calendar.ParseDate(date)
	require.NoError(t, err)
	st, err := calendar.ParseClock(start)
	require.NoError(t, err)
	et, err := calendar.ParseClock(end)
	require.NoError(t, err)

	s := model.Schedule{
		RoomID:       roomID,
		CourseID:     courseID,
		InstructorID: instructorID,
		Date:         d,
		StartTime:    st,
		EndTime:      et,
		Status:       model.ScheduleStatusConfirmed,
	}
	require.NoError(t, repository.New(gdb).Schedules.Create(context.Background(), &s))
	return s
}

// CountSchedules counts rows with the given status; empty status counts all.
func CountSchedules(t testing.TB, gdb *gorm.DB, status model.ScheduleStatus) int64 {
	t.Helper()

	q := gdb.Model(&model.Schedule{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var n int64
	require.NoError(t, q.Count(&n).Error)
	return n
}

// AssertNoOverlaps fails when two confirmed schedules share a room or an
// instructor on the same date with overlapping times.
func AssertNoOverlaps(t testing.TB, gdb *gorm.DB) {
	t.Helper()

	var all []model.Schedule
	require.NoError(t, gdb.Where("status = ?", model.ScheduleStatusConfirmed).Order("id").Find(&all).Error)

	for i := range all {
		for j := i + 1; j < len(all); j++ {
			a, b := all[i], all[j]
			if a.DateString() != b.DateString() {
				continue
			}
			if !calendar.Overlaps(calendar.ClockRange(a.StartTime, a.EndTime), calendar.ClockRange(b.StartTime, b.EndTime)) {
				continue
			}
			require.False(t, a.RoomID == b.RoomID, describe("room", a, b))
			require.False(t, a.InstructorID == b.InstructorID, describe("instructor", a, b))
		}
	}
}

func describe(kind string, a, b model.Schedule) string {
	return fmt.Sprintf("%s double-booked: %s %s-%s and %s %s-%s on %s",
		kind, a.ID, a.StartTime, a.EndTime, b.ID, b.StartTime, b.EndTime, a.DateString())
}

// Clock returns a fixed UTC clock.
func Clock() func() time.Time {
	at := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}
