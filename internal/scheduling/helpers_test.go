package scheduling

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/class-scheduler/internal/db/dbtest"
)

const day = "2024-06-01"

func setup(t *testing.T, opts ...Option) (*gorm.DB, *dbtest.Campus, *Coordinator) {
	t.Helper()
	gdb := dbtest.NewSQLite(t)
	campus := dbtest.SeedCampus(t, gdb)
	opts = append([]Option{WithClock(dbtest.Clock())}, opts...)
	return gdb, campus, NewCoordinator(gdb, opts...)
}

func input(roomID, courseID, instructorID uuid.UUID, date, start, end string) ScheduleInput {
	return ScheduleInput{
		RoomID:       roomID.String(),
		CourseID:     courseID.String(),
		InstructorID: instructorID.String(),
		Date:         date,
		StartTime:    start,
		EndTime:      end,
	}
}

func mustRequest(t *testing.T, in ScheduleInput) Request {
	t.Helper()
	req, err := in.Normalize()
	if err != nil {
		t.Fatalf("normalize %+v: %v", in, err)
	}
	return req
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []Change
	err     error
}

func (n *recordingNotifier) Notify(_ context.Context, c Change) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, c)
	return n.err
}

func (n *recordingNotifier) all() []Change {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Change(nil), n.changes...)
}
