package service

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	schedulingv1 "github.com/Leganyst/class-scheduler/internal/api/scheduling/v1"
	"github.com/Leganyst/class-scheduler/internal/db/dbtest"
	"github.com/Leganyst/class-scheduler/internal/scheduling"
)

const day = "2024-06-01"

func startServer(t *testing.T) (schedulingv1.SchedulingServiceClient, *dbtest.Campus) {
	t.Helper()

	gdb := dbtest.NewSQLite(t)
	campus := dbtest.SeedCampus(t, gdb)

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	svc := NewSchedulingService(scheduling.NewCoordinator(gdb), scheduling.NewRetrier(2, time.Millisecond))
	srv := grpc.NewServer(grpc.UnaryInterceptor(LoggingInterceptor(logger)))
	schedulingv1.RegisterSchedulingServiceServer(srv, svc)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return schedulingv1.NewSchedulingServiceClient(conn), campus
}

func schedulePayload(room, course, instructor uuid.UUID, start, end string) map[string]any {
	return map[string]any{
		"room_id":       room.String(),
		"course_id":     course.String(),
		"instructor_id": instructor.String(),
		"date":          day,
		"start_time":    start,
		"end_time":      end,
	}
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestSchedulingService_CreateConflictAndGet(t *testing.T) {
	client, c := startServer(t)
	actor := uuid.New()
	ctx := WithActor(context.Background(), actor.String())

	resp, err := client.CreateSchedule(ctx, mustStruct(t, map[string]any{
		"schedule": schedulePayload(c.SmallRoom.ID, c.Course.ID, c.Instructor.ID, "09:00:00", "10:00:00"),
	}))
	require.NoError(t, err)
	out := resp.AsMap()
	require.Equal(t, true, out["success"])
	created := out["schedule"].(map[string]any)
	require.Equal(t, "confirmed", created["status"])
	require.Equal(t, "09:00:00", created["start_time"])
	require.Equal(t, actor.String(), created["created_by"])

	resp, err = client.CreateSchedule(ctx, mustStruct(t, map[string]any{
		"schedule": schedulePayload(c.SmallRoom.ID, c.Course.ID, c.Second.ID, "09:30:00", "10:30:00"),
	}))
	require.NoError(t, err)
	out = resp.AsMap()
	require.Equal(t, false, out["success"])
	require.NotEmpty(t, out["errors"])
	details := out["details"].(map[string]any)
	require.Len(t, details["room_conflicts"], 1)
	violations := out["violations"].([]any)
	require.Equal(t, "room_conflict", violations[0].(map[string]any)["kind"])

	resp, err = client.GetSchedule(ctx, mustStruct(t, map[string]any{"id": created["id"]}))
	require.NoError(t, err)
	require.Equal(t, created["id"], resp.AsMap()["schedule"].(map[string]any)["id"])
}

func TestSchedulingService_UpdateAndCancel(t *testing.T) {
	client, c := startServer(t)
	ctx := context.Background()

	resp, err := client.CreateSchedule(ctx, mustStruct(t, map[string]any{
		"schedule": schedulePayload(c.SmallRoom.ID, c.Course.ID, c.Instructor.ID, "09:00:00", "10:00:00"),
	}))
	require.NoError(t, err)
	id := resp.AsMap()["schedule"].(map[string]any)["id"]

	resp, err = client.UpdateSchedule(ctx, mustStruct(t, map[string]any{
		"id":       id,
		"schedule": schedulePayload(c.LargeRoom.ID, c.Course.ID, c.Instructor.ID, "09:00:00", "10:00:00"),
	}))
	require.NoError(t, err)
	require.Equal(t, c.LargeRoom.ID.String(), resp.AsMap()["schedule"].(map[string]any)["room_id"])

	resp, err = client.CancelSchedule(ctx, mustStruct(t, map[string]any{"id": id}))
	require.NoError(t, err)
	require.Equal(t, "cancelled", resp.AsMap()["schedule"].(map[string]any)["status"])

	_, err = client.UpdateSchedule(ctx, mustStruct(t, map[string]any{
		"id":       id,
		"schedule": schedulePayload(c.LargeRoom.ID, c.Course.ID, c.Instructor.ID, "09:00:00", "10:00:00"),
	}))
	require.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestSchedulingService_Bulk(t *testing.T) {
	client, c := startServer(t)
	ctx := context.Background()

	resp, err := client.BulkCreateSchedules(ctx, mustStruct(t, map[string]any{
		"schedules": []any{
			schedulePayload(c.SmallRoom.ID, c.Course.ID, c.Instructor.ID, "09:00:00", "10:00:00"),
			schedulePayload(c.SmallRoom.ID, c.Course.ID, c.Second.ID, "09:30:00", "10:30:00"),
		},
	}))
	require.NoError(t, err)
	out := resp.AsMap()
	require.Equal(t, false, out["success"])
	require.Equal(t, "REJECTED", out["state"])
	items := out["errors"].([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	require.EqualValues(t, 1, first["line"])
	require.Equal(t, c.SmallRoom.ID.String(), first["payload"].(map[string]any)["room_id"])

	resp, err = client.BulkCreateSchedules(ctx, mustStruct(t, map[string]any{
		"schedules": []any{
			schedulePayload(c.SmallRoom.ID, c.Course.ID, c.Instructor.ID, "09:00:00", "10:00:00"),
			schedulePayload(c.SmallRoom.ID, c.Course.ID, c.Second.ID, "10:00:00", "11:00:00"),
		},
	}))
	require.NoError(t, err)
	out = resp.AsMap()
	require.Equal(t, true, out["success"])
	require.Equal(t, "COMMITTED", out["state"])
	require.Len(t, out["ids"], 2)
}

func TestSchedulingService_ValidateAndConflictQueries(t *testing.T) {
	client, c := startServer(t)
	ctx := context.Background()

	_, err := client.CreateSchedule(ctx, mustStruct(t, map[string]any{
		"schedule": schedulePayload(c.SmallRoom.ID, c.Course.ID, c.Instructor.ID, "09:00:00", "10:00:00"),
	}))
	require.NoError(t, err)

	resp, err := client.ValidateSchedule(ctx, mustStruct(t, map[string]any{
		"schedule": schedulePayload(c.LargeRoom.ID, c.LargeCourse.ID, c.Instructor.ID, "09:30:00", "10:30:00"),
	}))
	require.NoError(t, err)
	out := resp.AsMap()
	require.Equal(t, false, out["is_valid"])
	require.Len(t, out["errors"], 1)

	resp, err = client.CheckRoomConflict(ctx, mustStruct(t, map[string]any{
		"room_id": c.SmallRoom.ID.String(), "date": day, "start_time": "10:00:00", "end_time": "11:00:00",
	}))
	require.NoError(t, err)
	require.Equal(t, false, resp.AsMap()["has_conflict"])

	resp, err = client.CheckInstructorConflict(ctx, mustStruct(t, map[string]any{
		"instructor_id": c.Instructor.ID.String(), "date": day, "start_time": "09:59:00", "end_time": "11:00:00",
	}))
	require.NoError(t, err)
	require.Equal(t, true, resp.AsMap()["has_conflict"])
	require.Len(t, resp.AsMap()["conflicts"], 1)
}

func TestSchedulingService_StatusCodes(t *testing.T) {
	client, c := startServer(t)
	ctx := context.Background()

	_, err := client.CreateSchedule(ctx, mustStruct(t, map[string]any{
		"schedule": map[string]any{"room_id": "not-a-uuid"},
	}))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.CreateSchedule(ctx, mustStruct(t, map[string]any{
		"schedule": schedulePayload(uuid.New(), c.Course.ID, c.Instructor.ID, "09:00:00", "10:00:00"),
	}))
	require.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.GetSchedule(ctx, mustStruct(t, map[string]any{"id": uuid.NewString()}))
	require.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.CancelSchedule(ctx, mustStruct(t, map[string]any{"id": "42"}))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.CreateSchedule(WithActor(ctx, "bogus"), mustStruct(t, map[string]any{
		"schedule": schedulePayload(c.SmallRoom.ID, c.Course.ID, c.Instructor.ID, "09:00:00", "10:00:00"),
	}))
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestToStatus(t *testing.T) {
	cases := []struct {
		err  error
		code codes.Code
	}{
		{&scheduling.TransientError{Op: "lock room", Err: errors.New("deadlock")}, codes.Unavailable},
		{&scheduling.ShapeError{Fields: []string{"date"}}, codes.InvalidArgument},
		{&scheduling.NotFoundError{Entity: "room", ID: uuid.New()}, codes.NotFound},
		{errors.Wrap(scheduling.ErrCancelled, "update"), codes.FailedPrecondition},
		{context.Canceled, codes.Canceled},
		{&scheduling.TransientError{Op: "lock room", Err: context.DeadlineExceeded}, codes.DeadlineExceeded},
		{&scheduling.TransientError{Op: "lock room", Err: errors.Wrap(context.Canceled, "query")}, codes.Canceled},
		{errors.New("boom"), codes.Internal},
	}
	for _, tc := range cases {
		require.Equal(t, tc.code, status.Code(toStatus(tc.err)), tc.err.Error())
	}
}
