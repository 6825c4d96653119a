package service

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	schedulingv1 "github.com/Leganyst/class-scheduler/internal/api/scheduling/v1"
	"github.com/Leganyst/class-scheduler/internal/model"
	"github.com/Leganyst/class-scheduler/internal/scheduling"
)

// SchedulingService: gRPC-обёртка над координатором расписаний.
// Отказ валидации возвращается как обычный ответ с success=false,
// остальные ошибки переводятся в gRPC-статусы.
type SchedulingService struct {
	schedulingv1.UnimplementedSchedulingServiceServer

	coord   *scheduling.Coordinator
	retrier *scheduling.Retrier
}

func NewSchedulingService(coord *scheduling.Coordinator, retrier *scheduling.Retrier) *SchedulingService {
	if retrier == nil {
		retrier = scheduling.NewRetrier(1, 0)
	}
	return &SchedulingService{coord: coord, retrier: retrier}
}

type scheduleRequest struct {
	ID        string                   `json:"id"`
	ExcludeID string                   `json:"exclude_id"`
	Schedule  scheduling.ScheduleInput `json:"schedule"`
}

type bulkRequest struct {
	Schedules []scheduling.ScheduleInput `json:"schedules"`
}

type conflictRequest struct {
	RoomID       string `json:"room_id"`
	InstructorID string `json:"instructor_id"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	ExcludeID    string `json:"exclude_id"`
}

type writeResponse struct {
	Success    bool                          `json:"success"`
	Schedule   *scheduling.ScheduleView      `json:"schedule,omitempty"`
	Errors     []string                      `json:"errors,omitempty"`
	Violations []scheduling.Violation        `json:"violations,omitempty"`
	Details    *scheduling.ValidationDetails `json:"details,omitempty"`
}

type bulkResponse struct {
	Success bool                       `json:"success"`
	State   scheduling.BulkState       `json:"state"`
	IDs     []string                   `json:"ids,omitempty"`
	Errors  []scheduling.BulkItemError `json:"errors,omitempty"`
}

type conflictResponse struct {
	HasConflict bool                      `json:"has_conflict"`
	Conflicts   []scheduling.ScheduleView `json:"conflicts"`
}

func (s *SchedulingService) ValidateSchedule(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req scheduleRequest
	if err := decode(in, &req); err != nil {
		return nil, toStatus(err)
	}
	excludeID, err := optionalID("exclude_id", req.ExcludeID)
	if err != nil {
		return nil, toStatus(err)
	}

	var res *scheduling.ValidationResult
	err = s.retrier.Do(ctx, func(ctx context.Context) error {
		res, err = s.coord.Validate(ctx, req.Schedule, excludeID)
		return err
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return respond(res)
}

func (s *SchedulingService) CreateSchedule(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req scheduleRequest
	if err := decode(in, &req); err != nil {
		return nil, toStatus(err)
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var created *model.Schedule
	err = s.retrier.Do(ctx, func(ctx context.Context) error {
		created, err = s.coord.Create(ctx, req.Schedule, actor)
		return err
	})
	return writeResult(created, err)
}

func (s *SchedulingService) UpdateSchedule(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req scheduleRequest
	if err := decode(in, &req); err != nil {
		return nil, toStatus(err)
	}
	id, err := requiredID("id", req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var updated *model.Schedule
	err = s.retrier.Do(ctx, func(ctx context.Context) error {
		updated, err = s.coord.Update(ctx, id, req.Schedule, actor)
		return err
	})
	return writeResult(updated, err)
}

func (s *SchedulingService) CancelSchedule(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req scheduleRequest
	if err := decode(in, &req); err != nil {
		return nil, toStatus(err)
	}
	id, err := requiredID("id", req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var cancelled *model.Schedule
	err = s.retrier.Do(ctx, func(ctx context.Context) error {
		cancelled, err = s.coord.Cancel(ctx, id, actor)
		return err
	})
	return writeResult(cancelled, err)
}

func (s *SchedulingService) GetSchedule(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req scheduleRequest
	if err := decode(in, &req); err != nil {
		return nil, toStatus(err)
	}
	id, err := requiredID("id", req.ID)
	if err != nil {
		return nil, toStatus(err)
	}

	var found *model.Schedule
	err = s.retrier.Do(ctx, func(ctx context.Context) error {
		found, err = s.coord.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, toStatus(err)
	}
	view := scheduling.NewScheduleView(*found)
	return respond(map[string]any{"schedule": view})
}

func (s *SchedulingService) BulkCreateSchedules(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req bulkRequest
	if err := decode(in, &req); err != nil {
		return nil, toStatus(err)
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var res *scheduling.BulkResult
	err = s.retrier.Do(ctx, func(ctx context.Context) error {
		res, err = s.coord.BulkCreate(ctx, req.Schedules, actor)
		return err
	})

	var bulkErr *scheduling.BulkError
	switch {
	case errors.As(err, &bulkErr):
		return respond(bulkResponse{State: res.State, Errors: bulkErr.Items})
	case err != nil:
		return nil, toStatus(err)
	}

	ids := make([]string, len(res.IDs))
	for i, id := range res.IDs {
		ids[i] = id.String()
	}
	return respond(bulkResponse{Success: true, State: res.State, IDs: ids})
}

func (s *SchedulingService) CheckRoomConflict(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.checkConflict(ctx, in, func(r conflictRequest) string { return r.RoomID }, s.coord.CheckRoomConflict)
}

func (s *SchedulingService) CheckInstructorConflict(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.checkConflict(ctx, in, func(r conflictRequest) string { return r.InstructorID }, s.coord.CheckInstructorConflict)
}

func (s *SchedulingService) checkConflict(
	ctx context.Context,
	in *structpb.Struct,
	subject func(conflictRequest) string,
	check func(context.Context, scheduling.ConflictQuery) (scheduling.ConflictCheck, error),
) (*structpb.Struct, error) {
	var req conflictRequest
	if err := decode(in, &req); err != nil {
		return nil, toStatus(err)
	}
	q, err := scheduling.ParseConflictQuery(subject(req), req.Date, req.StartTime, req.EndTime, req.ExcludeID)
	if err != nil {
		return nil, toStatus(err)
	}

	var res scheduling.ConflictCheck
	err = s.retrier.Do(ctx, func(ctx context.Context) error {
		res, err = check(ctx, q)
		return err
	})
	if err != nil {
		return nil, toStatus(err)
	}

	views := make([]scheduling.ScheduleView, 0, len(res.Conflicts))
	for _, c := range res.Conflicts {
		views = append(views, scheduling.NewScheduleView(c))
	}
	return respond(conflictResponse{HasConflict: res.HasConflict, Conflicts: views})
}

// writeResult собирает ответ create/update/cancel.
func writeResult(s *model.Schedule, err error) (*structpb.Struct, error) {
	var conflict *scheduling.ConflictError
	switch {
	case errors.As(err, &conflict):
		return respond(writeResponse{
			Errors:     conflict.Result.Errors,
			Violations: conflict.Result.Violations,
			Details:    &conflict.Result.Details,
		})
	case err != nil:
		return nil, toStatus(err)
	}
	view := scheduling.NewScheduleView(*s)
	return respond(writeResponse{Success: true, Schedule: &view})
}

func respond(v any) (*structpb.Struct, error) {
	out, err := encode(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func requiredID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &scheduling.ShapeError{Fields: []string{field + " must be a uuid"}}
	}
	return id, nil
}

func optionalID(field, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := requiredID(field, raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// toStatus переводит ошибки координатора в gRPC-коды.
func toStatus(err error) error {
	var (
		shape    *scheduling.ShapeError
		notFound *scheduling.NotFoundError
	)
	switch {
	case errors.As(err, &shape):
		return status.Error(codes.InvalidArgument, shape.Error())
	case errors.As(err, &notFound):
		return status.Error(codes.NotFound, notFound.Error())
	case errors.Is(err, scheduling.ErrCancelled):
		return status.Error(codes.FailedPrecondition, err.Error())
	// Истёкший контекст вызывающего проверяется раньше transient.
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case scheduling.IsTransient(err):
		return status.Errorf(codes.Unavailable, "%v", err)
	}
	return status.Errorf(codes.Internal, "%v", err)
}
