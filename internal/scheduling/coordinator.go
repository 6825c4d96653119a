package scheduling

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/class-scheduler/internal/db"
	"github.com/Leganyst/class-scheduler/internal/logging"
	"github.com/Leganyst/class-scheduler/internal/model"
	"github.com/Leganyst/class-scheduler/internal/repository"
)

const (
	opCreate = "create"
	opUpdate = "update"
	opCancel = "cancel"
	opBulk   = "bulk_create"
)

// Coordinator: единственный писатель расписания. Каждая запись идёт в одной
// транзакции: блокировка строк, от которых зависит решение, повторная
// проверка, запись. Взаимное исключение обеспечивает база, поэтому
// координаторы в разных процессах могут работать с одним хранилищем.
type Coordinator struct {
	db          *gorm.DB
	lockTimeout time.Duration
	notifier    Notifier
	now         func() time.Time
}

type Option func(*Coordinator)

// WithLockTimeout ограничивает ожидание каждой блокировки (только Postgres).
func WithLockTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.lockTimeout = d }
}

// WithNotifier получает каждое зафиксированное изменение.
func WithNotifier(n Notifier) Option {
	return func(c *Coordinator) {
		if n != nil {
			c.notifier = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

func NewCoordinator(gdb *gorm.DB, opts ...Option) *Coordinator {
	c := &Coordinator{
		db:       gdb,
		notifier: nopNotifier{},
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) repos() *repository.Repositories {
	return repository.New(c.db)
}

// Validate выполняет полную проверку без блокировок. Ответ предварительный:
// параллельная запись может изменить его до бронирования.
func (c *Coordinator) Validate(ctx context.Context, in ScheduleInput, excludeID *uuid.UUID) (*ValidationResult, error) {
	req, err := in.Normalize()
	if err != nil {
		return nil, err
	}
	res, err := NewValidator(c.repos()).ValidateSchedule(ctx, req, excludeID)
	if err != nil {
		return nil, storageError("validate schedule", err)
	}
	return res, nil
}

func (c *Coordinator) CheckRoomConflict(ctx context.Context, q ConflictQuery) (ConflictCheck, error) {
	return NewValidator(c.repos()).CheckRoomConflict(ctx, q.SubjectID, q.Date, q.StartTime, q.EndTime, q.ExcludeID)
}

func (c *Coordinator) CheckInstructorConflict(ctx context.Context, q ConflictQuery) (ConflictCheck, error) {
	return NewValidator(c.repos()).CheckInstructorConflict(ctx, q.SubjectID, q.Date, q.StartTime, q.EndTime, q.ExcludeID)
}

// Get читает занятие без блокировки.
func (c *Coordinator) Get(ctx context.Context, id uuid.UUID) (*model.Schedule, error) {
	s, err := c.repos().Schedules.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("schedule", id, err)
	}
	return s, nil
}

// Create бронирует новое подтверждённое занятие.
//
// Порядок блокировок: аудитория, преподаватель, подтверждённые занятия
// аудитории на дату, подтверждённые занятия преподавателя на дату.
// Проверка видит все строки, которые могут конфликтовать, и до коммита
// их никто не изменит. Отклонённая бронь возвращает *ConflictError
// и ничего не пишет.
func (c *Coordinator) Create(ctx context.Context, in ScheduleInput, actor *uuid.UUID) (*model.Schedule, error) {
	log := logging.FromContext(ctx).WithField("op", opCreate)

	req, err := in.Normalize()
	if err != nil {
		observeOperation(opCreate, err)
		return nil, err
	}
	log = log.WithFields(requestFields(req))

	if err := c.precheck(ctx, req); err != nil {
		observeOperation(opCreate, err)
		return nil, err
	}

	var created *model.Schedule
	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.New(tx)
		if err := c.lock(ctx, tx, repos, opCreate, newLockSet(req)); err != nil {
			return err
		}

		res, err := NewValidator(repos).ValidateSchedule(ctx, req, nil)
		if err != nil {
			return err
		}
		if !res.IsValid {
			return &ConflictError{Result: res}
		}

		s := &model.Schedule{
			RoomID:       req.RoomID,
			CourseID:     req.CourseID,
			InstructorID: req.InstructorID,
			Date:         req.Date,
			StartTime:    req.StartTime,
			EndTime:      req.EndTime,
			Status:       model.ScheduleStatusConfirmed,
			CreatedBy:    actor,
		}
		if err := repos.Schedules.Create(ctx, s); err != nil {
			return writeError("insert schedule", err)
		}
		if err := c.audit(ctx, repos, model.EventTypeScheduleCreated, s.ID, actor, map[string]any{
			"schedule": NewScheduleView(*s),
		}); err != nil {
			return err
		}
		created = s
		return nil
	})
	err = storageError("create schedule", err)
	observeOperation(opCreate, err)
	if err != nil {
		logRejection(log, err)
		return nil, err
	}

	log.WithField("schedule_id", created.ID).Info("schedule created")
	c.publish(ctx, model.EventTypeScheduleCreated, actor, *created)
	return created, nil
}

// Update переносит подтверждённое занятие на другую аудиторию, курс,
// преподавателя, дату или время. Само занятие исключается из проверок
// конфликтов, поэтому повторная отправка без изменений всегда проходит.
//
// Блокируются и старый, и новый слот: строка занятия попадает в класс
// "аудитория на дату" и блокируется в общем порядке. Если параллельное
// обновление перенесло занятие после чтения, транзакция откатывается
// как transient и повторяется.
func (c *Coordinator) Update(ctx context.Context, id uuid.UUID, in ScheduleInput, actor *uuid.UUID) (*model.Schedule, error) {
	log := logging.FromContext(ctx).WithFields(logrus.Fields{"op": opUpdate, "schedule_id": id})

	req, err := in.Normalize()
	if err != nil {
		observeOperation(opUpdate, err)
		return nil, err
	}
	log = log.WithFields(requestFields(req))

	existing, err := c.repos().Schedules.GetByID(ctx, id)
	if err != nil {
		err = lookupError("schedule", id, err)
		observeOperation(opUpdate, err)
		return nil, err
	}
	if !existing.IsConfirmed() {
		observeOperation(opUpdate, ErrCancelled)
		return nil, ErrCancelled
	}
	if err := c.precheck(ctx, req); err != nil {
		observeOperation(opUpdate, err)
		return nil, err
	}

	previous := RequestFromSchedule(existing)

	var updated *model.Schedule
	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.New(tx)
		if err := c.lock(ctx, tx, repos, opUpdate, newLockSet(req, previous)); err != nil {
			return err
		}
		current, err := repos.Schedules.LockByID(ctx, id)
		if err != nil {
			return lookupError("schedule", id, err)
		}
		if !current.IsConfirmed() {
			return ErrCancelled
		}
		if !sameLockKeys(RequestFromSchedule(current), previous) {
			return &TransientError{Op: "lock schedule", Err: errScheduleMoved}
		}

		res, err := NewValidator(repos).ValidateSchedule(ctx, req, &id)
		if err != nil {
			return err
		}
		if !res.IsValid {
			return &ConflictError{Result: res}
		}

		before := NewScheduleView(*current)
		next := *current
		next.RoomID = req.RoomID
		next.CourseID = req.CourseID
		next.InstructorID = req.InstructorID
		next.Date = req.Date
		next.StartTime = req.StartTime
		next.EndTime = req.EndTime
		if err := repos.Schedules.UpdateSlot(ctx, &next); err != nil {
			return writeError("update schedule", err)
		}

		if err := c.audit(ctx, repos, model.EventTypeScheduleUpdated, id, actor, map[string]any{
			"before": before,
			"after":  NewScheduleView(next),
		}); err != nil {
			return err
		}

		reloaded, err := repos.Schedules.GetByID(ctx, id)
		if err != nil {
			return lookupError("schedule", id, err)
		}
		updated = reloaded
		return nil
	})
	err = storageError("update schedule", err)
	observeOperation(opUpdate, err)
	if err != nil {
		logRejection(log, err)
		return nil, err
	}

	log.Info("schedule updated")
	c.publish(ctx, model.EventTypeScheduleUpdated, actor, *updated)
	return updated, nil
}

// Cancel отменяет занятие, после чего оно не участвует в проверках
// конфликтов. Повторная отмена ничего не делает.
func (c *Coordinator) Cancel(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*model.Schedule, error) {
	log := logging.FromContext(ctx).WithFields(logrus.Fields{"op": opCancel, "schedule_id": id})

	if _, err := c.repos().Schedules.GetByID(ctx, id); err != nil {
		err = lookupError("schedule", id, err)
		observeOperation(opCancel, err)
		return nil, err
	}

	var (
		result  *model.Schedule
		changed bool
	)
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := setLockTimeout(tx, c.lockTimeout); err != nil {
			return err
		}
		repos := repository.New(tx)
		current, err := repos.Schedules.LockByID(ctx, id)
		if err != nil {
			return lookupError("schedule", id, err)
		}
		if !current.IsConfirmed() {
			result = current
			return nil
		}

		if err := repos.Schedules.Cancel(ctx, id, c.now()); err != nil {
			return writeError("cancel schedule", err)
		}
		if err := c.audit(ctx, repos, model.EventTypeScheduleCancelled, id, actor, map[string]any{
			"schedule": NewScheduleView(*current),
		}); err != nil {
			return err
		}
		reloaded, err := repos.Schedules.GetByID(ctx, id)
		if err != nil {
			return lookupError("schedule", id, err)
		}
		result, changed = reloaded, true
		return nil
	})
	err = storageError("cancel schedule", err)
	observeOperation(opCancel, err)
	if err != nil {
		logRejection(log, err)
		return nil, err
	}

	if changed {
		log.Info("schedule cancelled")
		c.publish(ctx, model.EventTypeScheduleCancelled, actor, *result)
	}
	return result, nil
}

// precheck сообщает об отсутствующей аудитории, курсе или преподавателе
// до блокировок. Пользователя без роли преподавателя ловит проверка назначения.
func (c *Coordinator) precheck(ctx context.Context, req Request) error {
	repos := c.repos()
	if _, err := repos.Rooms.GetByID(ctx, req.RoomID); err != nil {
		return lookupError("room", req.RoomID, err)
	}
	if _, err := repos.Courses.GetByID(ctx, req.CourseID); err != nil {
		return lookupError("course", req.CourseID, err)
	}
	if _, err := repos.Users.GetByID(ctx, req.InstructorID); err != nil {
		return lookupError("instructor", req.InstructorID, err)
	}
	return nil
}

func (c *Coordinator) lock(ctx context.Context, tx *gorm.DB, repos *repository.Repositories, op string, ls lockSet) error {
	if err := setLockTimeout(tx, c.lockTimeout); err != nil {
		return err
	}
	started := time.Now()
	if err := acquire(ctx, repos, ls); err != nil {
		return err
	}
	getMetrics().lockWait.WithLabelValues(op).Observe(time.Since(started).Seconds())
	return nil
}

func (c *Coordinator) audit(
	ctx context.Context,
	repos *repository.Repositories,
	typ model.EventType,
	scheduleID uuid.UUID,
	actor *uuid.UUID,
	details map[string]any,
) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return err
	}
	sid := scheduleID
	e := &model.Event{
		EventType:  typ,
		UserID:     actor,
		ScheduleID: &sid,
		Details:    datatypes.JSON(raw),
	}
	if err := repos.Events.Create(ctx, e); err != nil {
		return storageError("write audit event", err)
	}
	return nil
}

// publish вызывается после коммита. Ошибка уведомления запись не отменяет.
func (c *Coordinator) publish(ctx context.Context, typ model.EventType, actor *uuid.UUID, schedules ...model.Schedule) {
	change := Change{Type: typ, Schedules: newScheduleViews(schedules)}
	if actor != nil {
		change.Actor = actor.String()
	}
	if err := c.notifier.Notify(ctx, change); err != nil {
		logging.FromContext(ctx).WithError(err).WithField("event_type", typ).Warn("notify schedule change")
	}
}

// writeError переводит нарушение exclusion-ограничения в соответствующий
// конфликт. Срабатывает, только если запись обошла блокировки.
func writeError(op string, err error) error {
	name, ok := db.ExclusionViolation(err)
	if !ok {
		return storageError(op, err)
	}
	res := newValidationResult()
	switch name {
	case model.ConstraintInstructorNoOverlap:
		res.add(KindInstructorConflict, "instructor is already booked for an overlapping window")
	default:
		res.add(KindRoomConflict, "room is already booked for an overlapping window")
	}
	return &ConflictError{Result: res}
}

func requestFields(req Request) logrus.Fields {
	return logrus.Fields{
		"room_id":       req.RoomID,
		"instructor_id": req.InstructorID,
		"course_id":     req.CourseID,
		"date":          req.DateString(),
	}
}

func logRejection(log *logrus.Entry, err error) {
	switch outcome(err) {
	case resultRejected, resultNotFound:
		log.WithError(err).Info("schedule write rejected")
	case resultTransient:
		log.WithError(err).Warn("schedule write hit a transient storage failure")
	default:
		log.WithError(err).Error("schedule write failed")
	}
}
