package scheduling

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Leganyst/class-scheduler/internal/logging"
	"github.com/Leganyst/class-scheduler/internal/model"
	"github.com/Leganyst/class-scheduler/internal/repository"
)

// BulkState: состояние пакетного запроса.
type BulkState string

const (
	BulkValidating   BulkState = "VALIDATING"
	BulkRejected     BulkState = "REJECTED"
	BulkCommitting   BulkState = "COMMITTING"
	BulkCommitted    BulkState = "COMMITTED"
	BulkCommitFailed BulkState = "COMMIT_FAILED"
)

type BulkResult struct {
	State BulkState
	IDs   []uuid.UUID
}

// bulkItem несёт одну запись через все фазы.
type bulkItem struct {
	index  int
	input  ScheduleInput
	req    Request
	ok     bool
	errors []string
	kinds  []ErrorKind
}

func (it *bulkItem) fail(kind ErrorKind, msg string) {
	it.ok = false
	it.errors = append(it.errors, msg)
	it.kinds = append(it.kinds, kind)
}

// BulkCreate сохраняет либо все записи, либо ни одной.
//
//  1. Каждая запись проверяется по сохранённым занятиям без блокировок.
//  2. Прошедшие проверку записи сравниваются между собой.
//  3. Если ошибок нет, одна транзакция блокирует все аудитории,
//     преподавателей и ключи (аудитория, дата) / (преподаватель, дата)
//     в том же порядке, что и одиночные записи, повторно проверяет
//     каждую запись под блокировками и вставляет их.
//
// При любой ошибке хранилище не меняется. Ошибки записей возвращаются
// как *BulkError с номерами строк (с единицы).
func (c *Coordinator) BulkCreate(ctx context.Context, items []ScheduleInput, actor *uuid.UUID) (*BulkResult, error) {
	log := logging.FromContext(ctx).WithFields(logrus.Fields{"op": opBulk, "batch_size": len(items)})
	getMetrics().batchSize.Observe(float64(len(items)))

	result := &BulkResult{State: BulkValidating}
	finish := func(state BulkState, err error) (*BulkResult, error) {
		result.State = state
		observeOperation(opBulk, err)
		entry := log.WithField("state", state)
		if err != nil {
			entry.WithError(err).Info("bulk create finished")
		} else {
			entry.Info("bulk create finished")
		}
		return result, err
	}

	if len(items) == 0 {
		return finish(BulkRejected, &ShapeError{Fields: []string{"batch is empty"}})
	}

	batch := make([]*bulkItem, len(items))
	validator := NewValidator(c.repos())
	for i, in := range items {
		it := &bulkItem{index: i, input: in, ok: true}
		batch[i] = it

		req, err := in.Normalize()
		if err != nil {
			it.fail(KindShape, err.Error())
			continue
		}
		it.req = req

		res, err := validator.ValidateSchedule(ctx, req, nil)
		if err != nil {
			return finish(BulkRejected, storageError("validate batch", err))
		}
		for _, v := range res.Violations {
			it.fail(v.Kind, v.Message)
		}
	}

	var entries []BatchEntry
	for _, it := range batch {
		if !it.ok {
			continue
		}
		entries = append(entries, BatchEntry{
			Index:        it.index,
			RoomID:       it.req.RoomID.String(),
			InstructorID: it.req.InstructorID.String(),
			Date:         it.req.Date,
			StartTime:    it.req.StartTime,
			EndTime:      it.req.EndTime,
		})
	}
	for idx, conflicts := range DetectInternalConflicts(entries) {
		for _, ic := range conflicts {
			batch[idx].fail(KindIntraBatchConflict, ic.Message)
		}
	}

	if bulkErr := collectBulkErrors(batch); bulkErr != nil {
		return finish(BulkRejected, bulkErr)
	}

	result.State = BulkCommitting
	reqs := make([]Request, len(batch))
	for i, it := range batch {
		reqs[i] = it.req
	}

	var created []model.Schedule
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.New(tx)
		if err := c.lock(ctx, tx, repos, opBulk, newLockSet(reqs...)); err != nil {
			return err
		}

		locked := NewValidator(repos)
		for _, it := range batch {
			res, err := locked.ValidateSchedule(ctx, it.req, nil)
			if err != nil {
				return err
			}
			for _, v := range res.Violations {
				it.fail(v.Kind, v.Message)
			}
		}
		if bulkErr := collectBulkErrors(batch); bulkErr != nil {
			return bulkErr
		}

		created = make([]model.Schedule, 0, len(batch))
		for _, it := range batch {
			s := &model.Schedule{
				RoomID:       it.req.RoomID,
				CourseID:     it.req.CourseID,
				InstructorID: it.req.InstructorID,
				Date:         it.req.Date,
				StartTime:    it.req.StartTime,
				EndTime:      it.req.EndTime,
				Status:       model.ScheduleStatusConfirmed,
				CreatedBy:    actor,
			}
			if err := repos.Schedules.Create(ctx, s); err != nil {
				err = writeError("insert schedule", err)
				if conflict, ok := err.(*ConflictError); ok {
					for _, v := range conflict.Result.Violations {
						it.fail(v.Kind, v.Message)
					}
					return collectBulkErrors(batch)
				}
				return err
			}
			if err := c.audit(ctx, repos, model.EventTypeScheduleBulkCreated, s.ID, actor, map[string]any{
				"schedule":   NewScheduleView(*s),
				"line":       it.index + 1,
				"batch_size": len(batch),
			}); err != nil {
				return err
			}
			created = append(created, *s)
		}
		return nil
	})
	if err != nil {
		return finish(BulkCommitFailed, storageError("bulk create schedules", err))
	}

	result.IDs = make([]uuid.UUID, len(created))
	for i, s := range created {
		result.IDs[i] = s.ID
	}
	c.publish(ctx, model.EventTypeScheduleBulkCreated, actor, created...)
	return finish(BulkCommitted, nil)
}

func collectBulkErrors(batch []*bulkItem) *BulkError {
	var out []BulkItemError
	for _, it := range batch {
		if it.ok {
			continue
		}
		out = append(out, BulkItemError{
			Line:    it.index + 1,
			Payload: it.input,
			Errors:  it.errors,
			Kinds:   it.kinds,
		})
	}
	if len(out) == 0 {
		return nil
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return &BulkError{Items: out}
}
